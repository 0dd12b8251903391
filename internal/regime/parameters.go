package regime

// Regime is a coarse classification of current market behavior.
type Regime string

const (
	Normal   Regime = "normal"
	Volatile Regime = "volatile"
	Trending Regime = "trending"
)

// ParameterBundle holds the decision thresholds tied to one regime.
// Consumers threshold snapshot fields against these values.
type ParameterBundle struct {
	TrendThreshold    float64 `json:"trend_threshold"`
	MinConditions     int     `json:"min_conditions"`
	MinRiskReward     float64 `json:"min_risk_reward"`
	VolRatioThreshold float64 `json:"vol_ratio_threshold"`
	RSIUpperLimit     float64 `json:"rsi_upper_limit"`
}

// bundleTable is fixed at construction and never mutated.
var bundleTable = map[Regime]ParameterBundle{
	Normal: {
		TrendThreshold:    0.001,
		MinConditions:     3,
		MinRiskReward:     1.5,
		VolRatioThreshold: 1.5,
		RSIUpperLimit:     80,
	},
	Volatile: {
		TrendThreshold:    0.002,
		MinConditions:     4,
		MinRiskReward:     2.0,
		VolRatioThreshold: 2.0,
		RSIUpperLimit:     75,
	},
	Trending: {
		TrendThreshold:    0.0005,
		MinConditions:     2,
		MinRiskReward:     1.2,
		VolRatioThreshold: 1.2,
		RSIUpperLimit:     85,
	},
}

// BundleFor returns the bundle for the given regime, falling back to the
// normal bundle for unrecognized values.
func BundleFor(r Regime) ParameterBundle {
	if b, ok := bundleTable[r]; ok {
		return b
	}
	return bundleTable[Normal]
}
