package indicator

// FibRatios lists the retracement ratios in level order.
var FibRatios = []float64{0, 0.236, 0.382, 0.5, 0.618, 0.786, 1}

// fibPositions are the six inter-level buckets, ordered from fib_0 toward
// fib_100 in the direction implied by the trend.
var fibPositions = []string{
	"0_236", "236_382", "382_500", "500_618", "618_786", "786_1000",
}

// Retracement describes a Fibonacci retracement over a lookback window.
// Trend is a structural fact about swing ordering: "up" when the swing high
// occurs after the swing low, "down" otherwise.
type Retracement struct {
	Trend     string
	SwingHigh float64
	SwingLow  float64
	Levels    []float64 // aligned with FibRatios
	Position  string    // bucket containing the latest close
}

// ComputeFibonacci locates the swing high/low over the last lookback bars
// (clipped to available length) and derives the seven retracement levels.
// In an up trend levels descend from the swing high (level 0 = high); in a
// down trend they ascend from the swing low (level 0 = low).
func ComputeFibonacci(highs, lows, closes []float64, lookback int) Retracement {
	n := len(closes)
	if lookback > n {
		lookback = n
	}
	start := n - lookback

	idxHigh, idxLow := start, start
	for i := start; i < n; i++ {
		if highs[i] > highs[idxHigh] {
			idxHigh = i
		}
		if lows[i] < lows[idxLow] {
			idxLow = i
		}
	}
	swingHigh := highs[idxHigh]
	swingLow := lows[idxLow]

	trend := "down"
	if idxHigh > idxLow {
		trend = "up"
	}

	span := swingHigh - swingLow
	levels := make([]float64, len(FibRatios))
	for i, r := range FibRatios {
		if trend == "up" {
			levels[i] = swingHigh - r*span
		} else {
			levels[i] = swingLow + r*span
		}
	}

	return Retracement{
		Trend:     trend,
		SwingHigh: swingHigh,
		SwingLow:  swingLow,
		Levels:    levels,
		Position:  classifyFib(closes[n-1], levels, trend),
	}
}

// classifyFib picks the bucket whose level pair brackets the close, clamping
// prices beyond the swing extremes into the outermost buckets.
func classifyFib(close float64, levels []float64, trend string) string {
	for i := 0; i < len(levels)-1; i++ {
		if trend == "up" {
			// levels descend from the swing high
			if close >= levels[i+1] {
				return fibPositions[i]
			}
		} else {
			// levels ascend from the swing low
			if close <= levels[i+1] {
				return fibPositions[i]
			}
		}
	}
	return fibPositions[len(fibPositions)-1]
}
