// Package regime scores market conditions from an indicator snapshot and
// maps the winning regime onto a bundle of decision thresholds.
package regime

import (
	"math"
	"sync"
	"time"

	"StockLens/internal/domain/models"
	applogger "StockLens/pkg/logger"
)

// historyCap bounds the evaluation history; oldest records are evicted first.
const historyCap = 100

// ScoreVector maps each regime to its accumulated score for one evaluation.
type ScoreVector map[Regime]int

// Record is one evaluation outcome kept in the bounded history.
type Record struct {
	Regime    Regime      `json:"regime"`
	Scores    ScoreVector `json:"scores"`
	Timestamp time.Time   `json:"timestamp"`
}

// AdaptiveOptimizer owns the current regime and the evaluation history.
// All methods are safe for concurrent use.
type AdaptiveOptimizer struct {
	mu      sync.Mutex
	current Regime
	history []Record
	l       *applogger.Logger
}

// NewAdaptiveOptimizer starts in the normal regime; the logger may be nil.
func NewAdaptiveOptimizer(l *applogger.Logger) *AdaptiveOptimizer {
	return &AdaptiveOptimizer{
		current: Normal,
		history: make([]Record, 0, historyCap),
		l:       l,
	}
}

// Evaluate scores the three regimes from up to five independent signals and
// appends one record to the history. Signals whose inputs are absent from the
// snapshot contribute nothing to any score. The result with the strictly
// highest score wins; a zero maximum or a tie falls back in the fixed order
// normal, volatile, trending.
func (o *AdaptiveOptimizer) Evaluate(snap models.IndicatorSnapshot, closes []float64) Regime {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.evaluateLocked(snap, closes)
}

func (o *AdaptiveOptimizer) evaluateLocked(snap models.IndicatorSnapshot, closes []float64) Regime {
	scores := ScoreVector{Normal: 0, Volatile: 0, Trending: 0}

	scoreVolatility(scores, closes)
	scoreSlopeConsensus(scores, snap)
	scoreRSIZone(scores, snap)
	scoreVolumeRatio(scores, snap)
	scoreMACDMomentum(scores, snap)

	winner := Normal
	if scores[Volatile] > scores[winner] {
		winner = Volatile
	}
	if scores[Trending] > scores[winner] {
		winner = Trending
	}
	if scores[winner] == 0 {
		winner = Normal
	}

	o.history = append(o.history, Record{
		Regime:    winner,
		Scores:    scores,
		Timestamp: time.Now(),
	})
	if len(o.history) > historyCap {
		o.history = o.history[len(o.history)-historyCap:]
	}
	return winner
}

// Update evaluates and, when the outcome differs from the stored regime,
// switches to it and logs the transition.
func (o *AdaptiveOptimizer) Update(snap models.IndicatorSnapshot, closes []float64) Regime {
	o.mu.Lock()
	defer o.mu.Unlock()

	next := o.evaluateLocked(snap, closes)
	if next != o.current {
		if o.l != nil {
			o.l.Info("market regime changed",
				applogger.String("from", string(o.current)),
				applogger.String("to", string(next)),
			)
		}
		o.current = next
	}
	return o.current
}

// CurrentRegime returns the stored regime.
func (o *AdaptiveOptimizer) CurrentRegime() Regime {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// GetParameters returns the bundle for the given regime; an empty regime
// selects the stored one. Unrecognized regimes fall back to normal.
func (o *AdaptiveOptimizer) GetParameters(r Regime) ParameterBundle {
	if r == "" {
		r = o.CurrentRegime()
	}
	return BundleFor(r)
}

func (o *AdaptiveOptimizer) GetTrendThreshold() float64 {
	return o.GetParameters("").TrendThreshold
}

func (o *AdaptiveOptimizer) GetMinConditions() int {
	return o.GetParameters("").MinConditions
}

func (o *AdaptiveOptimizer) GetMinRiskReward() float64 {
	return o.GetParameters("").MinRiskReward
}

func (o *AdaptiveOptimizer) GetVolRatioThreshold() float64 {
	return o.GetParameters("").VolRatioThreshold
}

func (o *AdaptiveOptimizer) GetRSIUpperLimit() float64 {
	return o.GetParameters("").RSIUpperLimit
}

// GetStatusHistory returns the most recent records, newest last. A limit of
// zero or less returns the whole buffer. The returned slice is a copy.
func (o *AdaptiveOptimizer) GetStatusHistory(limit int) []Record {
	o.mu.Lock()
	defer o.mu.Unlock()

	n := len(o.history)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Record, n)
	copy(out, o.history[len(o.history)-n:])
	return out
}

// scoreVolatility compares the recent 20-period return stdev against the
// full-history return stdev. Requires at least 20 closes.
func scoreVolatility(scores ScoreVector, closes []float64) {
	if len(closes) < 20 {
		return
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			return
		}
		returns = append(returns, (closes[i]-closes[i-1])/closes[i-1])
	}
	recent := returns
	if len(returns) > 20 {
		recent = returns[len(returns)-20:]
	}
	recentStd := sampleStdev(recent)
	avgStd := sampleStdev(returns)
	switch {
	case recentStd > 1.5*avgStd:
		scores[Volatile] += 3
	case recentStd < 0.7*avgStd:
		scores[Trending] += 2
	default:
		scores[Normal]++
	}
}

// scoreSlopeConsensus counts rising moving averages across the 5, 20 and 60
// periods. It applies only when all six values are present; a partial set
// would otherwise read as "nothing rising" and skew the volatile score.
func scoreSlopeConsensus(scores ScoreVector, snap models.IndicatorSnapshot) {
	rising := 0
	for _, key := range []string{"ma5", "ma20", "ma60"} {
		cur, okCur := snap.Float(key)
		prev, okPrev := snap.Float(key + "_prev")
		if !okCur || !okPrev {
			return
		}
		if cur > prev {
			rising++
		}
	}
	switch {
	case rising >= 2:
		scores[Trending] += 2
	case rising == 0:
		scores[Volatile]++
	}
}

func scoreRSIZone(scores ScoreVector, snap models.IndicatorSnapshot) {
	rsi, ok := snap.Float("rsi")
	if !ok {
		return
	}
	switch {
	case rsi > 70:
		scores[Volatile]++
	case rsi > 30 && rsi < 70:
		scores[Normal]++
	case rsi < 30:
		scores[Trending]++
	}
}

func scoreVolumeRatio(scores ScoreVector, snap models.IndicatorSnapshot) {
	ratio, ok := snap.Float("vol_ratio")
	if !ok {
		return
	}
	switch {
	case ratio > 2.0:
		scores[Volatile]++
	case ratio > 1.5:
		scores[Trending]++
	default:
		scores[Normal]++
	}
}

func scoreMACDMomentum(scores ScoreVector, snap models.IndicatorSnapshot) {
	dif, okDif := snap.Float("macd_dif")
	prev, okPrev := snap.Float("macd_dif_prev")
	if !okDif || !okPrev || dif <= prev {
		return
	}
	if dif > 0 {
		scores[Trending]++
	} else {
		scores[Normal]++
	}
}

// sampleStdev is the n-1 normalized standard deviation; below two points it
// is zero.
func sampleStdev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(n-1))
}
