package regime

import (
	"testing"

	"StockLens/internal/domain/models"
)

func TestEvaluateNoSignals(t *testing.T) {
	o := NewAdaptiveOptimizer(nil)
	got := o.Evaluate(models.IndicatorSnapshot{}, nil)
	if got != Normal {
		t.Fatalf("no signals should classify as normal, got %q", got)
	}
	hist := o.GetStatusHistory(0)
	if len(hist) != 1 {
		t.Fatalf("history should grow by exactly one record, got %d", len(hist))
	}
	for r, s := range hist[0].Scores {
		if s != 0 {
			t.Fatalf("score for %q should be 0, got %d", r, s)
		}
	}
}

func TestEvaluateVolatileScenario(t *testing.T) {
	o := NewAdaptiveOptimizer(nil)
	snap := models.IndicatorSnapshot{
		"rsi":       85.0,
		"vol_ratio": 2.5,
	}
	got := o.Evaluate(snap, nil)
	if got != Volatile {
		t.Fatalf("overheated rsi plus volume surge should read volatile, got %q", got)
	}
	rec := o.GetStatusHistory(1)[0]
	if rec.Scores[Volatile] != 2 {
		t.Fatalf("volatile score = %d, want 2", rec.Scores[Volatile])
	}
	if rec.Scores[Normal] != 0 || rec.Scores[Trending] != 0 {
		t.Fatalf("unexpected scores: %v", rec.Scores)
	}
}

func TestEvaluateTrendingFromSlopes(t *testing.T) {
	o := NewAdaptiveOptimizer(nil)
	snap := models.IndicatorSnapshot{
		"ma5": 11.0, "ma5_prev": 10.0,
		"ma20": 10.5, "ma20_prev": 10.0,
		"ma60": 10.2, "ma60_prev": 10.0,
		"macd_dif": 0.4, "macd_dif_prev": 0.2,
	}
	if got := o.Evaluate(snap, nil); got != Trending {
		t.Fatalf("three rising averages and rising positive DIF should read trending, got %q", got)
	}
	rec := o.GetStatusHistory(1)[0]
	if rec.Scores[Trending] != 3 {
		t.Fatalf("trending score = %d, want 3", rec.Scores[Trending])
	}
}

func TestSlopeSignalNeedsAllAverages(t *testing.T) {
	o := NewAdaptiveOptimizer(nil)
	// ma60 pair missing: the slope signal must stay silent instead of
	// counting the absent averages as "not rising".
	snap := models.IndicatorSnapshot{
		"ma5": 9.0, "ma5_prev": 10.0,
		"ma20": 9.5, "ma20_prev": 10.0,
	}
	o.Evaluate(snap, nil)
	rec := o.GetStatusHistory(1)[0]
	if rec.Scores[Volatile] != 0 {
		t.Fatalf("partial averages must not score volatile, got %d", rec.Scores[Volatile])
	}
}

func TestEvaluateVolatilitySignal(t *testing.T) {
	// calm history then violent recent swings
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + 0.05*float64(i%2)
	}
	for i := 45; i < 60; i++ {
		if i%2 == 0 {
			closes[i] = 110
		} else {
			closes[i] = 90
		}
	}
	o := NewAdaptiveOptimizer(nil)
	o.Evaluate(models.IndicatorSnapshot{}, closes)
	rec := o.GetStatusHistory(1)[0]
	if rec.Scores[Volatile] != 3 {
		t.Fatalf("recent swings far above average should add 3 volatile, got %v", rec.Scores)
	}
}

func TestHistoryFIFOEviction(t *testing.T) {
	o := NewAdaptiveOptimizer(nil)
	first := o.Evaluate(models.IndicatorSnapshot{"rsi": 85.0, "vol_ratio": 2.5}, nil)
	if first != Volatile {
		t.Fatalf("setup evaluate misclassified: %q", first)
	}
	for i := 0; i < 100; i++ {
		o.Evaluate(models.IndicatorSnapshot{}, nil)
	}
	hist := o.GetStatusHistory(0)
	if len(hist) != 100 {
		t.Fatalf("history length = %d, want 100", len(hist))
	}
	for i, rec := range hist {
		if rec.Regime != Normal {
			t.Fatalf("oldest record should have been evicted, found %q at %d", rec.Regime, i)
		}
	}
}

func TestGetStatusHistoryLimit(t *testing.T) {
	o := NewAdaptiveOptimizer(nil)
	for i := 0; i < 10; i++ {
		o.Evaluate(models.IndicatorSnapshot{}, nil)
	}
	if got := o.GetStatusHistory(3); len(got) != 3 {
		t.Fatalf("limited history length = %d, want 3", len(got))
	}
	if got := o.GetStatusHistory(50); len(got) != 10 {
		t.Fatalf("oversized limit should return everything, got %d", len(got))
	}
}

func TestUpdateTransitions(t *testing.T) {
	o := NewAdaptiveOptimizer(nil)
	if o.CurrentRegime() != Normal {
		t.Fatalf("initial regime should be normal")
	}
	got := o.Update(models.IndicatorSnapshot{"rsi": 85.0, "vol_ratio": 2.5}, nil)
	if got != Volatile || o.CurrentRegime() != Volatile {
		t.Fatalf("update should switch to volatile, got %q", got)
	}
	// same regime again: no transition, state unchanged
	got = o.Update(models.IndicatorSnapshot{"rsi": 85.0, "vol_ratio": 2.5}, nil)
	if got != Volatile {
		t.Fatalf("repeat update changed regime to %q", got)
	}
}

func TestParametersLookup(t *testing.T) {
	o := NewAdaptiveOptimizer(nil)

	b := o.GetParameters(Trending)
	if b.MinConditions != 2 || b.RSIUpperLimit != 85 {
		t.Fatalf("trending bundle wrong: %+v", b)
	}
	if got := o.GetParameters("mystery"); got != BundleFor(Normal) {
		t.Fatalf("unknown regime should fall back to normal, got %+v", got)
	}
	// empty regime resolves against current state
	o.Update(models.IndicatorSnapshot{"rsi": 85.0, "vol_ratio": 2.5}, nil)
	if got := o.GetParameters(""); got != BundleFor(Volatile) {
		t.Fatalf("current-regime lookup wrong: %+v", got)
	}
	if o.GetMinConditions() != 4 || o.GetTrendThreshold() != 0.002 {
		t.Fatalf("scalar getters disagree with the volatile bundle")
	}
	if o.GetMinRiskReward() != 2.0 || o.GetVolRatioThreshold() != 2.0 || o.GetRSIUpperLimit() != 75 {
		t.Fatalf("scalar getters disagree with the volatile bundle")
	}
}

func TestTieBreakIsDeterministic(t *testing.T) {
	// one point each for normal (rsi zone) and volatile (volume surge):
	// the fixed priority order keeps normal on a tie.
	snap := models.IndicatorSnapshot{
		"rsi":       50.0,
		"vol_ratio": 2.5,
	}
	o := NewAdaptiveOptimizer(nil)
	for i := 0; i < 20; i++ {
		if got := o.Evaluate(snap, nil); got != Normal {
			t.Fatalf("tie must resolve to normal every time, got %q on call %d", got, i)
		}
	}
}
