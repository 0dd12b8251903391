package snapshot

import (
	"math"
	"testing"
	"time"

	"StockLens/internal/domain/models"
)

func mkBars(n int) []models.Bar {
	bars := make([]models.Bar, n)
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		c := 100 + math.Sin(float64(i)/3)*5 + float64(i)*0.2
		bars[i] = models.Bar{
			Symbol: "600519",
			Market: "sh",
			Date:   day.AddDate(0, 0, i),
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000 + 50*float64(i%7),
			Amount: c * 1000,
		}
	}
	return bars
}

func TestAggregateTooShort(t *testing.T) {
	agg := NewAggregator(nil)
	if got := agg.Aggregate(nil); len(got) != 0 {
		t.Fatalf("empty input should yield an empty snapshot, got %v", got)
	}
	if got := agg.Aggregate(mkBars(1)); len(got) != 0 {
		t.Fatalf("single bar should yield an empty snapshot, got %v", got)
	}
}

func TestAggregateRejectsNonFiniteBase(t *testing.T) {
	bars := mkBars(60)
	bars[30].Close = math.NaN()
	agg := NewAggregator(nil)
	if got := agg.Aggregate(bars); len(got) != 0 {
		t.Fatalf("non-finite close must empty the whole snapshot, got %d keys", len(got))
	}
}

// Each indicator appears exactly at its minimum history and not one bar before.
func TestAggregateHistoryGates(t *testing.T) {
	cases := []struct {
		key string
		min int
	}{
		{"ma5", 5},
		{"ma10", 10},
		{"ma20", 20},
		{"ma60", 60},
		{"ema12", 12},
		{"ema26", 26},
		{"macd_dif", 26},
		{"macd_histogram", 26},
		{"rsi", 14},
		{"kdj_k", 9},
		{"kdj_j", 9},
		{"williams_r", 14},
		{"cci", 20},
		{"boll_middle", 20},
		{"boll_upper", 20},
		{"adx", 28},
		{"plus_di", 28},
		{"fib_trend", 20},
		{"fib_500", 20},
		{"ichimoku_tenkan", 52},
		{"ichimoku_senkou_b", 52},
		{"vol_ratio", 6},
		{"pct_change_last5", 6},
		{"macd_histogram_last5", 30},
	}
	agg := NewAggregator(nil)
	for _, tc := range cases {
		before := agg.Aggregate(mkBars(tc.min - 1))
		if _, ok := before[tc.key]; ok {
			t.Fatalf("%s must be absent at %d bars", tc.key, tc.min-1)
		}
		at := agg.Aggregate(mkBars(tc.min))
		if _, ok := at[tc.key]; !ok {
			t.Fatalf("%s must be present at %d bars", tc.key, tc.min)
		}
	}
}

func TestAggregatePrevValues(t *testing.T) {
	agg := NewAggregator(nil)

	// exactly the minimum: current value without its _prev companion
	exact := agg.Aggregate(mkBars(5))
	if _, ok := exact["ma5"]; !ok {
		t.Fatalf("ma5 should be present at 5 bars")
	}
	if _, ok := exact["ma5_prev"]; ok {
		t.Fatalf("ma5_prev needs one extra bar of history")
	}

	more := agg.Aggregate(mkBars(6))
	prev, ok := more.Float("ma5_prev")
	if !ok {
		t.Fatalf("ma5_prev should appear at 6 bars")
	}
	cur, _ := more.Float("ma5")
	if prev == cur {
		t.Fatalf("prev and current ma5 should differ on a moving series")
	}
}

func TestAggregateVolumeRatio(t *testing.T) {
	bars := mkBars(10)
	vols := []float64{100, 100, 100, 400, 400}
	for i := 0; i < 5; i++ {
		bars[5+i].Volume = vols[i]
	}
	agg := NewAggregator(nil)
	snap := agg.Aggregate(bars)

	got, ok := snap.Float("vol_ratio")
	if !ok {
		t.Fatalf("vol_ratio missing")
	}
	// mean(400,400) / mean(100,100,100) = 4
	if math.Abs(got-4) > 1e-12 {
		t.Fatalf("vol_ratio = %v, want 4", got)
	}

	last5, ok := snap.Floats("volume_last5")
	if !ok || len(last5) != 5 {
		t.Fatalf("volume_last5 wrong: %v", last5)
	}
	for i, v := range vols {
		if last5[i] != v {
			t.Fatalf("volume_last5[%d] = %v, want %v", i, last5[i], v)
		}
	}
}

func TestAggregatePctChangeLast5(t *testing.T) {
	bars := mkBars(10)
	for i := range bars {
		bars[i].Close = 100 * math.Pow(1.01, float64(i))
		bars[i].High = bars[i].Close + 1
		bars[i].Low = bars[i].Close - 1
		bars[i].Open = bars[i].Close
	}
	agg := NewAggregator(nil)
	snap := agg.Aggregate(bars)

	pct, ok := snap.Floats("pct_change_last5")
	if !ok || len(pct) != 5 {
		t.Fatalf("pct_change_last5 wrong: %v", pct)
	}
	for i, v := range pct {
		if math.Abs(v-1.0) > 1e-9 {
			t.Fatalf("pct_change_last5[%d] = %v, want 1.0", i, v)
		}
	}
}

func TestAggregateFullSnapshotShape(t *testing.T) {
	agg := NewAggregator(nil)
	snap := agg.Aggregate(mkBars(120))

	for _, key := range []string{
		"close", "volume", "ma5", "ma10", "ma20", "ma60",
		"ma5_prev", "ma10_prev", "ma20_prev", "ma60_prev",
		"ema12", "ema26",
		"macd_dif", "macd_dea", "macd_histogram", "macd_dif_prev", "macd_histogram_prev",
		"rsi", "kdj_k", "kdj_d", "kdj_j",
		"williams_r", "williams_r_prev", "cci", "cci_prev",
		"boll_middle", "boll_upper", "boll_lower",
		"adx", "adx_prev", "plus_di", "minus_di",
		"fib_trend", "fib_position", "fib_0", "fib_236", "fib_382",
		"fib_500", "fib_618", "fib_786", "fib_1000",
		"ichimoku_tenkan", "ichimoku_kijun", "ichimoku_senkou_a", "ichimoku_senkou_b",
		"ichimoku_tenkan_prev", "ichimoku_kijun_prev",
		"vol_ratio", "volume_last5", "pct_change_last5", "macd_histogram_last5",
	} {
		if _, ok := snap[key]; !ok {
			t.Fatalf("key %q missing from a 120-bar snapshot", key)
		}
	}

	if trend, _ := snap.Str("fib_trend"); trend != "up" && trend != "down" {
		t.Fatalf("fib_trend = %q", trend)
	}
	for key, v := range snap {
		switch val := v.(type) {
		case float64:
			if math.IsNaN(val) || math.IsInf(val, 0) {
				t.Fatalf("published scalar %q is not finite: %v", key, val)
			}
		case []float64:
			for _, f := range val {
				if math.IsNaN(f) || math.IsInf(f, 0) {
					t.Fatalf("published list %q holds a non-finite value", key)
				}
			}
		case string:
		default:
			t.Fatalf("unexpected value type under %q: %T", key, v)
		}
	}
}
