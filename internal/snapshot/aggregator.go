// Package snapshot flattens a bar series into one IndicatorSnapshot.
//
// The aggregator never returns an error and never panics across its boundary:
// indicators without enough history are omitted, a failing indicator group is
// logged and skipped, and non-finite values are dropped before publication.
package snapshot

import (
	"fmt"

	"StockLens/internal/domain/models"
	"StockLens/internal/indicator"
	applogger "StockLens/pkg/logger"
)

// Periods used throughout the aggregator. The MACD histogram is the doubled
// variant; see internal/indicator.
const (
	macdFast    = 12
	macdSlow    = 26
	macdSignal  = 9
	rsiPeriod   = 14
	bollPeriod  = 20
	bollWidth   = 2.0
	kdjPeriod   = 9
	kdjCOM      = 2.0
	wrPeriod    = 14
	dmiPeriod   = 14
	cciPeriod   = 20
	fibLookback = 60
	tenkanN     = 9
	kijunN      = 26
	senkouN     = 52
)

// Aggregator computes the full indicator snapshot for one bar series.
type Aggregator struct {
	l *applogger.Logger
}

// NewAggregator creates an aggregator; the logger may be nil (tests).
func NewAggregator(l *applogger.Logger) *Aggregator {
	return &Aggregator{l: l}
}

// Aggregate derives the snapshot from ascending-by-date bars. It returns an
// empty mapping for fewer than two bars or when any base field is non-finite.
func (a *Aggregator) Aggregate(bars []models.Bar) models.IndicatorSnapshot {
	snap := models.IndicatorSnapshot{}
	if len(bars) < 2 {
		return snap
	}
	for i := range bars {
		if !bars[i].Valid() {
			a.warn("base series", fmt.Errorf("non-finite or inverted bar at index %d", i))
			return snap
		}
	}

	closes := models.Closes(bars)
	highs := models.Highs(bars)
	lows := models.Lows(bars)
	volumes := models.Volumes(bars)
	n := len(bars)

	put(snap, "close", closes[n-1])
	put(snap, "volume", volumes[n-1])

	a.runGroup(snap, "moving averages", func(s models.IndicatorSnapshot) {
		for _, p := range []int{5, 10, 20, 60} {
			if n < p {
				continue
			}
			ma := indicator.MA(closes, p)
			key := fmt.Sprintf("ma%d", p)
			put(s, key, ma[n-1])
			if n >= p+1 {
				put(s, key+"_prev", ma[n-2])
			}
		}
		if n >= macdFast {
			ema := indicator.EMA(closes, macdFast)
			put(s, "ema12", ema[n-1])
		}
		if n >= macdSlow {
			ema := indicator.EMA(closes, macdSlow)
			put(s, "ema26", ema[n-1])
		}
	})

	a.runGroup(snap, "macd", func(s models.IndicatorSnapshot) {
		if n < macdSlow {
			return
		}
		m := indicator.ComputeMACD(closes, macdFast, macdSlow, macdSignal)
		put(s, "macd_dif", m.DIF[n-1])
		put(s, "macd_dea", m.DEA[n-1])
		put(s, "macd_histogram", m.Histogram[n-1])
		if n >= macdSlow+1 {
			put(s, "macd_dif_prev", m.DIF[n-2])
			put(s, "macd_histogram_prev", m.Histogram[n-2])
		}
		if n >= 30 {
			putList(s, "macd_histogram_last5", tail(m.Histogram, 5))
		}
	})

	a.runGroup(snap, "oscillators", func(s models.IndicatorSnapshot) {
		if n >= rsiPeriod {
			rsi := indicator.RSI(closes, rsiPeriod)
			put(s, "rsi", rsi[n-1])
		}
		if n >= kdjPeriod {
			kdj := indicator.ComputeKDJ(highs, lows, closes, kdjPeriod, kdjCOM)
			put(s, "kdj_k", kdj.K[n-1])
			put(s, "kdj_d", kdj.D[n-1])
			put(s, "kdj_j", kdj.J[n-1])
		}
		if n >= wrPeriod {
			wr := indicator.WilliamsR(highs, lows, closes, wrPeriod)
			put(s, "williams_r", wr[n-1])
			if n >= wrPeriod+1 {
				put(s, "williams_r_prev", wr[n-2])
			}
		}
		if n >= cciPeriod {
			cci := indicator.CCI(highs, lows, closes, cciPeriod)
			put(s, "cci", cci[n-1])
			if n >= cciPeriod+1 {
				put(s, "cci_prev", cci[n-2])
			}
		}
	})

	a.runGroup(snap, "bollinger", func(s models.IndicatorSnapshot) {
		if n < bollPeriod {
			return
		}
		b := indicator.ComputeBollinger(closes, bollPeriod, bollWidth)
		put(s, "boll_middle", b.Middle[n-1])
		put(s, "boll_upper", b.Upper[n-1])
		put(s, "boll_lower", b.Lower[n-1])
	})

	a.runGroup(snap, "dmi", func(s models.IndicatorSnapshot) {
		if n < 2*dmiPeriod {
			return
		}
		d := indicator.ComputeDMI(highs, lows, closes, dmiPeriod)
		put(s, "adx", d.ADX[n-1])
		put(s, "plus_di", d.PlusDI[n-1])
		put(s, "minus_di", d.MinusDI[n-1])
		if n >= 2*dmiPeriod+1 {
			put(s, "adx_prev", d.ADX[n-2])
		}
	})

	a.runGroup(snap, "fibonacci", func(s models.IndicatorSnapshot) {
		if n < 20 {
			return
		}
		r := indicator.ComputeFibonacci(highs, lows, closes, fibLookback)
		s["fib_trend"] = r.Trend
		s["fib_position"] = r.Position
		keys := []string{"fib_0", "fib_236", "fib_382", "fib_500", "fib_618", "fib_786", "fib_1000"}
		for i, key := range keys {
			put(s, key, r.Levels[i])
		}
	})

	a.runGroup(snap, "ichimoku", func(s models.IndicatorSnapshot) {
		if n < senkouN {
			return
		}
		ich := indicator.ComputeIchimoku(highs, lows, closes, tenkanN, kijunN, senkouN)
		put(s, "ichimoku_tenkan", ich.Tenkan[n-1])
		put(s, "ichimoku_kijun", ich.Kijun[n-1])
		put(s, "ichimoku_senkou_a", ich.SenkouA[n-1])
		put(s, "ichimoku_senkou_b", ich.SenkouB[n-1])
		if n >= senkouN+1 {
			put(s, "ichimoku_tenkan_prev", ich.Tenkan[n-2])
			put(s, "ichimoku_kijun_prev", ich.Kijun[n-2])
		}
	})

	a.runGroup(snap, "recent activity", func(s models.IndicatorSnapshot) {
		if n < 6 {
			return
		}
		pct := make([]float64, 0, 5)
		for i := n - 5; i < n; i++ {
			pct = append(pct, (closes[i]-closes[i-1])/closes[i-1]*100)
		}
		putList(s, "pct_change_last5", pct)

		vols := tail(volumes, 5)
		putList(s, "volume_last5", vols)
		recent := (vols[3] + vols[4]) / 2
		older := (vols[0] + vols[1] + vols[2]) / 3
		put(s, "vol_ratio", recent/older)
	})

	return snap
}

// runGroup isolates one indicator family: a panic inside it is logged and
// the group's keys are simply absent from the snapshot.
func (a *Aggregator) runGroup(snap models.IndicatorSnapshot, name string, fn func(models.IndicatorSnapshot)) {
	defer func() {
		if r := recover(); r != nil {
			a.warn(name, fmt.Errorf("%v", r))
		}
	}()
	fn(snap)
}

func (a *Aggregator) warn(group string, err error) {
	if a.l == nil {
		return
	}
	a.l.Warn("indicator group skipped",
		applogger.String("group", group),
		applogger.Error(err),
	)
}

// put publishes a scalar only when finite.
func put(s models.IndicatorSnapshot, key string, v float64) {
	if !indicator.IsFinite(v) {
		return
	}
	s[key] = v
}

// putList publishes a list only when every element is finite.
func putList(s models.IndicatorSnapshot, key string, vs []float64) {
	for _, v := range vs {
		if !indicator.IsFinite(v) {
			return
		}
	}
	s[key] = vs
}

func tail(values []float64, k int) []float64 {
	if len(values) < k {
		k = len(values)
	}
	out := make([]float64, k)
	copy(out, values[len(values)-k:])
	return out
}
