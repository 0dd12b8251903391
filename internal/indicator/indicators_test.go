package indicator

import (
	"math"
	"testing"
)

func risingCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 10 + float64(i)
	}
	return out
}

func TestMAOnIncreasingSeriesIsNonDecreasing(t *testing.T) {
	in := risingCloses(40)
	for _, n := range []int{1, 5, 20} {
		got := MA(in, n)
		for i := 1; i < len(got); i++ {
			if got[i] < got[i-1] {
				t.Fatalf("MA(%d) decreased at %d: %v -> %v", n, i, got[i-1], got[i])
			}
		}
	}
}

func TestEMAConstantSeries(t *testing.T) {
	in := make([]float64, 30)
	for i := range in {
		in[i] = 42.5
	}
	got := EMA(in, 12)
	for i, v := range got {
		if v != 42.5 {
			t.Fatalf("EMA of constant series diverged at %d: %v", i, v)
		}
	}
}

func TestMACDHistogramDoubled(t *testing.T) {
	closes := []float64{10, 11, 10.5, 12, 13, 12.2, 14, 15, 14.5, 16, 17, 16.1, 18, 19}
	m := ComputeMACD(closes, 12, 26, 9)
	for i := range closes {
		want := 2 * (m.DIF[i] - m.DEA[i])
		if m.Histogram[i] != want {
			t.Fatalf("histogram[%d] = %v, want exactly %v", i, m.Histogram[i], want)
		}
	}
}

func TestRSIBoundsAndExtremes(t *testing.T) {
	up := risingCloses(30)
	down := make([]float64, 30)
	for i := range down {
		down[i] = 100 - float64(i)
	}

	for _, closes := range [][]float64{up, down} {
		for i, v := range RSI(closes, 14) {
			if v < 0 || v > 100 {
				t.Fatalf("rsi[%d] = %v out of [0,100]", i, v)
			}
		}
	}

	rsiUp := RSI(up, 14)
	if last := rsiUp[len(rsiUp)-1]; last < 99.99 {
		t.Fatalf("all-positive deltas should push RSI toward 100, got %v", last)
	}
	rsiDown := RSI(down, 14)
	if last := rsiDown[len(rsiDown)-1]; last > 1e-9 {
		t.Fatalf("all-negative deltas should push RSI toward 0, got %v", last)
	}
}

func TestBollingerOrdering(t *testing.T) {
	closes := []float64{10, 12, 9, 14, 11, 13, 10, 15, 12, 16, 11, 14, 13, 15, 12, 17, 14, 16, 13, 18, 15, 19}
	b := ComputeBollinger(closes, 20, 2)
	for i := range closes {
		if b.Upper[i] < b.Middle[i] || b.Middle[i] < b.Lower[i] {
			t.Fatalf("band ordering broken at %d: %v %v %v", i, b.Upper[i], b.Middle[i], b.Lower[i])
		}
	}
}

// vShape builds a decline followed by a strong rally (or the mirror image),
// which makes RSV jump between its extremes so K leads D.
func vShape(n int, down bool) (highs, lows, closes []float64) {
	highs = make([]float64, n)
	lows = make([]float64, n)
	closes = make([]float64, n)
	for i := 0; i < n; i++ {
		var c float64
		if i < n/2 {
			c = 50 - float64(i)
		} else {
			c = 50 - float64(n/2) + 2*float64(i-n/2)
		}
		if down {
			c = 100 - c
		}
		closes[i] = c
		highs[i] = c + 0.5
		lows[i] = c - 0.5
	}
	return
}

func TestKDJBoundsAndUnclampedJ(t *testing.T) {
	highs, lows, closes := vShape(40, false)
	kdj := ComputeKDJ(highs, lows, closes, 9, 2)

	maxJ := math.Inf(-1)
	for i := range closes {
		if kdj.K[i] < 0 || kdj.K[i] > 100 {
			t.Fatalf("K[%d] = %v out of [0,100]", i, kdj.K[i])
		}
		if kdj.D[i] < 0 || kdj.D[i] > 100 {
			t.Fatalf("D[%d] = %v out of [0,100]", i, kdj.D[i])
		}
		if kdj.J[i] > maxJ {
			maxJ = kdj.J[i]
		}
	}
	if maxJ <= 100 {
		t.Fatalf("J must not be clamped; expected an excursion above 100, max was %v", maxJ)
	}

	// mirror image: rally then sell-off pushes J below 0
	highs, lows, closes = vShape(40, true)
	kdj = ComputeKDJ(highs, lows, closes, 9, 2)
	minJ := math.Inf(1)
	for _, v := range kdj.J {
		if v < minJ {
			minJ = v
		}
	}
	if minJ >= 0 {
		t.Fatalf("expected J below 0 after a sell-off, min was %v", minJ)
	}
}

func TestWilliamsRBounds(t *testing.T) {
	highs := []float64{11, 12, 13, 12, 14, 15, 13, 16, 14, 17, 15, 18, 16, 19, 17}
	lows := []float64{9, 10, 11, 10, 12, 13, 11, 14, 12, 15, 13, 16, 14, 17, 15}
	closes := []float64{10, 11, 12, 11, 13, 14, 12, 15, 13, 16, 14, 17, 15, 18, 16}
	for i, v := range WilliamsR(highs, lows, closes, 14) {
		if v < -100 || v > 0 {
			t.Fatalf("williams[%d] = %v out of [-100,0]", i, v)
		}
	}
}

func TestDMIDirectionalSplit(t *testing.T) {
	n := 60
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		base := 10 + 0.5*float64(i)
		highs[i] = base + 1
		lows[i] = base - 1
		closes[i] = base
	}
	d := ComputeDMI(highs, lows, closes, 14)
	last := n - 1
	if d.PlusDI[last] <= d.MinusDI[last] {
		t.Fatalf("steady uptrend should have +DI > -DI: %v vs %v", d.PlusDI[last], d.MinusDI[last])
	}
	for i := 0; i < n; i++ {
		if !IsFinite(d.ADX[i]) {
			t.Fatalf("adx[%d] not finite", i)
		}
		if d.PlusDI[i] < 0 || d.MinusDI[i] < 0 {
			t.Fatalf("DI must be non-negative at %d: %v %v", i, d.PlusDI[i], d.MinusDI[i])
		}
	}
}

func TestCCISignAroundMean(t *testing.T) {
	n := 30
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		base := 10 + float64(i%3) // oscillating
		highs[i] = base + 0.5
		lows[i] = base - 0.5
		closes[i] = base
	}
	// spike the last bar well above the window mean
	highs[n-1], lows[n-1], closes[n-1] = 30, 29, 29.5
	got := CCI(highs, lows, closes, 20)
	if got[n-1] <= 0 {
		t.Fatalf("spike above the mean should give positive CCI, got %v", got[n-1])
	}
}

func TestIchimokuShifts(t *testing.T) {
	n := 80
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		c := 10 + float64(i)
		highs[i] = c + 1
		lows[i] = c - 1
		closes[i] = c
	}
	ich := ComputeIchimoku(highs, lows, closes, 9, 26, 52)

	for i := 0; i < 26; i++ {
		if !math.IsNaN(ich.SenkouA[i]) || !math.IsNaN(ich.SenkouB[i]) {
			t.Fatalf("senkou must be undefined before the forward shift fills, index %d", i)
		}
	}
	if math.IsNaN(ich.SenkouA[26]) {
		t.Fatalf("senkou A should be defined at index 26")
	}
	// senkou A at i is the midline pair computed 26 bars earlier
	want := (ich.Tenkan[26] + ich.Kijun[26]) / 2
	if ich.SenkouA[52] != want {
		t.Fatalf("senkou A[52] = %v, want %v", ich.SenkouA[52], want)
	}

	for i := n - 26; i < n; i++ {
		if !math.IsNaN(ich.Chikou[i]) {
			t.Fatalf("chikou must be undefined for the last kijun-period bars, index %d", i)
		}
	}
	if ich.Chikou[0] != closes[26] {
		t.Fatalf("chikou[0] = %v, want %v", ich.Chikou[0], closes[26])
	}
}
