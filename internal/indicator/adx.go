package indicator

import "math"

// DMI holds the directional movement series: +DI, -DI and ADX, aligned 1:1
// with the input bars.
type DMI struct {
	PlusDI  []float64
	MinusDI []float64
	ADX     []float64
}

// ComputeDMI calculates the directional movement system. True range and the
// directional movements are smoothed with EWMA(span=period); DX is smoothed
// the same way to produce ADX. The DX denominator carries the epsilon guard;
// a fully flat series yields non-finite DI values which the snapshot layer
// drops.
func ComputeDMI(highs, lows, closes []float64, period int) DMI {
	n := len(closes)
	tr := make([]float64, n)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)

	for i := 0; i < n; i++ {
		if i == 0 {
			tr[0] = highs[0] - lows[0]
			continue
		}
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))

		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	atr := EWMASpan(tr, period)
	sPlus := EWMASpan(plusDM, period)
	sMinus := EWMASpan(minusDM, period)

	plusDI := make([]float64, n)
	minusDI := make([]float64, n)
	dx := make([]float64, n)
	for i := 0; i < n; i++ {
		plusDI[i] = 100 * sPlus[i] / atr[i]
		minusDI[i] = 100 * sMinus[i] / atr[i]
		dx[i] = 100 * math.Abs(plusDI[i]-minusDI[i]) / (plusDI[i] + minusDI[i] + Epsilon)
	}
	adx := EWMASpan(dx, period)

	return DMI{PlusDI: plusDI, MinusDI: minusDI, ADX: adx}
}
