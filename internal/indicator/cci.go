package indicator

import "math"

// CCI computes the commodity channel index over growing windows:
// (typical - MA(typical)) / (0.015 * meanAbsDev(typical) + eps),
// typical price = (high+low+close)/3.
func CCI(highs, lows, closes []float64, period int) []float64 {
	n := len(closes)
	typical := make([]float64, n)
	for i := 0; i < n; i++ {
		typical[i] = (highs[i] + lows[i] + closes[i]) / 3
	}

	ma := SMA(typical, period)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		start := i + 1 - period
		if start < 0 {
			start = 0
		}
		dev := 0.0
		for j := start; j <= i; j++ {
			dev += math.Abs(typical[j] - ma[i])
		}
		dev /= float64(i - start + 1)
		out[i] = (typical[i] - ma[i]) / (0.015*dev + Epsilon)
	}
	return out
}
