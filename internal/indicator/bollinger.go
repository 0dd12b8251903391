package indicator

// Bollinger holds the three band series aligned 1:1 with the input.
type Bollinger struct {
	Middle []float64
	Upper  []float64
	Lower  []float64
}

// ComputeBollinger calculates Bollinger bands: middle = MA(period) and
// upper/lower = middle +/- k * growing-window sample stdev.
func ComputeBollinger(closes []float64, period int, k float64) Bollinger {
	middle := MA(closes, period)
	std := RollingStd(closes, period)

	upper := make([]float64, len(closes))
	lower := make([]float64, len(closes))
	for i := range closes {
		upper[i] = middle[i] + k*std[i]
		lower[i] = middle[i] - k*std[i]
	}
	return Bollinger{Middle: middle, Upper: upper, Lower: lower}
}
