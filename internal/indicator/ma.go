package indicator

// MA computes the growing-window simple moving average of the series.
func MA(values []float64, n int) []float64 {
	return SMA(values, n)
}

// EMA computes the exponential moving average with smoothing factor 2/(n+1),
// seeded with the first value.
func EMA(values []float64, n int) []float64 {
	return EWMASpan(values, n)
}
