package indicator

// WilliamsR computes Williams %R over growing windows of length period.
// Output stays within [-100, 0] for finite input.
func WilliamsR(highs, lows, closes []float64, period int) []float64 {
	maxHigh := RollingMax(highs, period)
	minLow := RollingMin(lows, period)

	out := make([]float64, len(closes))
	for i := range closes {
		out[i] = -100 * (maxHigh[i] - closes[i]) / (maxHigh[i] - minLow[i] + Epsilon)
	}
	return out
}
