package indicator

// RSI computes the relative strength index over growing windows of length
// period. Gains and losses are the positive/negative parts of one-step close
// deltas (position 0 contributes zero of each); their growing-window means
// feed RSI = 100 - 100/(1 + avgGain/(avgLoss+eps)).
func RSI(closes []float64, period int) []float64 {
	deltas := Diff(closes)
	gains := make([]float64, len(deltas))
	losses := make([]float64, len(deltas))
	for i, d := range deltas {
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}

	avgGain := SMA(gains, period)
	avgLoss := SMA(losses, period)

	out := make([]float64, len(closes))
	for i := range closes {
		rs := avgGain[i] / (avgLoss[i] + Epsilon)
		out[i] = 100 - 100/(1+rs)
	}
	return out
}
