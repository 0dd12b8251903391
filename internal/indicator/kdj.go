package indicator

// KDJ holds the stochastic K/D/J series. K and D stay within [0,100] when
// RSV does; J = 3K - 2D is intentionally unclamped and may leave that range.
type KDJ struct {
	K []float64
	D []float64
	J []float64
}

// ComputeKDJ calculates KDJ with an RSV window of rsvPeriod bars and
// center-of-mass com smoothing for both K and D.
func ComputeKDJ(highs, lows, closes []float64, rsvPeriod int, com float64) KDJ {
	maxHigh := RollingMax(highs, rsvPeriod)
	minLow := RollingMin(lows, rsvPeriod)

	rsv := make([]float64, len(closes))
	for i := range closes {
		rsv[i] = (closes[i] - minLow[i]) / (maxHigh[i] - minLow[i] + Epsilon) * 100
	}

	k := EWMACOM(rsv, com)
	d := EWMACOM(k, com)
	j := make([]float64, len(closes))
	for i := range closes {
		j[i] = 3*k[i] - 2*d[i]
	}
	return KDJ{K: k, D: d, J: j}
}
