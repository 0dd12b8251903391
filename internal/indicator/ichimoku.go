package indicator

// Ichimoku holds the cloud series. SenkouA/SenkouB are shifted forward by the
// kijun period, so their first positions are NaN; Chikou is the close shifted
// backward, so its last positions are NaN.
type Ichimoku struct {
	Tenkan  []float64
	Kijun   []float64
	SenkouA []float64
	SenkouB []float64
	Chikou  []float64
}

// ComputeIchimoku calculates the Ichimoku cloud with the given tenkan, kijun
// and senkou-B window lengths (classically 9, 26, 52). Rolling extremes use
// the library's growing-window policy.
func ComputeIchimoku(highs, lows, closes []float64, tenkanN, kijunN, senkouN int) Ichimoku {
	n := len(closes)

	tenkan := midline(highs, lows, tenkanN)
	kijun := midline(highs, lows, kijunN)

	rawA := make([]float64, n)
	for i := 0; i < n; i++ {
		rawA[i] = (tenkan[i] + kijun[i]) / 2
	}

	return Ichimoku{
		Tenkan:  tenkan,
		Kijun:   kijun,
		SenkouA: ShiftForward(rawA, kijunN),
		SenkouB: ShiftForward(midline(highs, lows, senkouN), kijunN),
		Chikou:  ShiftBack(closes, kijunN),
	}
}

func midline(highs, lows []float64, n int) []float64 {
	maxH := RollingMax(highs, n)
	minL := RollingMin(lows, n)
	out := make([]float64, len(highs))
	for i := range out {
		out[i] = (maxH[i] + minL[i]) / 2
	}
	return out
}
