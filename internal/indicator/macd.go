package indicator

// MACD holds the fast line (DIF), signal line (DEA) and histogram, each
// aligned 1:1 with the input series.
type MACD struct {
	DIF       []float64
	DEA       []float64
	Histogram []float64
}

// ComputeMACD calculates MACD with the given fast/slow/signal periods.
// The histogram is doubled relative to the international convention:
// histogram = 2*(DIF-DEA). Downstream consumers depend on that scaling.
func ComputeMACD(closes []float64, fast, slow, signal int) MACD {
	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)

	dif := make([]float64, len(closes))
	for i := range closes {
		dif[i] = emaFast[i] - emaSlow[i]
	}
	dea := EMA(dif, signal)

	hist := make([]float64, len(closes))
	for i := range closes {
		hist[i] = 2 * (dif[i] - dea[i])
	}
	return MACD{DIF: dif, DEA: dea, Histogram: hist}
}
