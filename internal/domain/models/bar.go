package models

import (
	"math"
	"time"
)

// Bar represents one OHLCV price/volume observation for a single trading day.
// Series of bars are ordered ascending by Date.
type Bar struct {
	Symbol string
	Market string
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	Amount float64
}

// Valid reports whether the bar satisfies the basic data-quality contract:
// all six numeric fields finite and high >= low. Violations are an upstream
// collector concern; ingestion rejects them with a logged error.
func (b *Bar) Valid() bool {
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume, b.Amount} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.High >= b.Low
}

// Closes extracts the close series aligned 1:1 with bars.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Highs extracts the high series aligned 1:1 with bars.
func Highs(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.High
	}
	return out
}

// Lows extracts the low series aligned 1:1 with bars.
func Lows(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Low
	}
	return out
}

// Volumes extracts the volume series aligned 1:1 with bars.
func Volumes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Volume
	}
	return out
}
