// Package indicator implements the technical-indicator library over bar series.
//
// Every function is pure: no I/O, no panics for well-formed numeric input.
// Rolling statistics use a growing window: with window size n the value at
// position i covers the min(i+1, n) most recent observations, so early outputs
// are valid, just based on less data. Undefined positions (shifted series) are
// math.NaN; the snapshot layer converts non-finite values to absence.
package indicator

import "math"

// Epsilon guards every denominator that can legitimately reach zero
// (price range, deviation, sum of directional indicators).
const Epsilon = 1e-10

// SMA computes the growing-window simple moving average.
func SMA(values []float64, n int) []float64 {
	out := make([]float64, len(values))
	if n < 1 {
		n = 1
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= n {
			sum -= values[i-n]
		}
		w := i + 1
		if w > n {
			w = n
		}
		out[i] = sum / float64(w)
	}
	return out
}

// RollingStd computes the growing-window sample standard deviation.
// Windows with fewer than two observations yield 0.
func RollingStd(values []float64, n int) []float64 {
	out := make([]float64, len(values))
	if n < 1 {
		n = 1
	}
	sum := 0.0
	sumSq := 0.0
	for i, v := range values {
		sum += v
		sumSq += v * v
		if i >= n {
			old := values[i-n]
			sum -= old
			sumSq -= old * old
		}
		w := i + 1
		if w > n {
			w = n
		}
		if w < 2 {
			out[i] = 0
			continue
		}
		fw := float64(w)
		variance := (sumSq - sum*sum/fw) / (fw - 1)
		if variance < 0 {
			variance = 0
		}
		out[i] = math.Sqrt(variance)
	}
	return out
}

// RollingMax computes the growing-window maximum using a monotonic deque.
func RollingMax(values []float64, n int) []float64 {
	return rollingExtreme(values, n, func(a, b float64) bool { return a >= b })
}

// RollingMin computes the growing-window minimum using a monotonic deque.
func RollingMin(values []float64, n int) []float64 {
	return rollingExtreme(values, n, func(a, b float64) bool { return a <= b })
}

// rollingExtreme keeps deque indexes whose values dominate (per beats) all
// later entries, so the front is always the window extreme.
func rollingExtreme(values []float64, n int, beats func(a, b float64) bool) []float64 {
	out := make([]float64, len(values))
	if n < 1 {
		n = 1
	}
	deque := make([]int, 0, n)
	for i, v := range values {
		for len(deque) > 0 && beats(v, values[deque[len(deque)-1]]) {
			deque = deque[:len(deque)-1]
		}
		deque = append(deque, i)
		if deque[0] <= i-n {
			deque = deque[1:]
		}
		out[i] = values[deque[0]]
	}
	return out
}

// EWMA computes recursive exponential smoothing seeded with the first value:
// y[0] = x[0], y[i] = alpha*x[i] + (1-alpha)*y[i-1].
func EWMA(values []float64, alpha float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// EWMASpan smooths with alpha = 2/(span+1).
func EWMASpan(values []float64, span int) []float64 {
	return EWMA(values, 2/(float64(span)+1))
}

// EWMACOM smooths with alpha = 1/(1+com), com given as center of mass.
func EWMACOM(values []float64, com float64) []float64 {
	return EWMA(values, 1/(1+com))
}

// ShiftForward moves the series k positions toward the end; the first k
// positions become NaN.
func ShiftForward(values []float64, k int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		if i < k {
			out[i] = math.NaN()
			continue
		}
		out[i] = values[i-k]
	}
	return out
}

// ShiftBack moves the series k positions toward the start; the last k
// positions become NaN.
func ShiftBack(values []float64, k int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		if i+k >= len(values) {
			out[i] = math.NaN()
			continue
		}
		out[i] = values[i+k]
	}
	return out
}

// Diff computes one-step differences aligned with the input; position 0 is 0.
func Diff(values []float64) []float64 {
	out := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		out[i] = values[i] - values[i-1]
	}
	return out
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
