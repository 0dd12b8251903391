package indicator

import "testing"

func fibSeries(up bool, n int) (highs, lows, closes []float64) {
	highs = make([]float64, n)
	lows = make([]float64, n)
	closes = make([]float64, n)
	for i := 0; i < n; i++ {
		var c float64
		if up {
			c = 10 + float64(i)
		} else {
			c = 10 + float64(n-1-i)
		}
		highs[i] = c + 0.5
		lows[i] = c - 0.5
		closes[i] = c
	}
	return
}

func TestFibonacciUpTrend(t *testing.T) {
	highs, lows, closes := fibSeries(true, 40)
	r := ComputeFibonacci(highs, lows, closes, 60)

	if r.Trend != "up" {
		t.Fatalf("rising series should detect an up trend, got %q", r.Trend)
	}
	if r.Levels[0] != r.SwingHigh {
		t.Fatalf("fib_0 = %v, want swing high %v", r.Levels[0], r.SwingHigh)
	}
	if r.Levels[len(r.Levels)-1] != r.SwingLow {
		t.Fatalf("fib_100 = %v, want swing low %v", r.Levels[len(r.Levels)-1], r.SwingLow)
	}
	for i := 1; i < len(r.Levels); i++ {
		if r.Levels[i] >= r.Levels[i-1] {
			t.Fatalf("up-trend levels must strictly descend: %v", r.Levels)
		}
	}
	// close is at the swing high end of the window
	if r.Position != "0_236" {
		t.Fatalf("close at the top should sit in the first bucket, got %q", r.Position)
	}
}

func TestFibonacciDownTrend(t *testing.T) {
	highs, lows, closes := fibSeries(false, 40)
	r := ComputeFibonacci(highs, lows, closes, 60)

	if r.Trend != "down" {
		t.Fatalf("falling series should detect a down trend, got %q", r.Trend)
	}
	if r.Levels[0] != r.SwingLow {
		t.Fatalf("fib_0 = %v, want swing low %v", r.Levels[0], r.SwingLow)
	}
	if r.Levels[len(r.Levels)-1] != r.SwingHigh {
		t.Fatalf("fib_100 = %v, want swing high %v", r.Levels[len(r.Levels)-1], r.SwingHigh)
	}
	for i := 1; i < len(r.Levels); i++ {
		if r.Levels[i] <= r.Levels[i-1] {
			t.Fatalf("down-trend levels must strictly ascend: %v", r.Levels)
		}
	}
	if r.Position != "0_236" {
		t.Fatalf("close at the bottom should sit in the first bucket, got %q", r.Position)
	}
}

func TestFibonacciLookbackClipped(t *testing.T) {
	highs, lows, closes := fibSeries(true, 25)
	// lookback larger than the series must not panic and must use all bars
	r := ComputeFibonacci(highs, lows, closes, 60)
	if r.SwingHigh != highs[24] || r.SwingLow != lows[0] {
		t.Fatalf("clipped lookback should span the whole series: %+v", r)
	}
}
