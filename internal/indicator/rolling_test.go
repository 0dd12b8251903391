package indicator

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestSMAGrowingWindow(t *testing.T) {
	in := []float64{2, 4, 6, 8, 10}
	got := SMA(in, 3)
	want := []float64{2, 3, 4, 6, 8}
	for i := range want {
		if !almostEqual(got[i], want[i], 1e-12) {
			t.Fatalf("sma[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSMAWindowOne(t *testing.T) {
	in := []float64{5, 1, 9, 3}
	got := SMA(in, 1)
	for i := range in {
		if got[i] != in[i] {
			t.Fatalf("sma(1)[%d] = %v, want %v", i, got[i], in[i])
		}
	}
}

func TestRollingStdGrowingWindow(t *testing.T) {
	in := []float64{1, 3, 5, 7}
	got := RollingStd(in, 3)
	if got[0] != 0 {
		t.Fatalf("single-point window stdev = %v, want 0", got[0])
	}
	// window {1,3}: sample stdev = sqrt(2)
	if !almostEqual(got[1], math.Sqrt2, 1e-12) {
		t.Fatalf("stdev[1] = %v, want %v", got[1], math.Sqrt2)
	}
	// window {1,3,5}: sample stdev = 2
	if !almostEqual(got[2], 2, 1e-12) {
		t.Fatalf("stdev[2] = %v, want 2", got[2])
	}
	// window {3,5,7}: sample stdev = 2
	if !almostEqual(got[3], 2, 1e-12) {
		t.Fatalf("stdev[3] = %v, want 2", got[3])
	}
}

func TestRollingExtremesMatchNaive(t *testing.T) {
	in := []float64{4, 2, 7, 1, 9, 3, 3, 8, 0, 5}
	n := 4
	gotMax := RollingMax(in, n)
	gotMin := RollingMin(in, n)
	for i := range in {
		start := i + 1 - n
		if start < 0 {
			start = 0
		}
		wantMax, wantMin := in[start], in[start]
		for j := start; j <= i; j++ {
			if in[j] > wantMax {
				wantMax = in[j]
			}
			if in[j] < wantMin {
				wantMin = in[j]
			}
		}
		if gotMax[i] != wantMax {
			t.Fatalf("max[%d] = %v, want %v", i, gotMax[i], wantMax)
		}
		if gotMin[i] != wantMin {
			t.Fatalf("min[%d] = %v, want %v", i, gotMin[i], wantMin)
		}
	}
}

func TestEWMASeedAndRecursion(t *testing.T) {
	in := []float64{10, 20, 30}
	got := EWMA(in, 0.5)
	if got[0] != 10 {
		t.Fatalf("seed = %v, want first value", got[0])
	}
	if !almostEqual(got[1], 15, 1e-12) {
		t.Fatalf("ewma[1] = %v, want 15", got[1])
	}
	if !almostEqual(got[2], 22.5, 1e-12) {
		t.Fatalf("ewma[2] = %v, want 22.5", got[2])
	}
}

func TestShifts(t *testing.T) {
	in := []float64{1, 2, 3, 4}
	fwd := ShiftForward(in, 2)
	if !math.IsNaN(fwd[0]) || !math.IsNaN(fwd[1]) {
		t.Fatalf("forward shift should blank the first positions: %v", fwd)
	}
	if fwd[2] != 1 || fwd[3] != 2 {
		t.Fatalf("forward shift values wrong: %v", fwd)
	}
	back := ShiftBack(in, 2)
	if back[0] != 3 || back[1] != 4 {
		t.Fatalf("backward shift values wrong: %v", back)
	}
	if !math.IsNaN(back[2]) || !math.IsNaN(back[3]) {
		t.Fatalf("backward shift should blank the last positions: %v", back)
	}
}
