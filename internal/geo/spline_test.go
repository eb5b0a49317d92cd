package geo

import (
	"math"
	"testing"
)

func TestSpline_ExactAtSamples(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{0, 1, 4, 9, 16} // x^2, not exactly cubic but close enough to check samples
	sp, err := PrepareSpline(x, y)
	if err != nil {
		t.Fatalf("PrepareSpline: %v", err)
	}
	for i, xq := range x {
		got, _, _ := sp.Eval(xq)
		if math.Abs(got-y[i]) > 1e-9 {
			t.Errorf("Eval(%v) = %v, want %v", xq, got, y[i])
		}
	}
}

func TestSpline_LinearIsExactEverywhere(t *testing.T) {
	x := []float64{0, 1, 2, 3}
	y := []float64{1, 3, 5, 7} // y = 1 + 2x, spline of a line reproduces it exactly
	sp, err := PrepareSpline(x, y)
	if err != nil {
		t.Fatalf("PrepareSpline: %v", err)
	}
	for _, xq := range []float64{0.5, 1.2, 2.7} {
		got, dy, _ := sp.Eval(xq)
		want := 1 + 2*xq
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("Eval(%v) = %v, want %v", xq, got, want)
		}
		if math.Abs(dy-2) > 1e-9 {
			t.Errorf("dy at %v = %v, want 2", xq, dy)
		}
	}
}

func TestPrepareSpline_RejectsNonIncreasing(t *testing.T) {
	_, err := PrepareSpline([]float64{0, 1, 1}, []float64{0, 1, 2})
	if err == nil {
		t.Fatal("expected error for non-increasing x")
	}
}

func TestBracketFloat(t *testing.T) {
	xs := []float64{0, 1, 2, 5, 10}
	cases := []struct {
		xq       float64
		wantI, wantJ int
	}{
		{-1, 0, 1},
		{0, 0, 1},
		{1.5, 1, 2},
		{5, 3, 4}, // exact sample hit lands in the interval it opens
		{10, 3, 4},
		{100, 3, 4},
	}
	for _, c := range cases {
		i, j := BracketFloat(xs, c.xq)
		if i != c.wantI || j != c.wantJ {
			t.Errorf("BracketFloat(xs, %v) = (%d,%d), want (%d,%d)", c.xq, i, j, c.wantI, c.wantJ)
		}
	}
}

func TestBilinear_ExactAtNodes(t *testing.T) {
	xs := []float64{0, 1, 2}
	ys := []float64{0, 10}
	z := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	for i, x := range xs {
		for j, y := range ys {
			got, err := Bilinear(xs, ys, z, x, y)
			if err != nil {
				t.Fatalf("Bilinear: %v", err)
			}
			if math.Abs(got-z[i][j]) > 1e-9 {
				t.Errorf("Bilinear(%v,%v) = %v, want %v", x, y, got, z[i][j])
			}
		}
	}
}
