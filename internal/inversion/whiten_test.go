package inversion

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestWhiten_DiagonalScalesByInverseSigma(t *testing.T) {
	cov := mat.NewSymDense(2, []float64{4, 0, 0, 9})
	g := mat.NewDense(2, 1, []float64{1, 1})
	r := mat.NewVecDense(2, []float64{2, 3})

	gw, rw, err := Whiten(cov, g, r, false, 0.99)
	if err != nil {
		t.Fatalf("Whiten: %v", err)
	}
	if math.Abs(gw.At(0, 0)-0.5) > 1e-9 {
		t.Errorf("gw[0,0] = %v, want 0.5 (1/sigma=1/2)", gw.At(0, 0))
	}
	if math.Abs(gw.At(1, 0)-(1.0/3.0)) > 1e-9 {
		t.Errorf("gw[1,0] = %v, want 1/3", gw.At(1, 0))
	}
	if math.Abs(rw.AtVec(0)-1.0) > 1e-9 {
		t.Errorf("rw[0] = %v, want 1.0", rw.AtVec(0))
	}
}

func TestWhiten_CorrelatedPathProducesSquareProjector(t *testing.T) {
	cov := mat.NewSymDense(2, []float64{2, 0.5, 0.5, 2})
	g := mat.NewDense(2, 1, []float64{1, 1})
	r := mat.NewVecDense(2, []float64{1, 1})

	gw, rw, err := Whiten(cov, g, r, true, 0.99)
	if err != nil {
		t.Fatalf("Whiten: %v", err)
	}
	rows, cols := gw.Dims()
	if rows != 2 || cols != 1 {
		t.Fatalf("gw dims = %dx%d, want 2x1", rows, cols)
	}
	n, _ := rw.Dims()
	if n != 2 {
		t.Fatalf("rw dim = %d, want 2", n)
	}
}

func TestEffectiveRank_ThresholdsSmallSingularValues(t *testing.T) {
	sigma := []float64{100, 50, 1e-12}
	rank := effectiveRank(sigma, 3, 3)
	if rank != 2 {
		t.Errorf("effectiveRank = %d, want 2", rank)
	}
}
