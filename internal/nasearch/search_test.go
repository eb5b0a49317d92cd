package nasearch

import (
	"context"
	"math"
	"testing"
)

// paraboloidEval gives each candidate point its squared distance to a
// fixed true point as its misfit, mimicking an Lp=2 residual sum for a
// single, perfectly-determined observation.
func paraboloidEval(truth [4]float64, active []Axis) Evaluator {
	return func(p [4]float64) (float64, error) {
		var sum float64
		for _, a := range active {
			d := p[a] - truth[a]
			sum += d * d
		}
		return sum, nil
	}
}

func TestSearch_FindsNearGlobalMinimum(t *testing.T) {
	space := NewSpace(false, false, false, 0, 0, 0, 50, 10, 2, 200, 2)
	truth := [4]float64{2, 0.5, -0.3, 40}
	eval := paraboloidEval(truth, space.Active)

	cfg := Config{InitialSample: 64, NextSample: 32, Cells: 8, IterMax: 12, Seed: 7}
	res, err := Search(context.Background(), space, cfg, eval)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Evaluated == 0 {
		t.Fatal("expected at least one evaluation")
	}
	if res.BestMisfit > 5.0 {
		t.Errorf("BestMisfit = %v, expected search to approach the minimum", res.BestMisfit)
	}
	for _, a := range space.Active {
		if math.Abs(res.Best[a]-truth[a]) > 5 {
			t.Errorf("axis %d: best=%v truth=%v, too far", a, res.Best[a], truth[a])
		}
	}
}

func TestSearch_FixedAxesStayAtCentre(t *testing.T) {
	space := NewSpace(true, false, true, 3, 10, 20, 15, 5, 1, 50, 2)
	if space.Nd() != 2 {
		t.Fatalf("Nd() = %d, want 2 (lat/lon only)", space.Nd())
	}
	eval := paraboloidEval([4]float64{3, 10.3, 19.8, 15}, space.Active)
	cfg := Config{InitialSample: 16, NextSample: 8, Cells: 4, IterMax: 3, Seed: 1}

	res, err := Search(context.Background(), space, cfg, eval)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Best[AxisOT] != 3 {
		t.Errorf("fixed OT axis moved: got %v, want 3", res.Best[AxisOT])
	}
	if res.Best[AxisDepth] != 15 {
		t.Errorf("fixed depth axis moved: got %v, want 15", res.Best[AxisDepth])
	}
}

func TestSearch_CancellationReturnsBestSoFar(t *testing.T) {
	space := NewSpace(false, false, false, 0, 0, 0, 50, 10, 2, 200, 2)
	eval := paraboloidEval([4]float64{0, 0, 0, 50}, space.Active)

	cancelCtx, cancel := context.WithCancel(context.Background())
	cancel() // already cancelled before the first round runs

	cfg := Config{InitialSample: 32, NextSample: 16, Cells: 4, IterMax: 50, Seed: 2}
	res, err := Search(cancelCtx, space, cfg, eval)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Evaluated != 32 {
		t.Errorf("Evaluated = %d, want exactly the initial sample (32) on immediate cancellation", res.Evaluated)
	}
}

func TestSearch_AllEvaluationsFailingIsAnError(t *testing.T) {
	space := NewSpace(false, false, false, 0, 0, 0, 50, 10, 2, 200, 2)
	_, err := Search(context.Background(), space, Config{InitialSample: 4, NextSample: 4, Cells: 1, IterMax: 1, Seed: 1},
		func(p [4]float64) (float64, error) { return 0, context.DeadlineExceeded })
	if err == nil {
		t.Fatal("expected an error when every evaluation fails")
	}
}

func TestLpMisfit_MatchesL2SumOfSquares(t *testing.T) {
	got := LpMisfit([]float64{2, -3}, []float64{1, 1}, 2)
	want := 4.0 + 9.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("LpMisfit = %v, want %v", got, want)
	}
}
