package inversion

import (
	"testing"

	"github.com/quakelocate/iloc-go/internal/config"
	"github.com/quakelocate/iloc-go/internal/covariance"
	"github.com/quakelocate/iloc-go/internal/model"
)

// TestKernel_Run_ConvergesOnLinearDepthOnlyProblem exercises the full
// Build/Whiten/SVD/solve/finalize pipeline on a problem deliberately kept
// linear (a constant dT/dh partial with no lat/lon coupling) so Gauss-
// Newton reaches the exact answer in a single corrective step.
func TestKernel_Run_ConvergesOnLinearDepthOnlyProblem(t *testing.T) {
	const gDepth = 0.05 // s/km
	const trueDepth = 50.0

	cfg := config.Defaults()
	cfg.MinIterations = 1
	cfg.MinNdefPhases = 1
	cfg.DoCorrelatedErrors = false // diagonal whitening keeps the system exactly linear

	vg, err := covariance.NewVariogram([]float64{0, 100}, []float64{0, 0.01}, 1.0, 100)
	if err != nil {
		t.Fatalf("NewVariogram: %v", err)
	}

	phase := &model.Phase{
		StationID:    "AAA",
		TimeDefining: true,
		SigmaTime:    1.0,
		DtDh:         gDepth,
	}
	phases := []*model.Phase{phase}
	stations := map[string]model.Station{}

	event := &model.Event{FixedOriginTime: true, FixedEpicenter: true, FixedDepth: false}

	k := NewKernel(cfg)
	result := k.Run(event, phases, stations, vg, 0, 0, 0, func(lat, lon, depth, otOffset float64) error {
		phase.TimeResidual = gDepth * (trueDepth - depth)
		return nil
	})

	if result.Err != nil {
		t.Fatalf("Run returned error: %v (state=%s)", result.Err, result.State)
	}
	if result.State != Converged {
		t.Fatalf("State = %s, want Converged", result.State)
	}
	if got := result.Solution.Depth; got < trueDepth-1e-6 || got > trueDepth+1e-6 {
		t.Errorf("Depth = %v, want %v", got, trueDepth)
	}
}

func TestKernel_Run_PhaseLossWhenTooFewDefining(t *testing.T) {
	cfg := config.Defaults()
	cfg.MinNdefPhases = 4

	vg, err := covariance.NewVariogram([]float64{0, 100}, []float64{0, 0.01}, 1.0, 100)
	if err != nil {
		t.Fatalf("NewVariogram: %v", err)
	}

	phase := &model.Phase{StationID: "AAA", TimeDefining: true, SigmaTime: 1.0, DtDh: 0.05}
	phases := []*model.Phase{phase}
	event := &model.Event{}

	k := NewKernel(cfg)
	result := k.Run(event, phases, map[string]model.Station{}, vg, 0, 0, 0, func(lat, lon, depth, otOffset float64) error {
		phase.TimeResidual = 0.05 * (50 - depth)
		return nil
	})

	if result.State != PhaseLoss {
		t.Fatalf("State = %s, want PhaseLoss", result.State)
	}
}
