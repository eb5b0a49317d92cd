package depthphase

import (
	"testing"
	"time"

	"github.com/quakelocate/iloc-go/internal/model"
	"github.com/quakelocate/iloc-go/internal/traveltime"
)

// linearDepthTable builds a table whose travel time is an affine function
// of depth only (independent of delta), so the moveout curve is exactly
// invertible and the stack's argmax lands on the known true depth.
func linearDepthTable(t *testing.T, phase string, base, slope float64) *traveltime.Table {
	t.Helper()
	distances := []float64{0, 10, 20, 30, 40}
	depths := []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	tt := make([][]float64, len(distances))
	for i := range tt {
		tt[i] = make([]float64, len(depths))
		for j, h := range depths {
			tt[i][j] = base + slope*h
		}
	}
	tbl, err := traveltime.NewTable(phase, phase != "P", distances, depths, tt, tt, tt, nil)
	if err != nil {
		t.Fatalf("NewTable(%s): %v", phase, err)
	}
	return tbl
}

func newTestContext(t *testing.T) *traveltime.Context {
	t.Helper()
	ctx := traveltime.NewContext()
	ctx.Global["P"] = linearDepthTable(t, "P", 200, 0.1)
	ctx.Global["pP"] = linearDepthTable(t, "pP", 200, 0.2) // faster moveout growth with depth
	return ctx
}

func TestStack_DiscardsFewerThanThreeContributions(t *testing.T) {
	ctx := newTestContext(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	firstP := &model.Phase{
		Phase: "P", Delta: 20, ESAZ: 10, ArrivalTime: base,
		TimeDefining: true, FirstP: true, PPIndex: 1, SigmaTime: 1.0,
	}
	pP := &model.Phase{Phase: "pP", ArrivalTime: base.Add(6 * time.Second), TimeDefining: true, SigmaTime: 1.0}
	phases := []*model.Phase{firstP, pP}
	readings := []model.Reading{{Start: 0, Count: 2}}

	res := Stack(phases, readings, ctx, model.MaxHypocenterDepth)
	if res.Valid {
		t.Fatalf("expected invalid result with only 1 contribution, got ndp=%d", res.Ndp)
	}
}

func TestStack_ConvergesToTrueDepthWithEnoughReadings(t *testing.T) {
	ctx := newTestContext(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	const trueDepth = 30.0
	moveout := (200 + 0.2*trueDepth) - (200 + 0.1*trueDepth) // pP-P moveout at true depth

	var phases []*model.Phase
	var readings []model.Reading
	for i := 0; i < 5; i++ {
		start := len(phases)
		firstP := &model.Phase{
			Phase: "P", Delta: 20, ESAZ: 10, ArrivalTime: base,
			TimeDefining: true, FirstP: true, PPIndex: 1, SigmaTime: 1.0,
		}
		pP := &model.Phase{
			Phase: "pP", ArrivalTime: base.Add(time.Duration(moveout * float64(time.Second))),
			TimeDefining: true, SigmaTime: 1.0,
		}
		phases = append(phases, firstP, pP)
		readings = append(readings, model.Reading{Start: start, Count: 2})
	}

	res := Stack(phases, readings, ctx, model.MaxHypocenterDepth)
	if !res.Valid {
		t.Fatalf("expected a valid stack result, got ndp=%d", res.Ndp)
	}
	if res.Ndp != 5 {
		t.Errorf("Ndp = %d, want 5", res.Ndp)
	}
	if diff := res.DepDp - trueDepth; diff > 5 || diff < -5 {
		t.Errorf("DepDp = %v, want within 5km of %v", res.DepDp, trueDepth)
	}
}
