package phaseid

import (
	"testing"
	"time"

	"github.com/quakelocate/iloc-go/internal/model"
	"github.com/quakelocate/iloc-go/internal/traveltime"
)

func linearTable(t *testing.T, phase string, slope float64) *traveltime.Table {
	t.Helper()
	distances := []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90}
	depths := []float64{0, 33, 100}
	tt := make([][]float64, len(distances))
	for i, d := range distances {
		tt[i] = make([]float64, len(depths))
		for j := range depths {
			tt[i][j] = d * slope
		}
	}
	tbl, err := traveltime.NewTable(phase, false, distances, depths, tt, tt, tt, nil)
	if err != nil {
		t.Fatalf("NewTable(%s): %v", phase, err)
	}
	return tbl
}

func testContext(t *testing.T) *traveltime.Context {
	t.Helper()
	ctx := traveltime.NewContext()
	ctx.Global["P"] = linearTable(t, "P", 10.0)
	ctx.Global["Pn"] = linearTable(t, "Pn", 9.8)
	ctx.Global["S"] = linearTable(t, "S", 18.0)
	return ctx
}

func newPhase(station, reported string, delta float64, arrival time.Time) *model.Phase {
	p := &model.Phase{
		StationID:     station,
		ReportedPhase: reported,
		Delta:         delta,
		ArrivalTime:   arrival,
		TimeDefining:  true,
	}
	return p
}

func TestRun_IdentifiesFirstPickAsP(t *testing.T) {
	ctx := testContext(t)
	tables := DefaultTables()
	weights := NewWeightTable()
	weights.AddTimeSample("P", 0, 1.0)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	phases := []*model.Phase{
		newPhase("AAA", "P", 20, base.Add(200*time.Second)),
	}
	readings := []model.Reading{{StationID: "AAA", Start: 0, Count: 1}}
	hypo := Hypocentre{OriginTime: base} // P predicted TT at delta=20 is exactly 200s

	if err := Run(ctx, tables, weights, hypo, phases, readings, 4.0, true); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if phases[0].Phase != "P" {
		t.Errorf("Phase = %q, want P", phases[0].Phase)
	}
	if !phases[0].FirstP {
		t.Errorf("expected FirstP flag set")
	}
}

func TestRun_FixedLabelNeverRenamed(t *testing.T) {
	ctx := testContext(t)
	tables := DefaultTables()
	weights := NewWeightTable()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	phases := []*model.Phase{
		{StationID: "AAA", ReportedPhase: "Pn", Phase: "Pn", FixedLabel: true, Delta: 20, ArrivalTime: base, TimeDefining: true},
	}
	readings := []model.Reading{{StationID: "AAA", Start: 0, Count: 1}}

	if err := Run(ctx, tables, weights, Hypocentre{}, phases, readings, 4.0, true); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if phases[0].Phase != "Pn" {
		t.Errorf("fixed label was renamed to %q", phases[0].Phase)
	}
}

func TestResolveDuplicates_MergesAndInflatesSigma(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p1 := &model.Phase{StationID: "AAA", Phase: "P", ArrivalTime: base, SigmaTime: 1.0, TimeResidual: 0.5}
	p2 := &model.Phase{StationID: "AAA", Phase: "Pn", ArrivalTime: base.Add(50 * time.Millisecond), SigmaTime: 1.0, TimeResidual: 0.1}
	phases := []*model.Phase{p1, p2}

	resolveDuplicates(phases, nil, false)

	if !p1.Duplicate || !p2.Duplicate {
		t.Fatalf("expected both phases marked duplicate")
	}
	if p1.Phase != p2.Phase {
		t.Errorf("expected merged labels to match, got %q vs %q", p1.Phase, p2.Phase)
	}
	if p1.Phase != "Pn" {
		t.Errorf("expected smallest-residual label Pn to win, got %q", p1.Phase)
	}
	if p1.SigmaTime <= 1.0 {
		t.Errorf("expected sigma inflation when correlated errors disabled, got %v", p1.SigmaTime)
	}
	if !p1.ArrivalTime.Equal(p2.ArrivalTime) {
		t.Errorf("expected merged arrival times to match")
	}
}

func TestResolveDuplicates_NoMergeBeyondTolerance(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p1 := &model.Phase{StationID: "AAA", Phase: "P", ArrivalTime: base}
	p2 := &model.Phase{StationID: "AAA", Phase: "Pn", ArrivalTime: base.Add(time.Second)}
	phases := []*model.Phase{p1, p2}

	resolveDuplicates(phases, nil, true)

	if p1.Duplicate || p2.Duplicate {
		t.Errorf("phases 1 second apart must not be merged")
	}
}
