package inversion

import (
	"testing"

	"github.com/quakelocate/iloc-go/internal/covariance"
	"github.com/quakelocate/iloc-go/internal/model"
)

func TestBuild_TimeRowHasUnitOriginTimePartial(t *testing.T) {
	phases := []*model.Phase{
		{ESAZ: 0, Delta: 20, DtDDelta: 8.0, DtDh: 0.1, TimeResidual: 0.5},
	}
	obs := []covariance.Observation{
		{PhaseIndex: 0, Class: model.ClassTime},
	}
	params := NewParamSet(false, false, false)

	g, r := Build(phases, obs, 0, params)
	rows, cols := g.Dims()
	if rows != 1 || cols != 4 {
		t.Fatalf("dims = %dx%d, want 1x4", rows, cols)
	}
	if got := g.At(0, 0); got != -1 {
		t.Errorf("d(residual)/dOT = %v, want -1", got)
	}
	if got := r.AtVec(0); got != 0.5 {
		t.Errorf("residual = %v, want 0.5", got)
	}
}

func TestBuild_RespectsFixedColumns(t *testing.T) {
	phases := []*model.Phase{
		{ESAZ: 90, Delta: 30, DtDDelta: 9.0, TimeResidual: -1.2},
	}
	obs := []covariance.Observation{{PhaseIndex: 0, Class: model.ClassTime}}
	params := NewParamSet(true, false, true) // only lat/lon free

	g, _ := Build(phases, obs, 10, params)
	_, cols := g.Dims()
	if cols != 2 {
		t.Fatalf("cols = %d, want 2 (lat, lon only)", cols)
	}
}
