package inversion

import "testing"

func TestNewParamSet_DropsFixedColumns(t *testing.T) {
	ps := NewParamSet(true, false, false)
	if ps.Has(ParamOT) {
		t.Error("fixed origin time should drop the OT column")
	}
	if !ps.Has(ParamLat) || !ps.Has(ParamLon) || !ps.Has(ParamDepth) {
		t.Error("expected lat/lon/depth columns present")
	}
	if ps.M() != 3 {
		t.Errorf("M() = %d, want 3", ps.M())
	}
}

func TestNewParamSet_FixedHypocentreHasNoFreeParams(t *testing.T) {
	ps := NewParamSet(true, true, true)
	if ps.M() != 0 {
		t.Errorf("M() = %d, want 0", ps.M())
	}
}
