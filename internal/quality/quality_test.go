package quality

import "testing"

func TestCompute_UniformNetworkHasZeroDU(t *testing.T) {
	var obs []Observation
	for i := 0; i < 8; i++ {
		obs = append(obs, Observation{
			StationID: string(rune('A' + i)),
			ESAZDeg:   float64(i) * 45,
			DeltaDeg:  40,
			DistKm:    4000,
		})
	}
	metrics, _ := Compute(obs)
	full := metrics[string(BandFull)]
	if full.DU > 1e-9 {
		t.Errorf("DU = %v, want ~0 for a perfectly uniform network", full.DU)
	}
	if full.PrimaryGapDeg > 45+1e-6 {
		t.Errorf("gap = %v, want <= 45 for 8 evenly spaced stations", full.PrimaryGapDeg)
	}
}

func TestCompute_DegenerateNetworkHasMaxDU(t *testing.T) {
	obs := []Observation{
		{StationID: "A", ESAZDeg: 10, DeltaDeg: 40, DistKm: 4000},
		{StationID: "B", ESAZDeg: 10, DeltaDeg: 40, DistKm: 4000},
	}
	metrics, _ := Compute(obs)
	full := metrics[string(BandFull)]
	if full.DU < 0 || full.DU > 1 {
		t.Errorf("DU = %v, want within [0,1]", full.DU)
	}
}

func TestCompute_GT5CandidateRequiresCloseStation(t *testing.T) {
	var obs []Observation
	for i := 0; i < 10; i++ {
		obs = append(obs, Observation{
			StationID: string(rune('A' + i)),
			ESAZDeg:   float64(i) * 36,
			DeltaDeg:  40,
			DistKm:    4000,
		})
	}
	_, gt5 := Compute(obs)
	if gt5 {
		t.Fatal("expected no GT5 candidate without a station within 10km")
	}

	obs = append(obs, Observation{StationID: "CLOSE", ESAZDeg: 5, DeltaDeg: 0.05, DistKm: 5})
	_, gt5 = Compute(obs)
	if !gt5 {
		t.Fatal("expected GT5 candidate once a close, near-uniform station is added")
	}
}

func TestCompute_GapLessEqualSecondaryGap(t *testing.T) {
	obs := []Observation{
		{StationID: "A", ESAZDeg: 0, DeltaDeg: 40, DistKm: 4000},
		{StationID: "B", ESAZDeg: 90, DeltaDeg: 40, DistKm: 4000},
		{StationID: "C", ESAZDeg: 200, DeltaDeg: 40, DistKm: 4000},
	}
	metrics, _ := Compute(obs)
	full := metrics[string(BandFull)]
	if full.PrimaryGapDeg > full.SecondaryGapDeg+1e-9 {
		t.Errorf("gap (%v) should be <= secondary gap (%v)", full.PrimaryGapDeg, full.SecondaryGapDeg)
	}
}
