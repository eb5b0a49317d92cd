package traveltime

// RSTTPrediction is what the RSTT regional-model collaborator returns for
// one phase query.
type RSTTPrediction struct {
	TT       float64
	DtDDelta float64
	DtDh     float64
	PickErr  float64
	ModelErr float64
}

// RSTTProvider is the external collaborator contract for the RSTT regional
// travel-time library (SPEC_FULL.md §9's "RSTT as a singleton C library").
// It is a stateful service invoked serially, with an explicit Clear() call
// after each phase-identification pass per §5.
type RSTTProvider interface {
	Predict(phase string, delta, depth, lat, lon float64) (RSTTPrediction, bool, error)
	Clear()
}

// DisabledRSTT is the no-op RSTTProvider used whenever RSTT is unavailable
// or disabled by configuration; Predict always reports "no prediction" so
// the caller falls back to the global/local tables. This is the only RSTT
// path this port carries — see SPEC_FULL.md §12 on the dormant
// "local TT from RSTT" path in the original source, which is intentionally
// not implemented.
type DisabledRSTT struct{}

func (DisabledRSTT) Predict(string, float64, float64, float64, float64) (RSTTPrediction, bool, error) {
	return RSTTPrediction{}, false, nil
}

func (DisabledRSTT) Clear() {}

// rsttEligible reports whether phase is one of the RSTT regional phases
// (Pn, Sn, Pg, Lg) and whether the relevant config flag enables it.
func rsttEligible(phase string, useRSTTPnSn, useRSTTPgLg bool) bool {
	switch phase {
	case "Pn", "Sn":
		return useRSTTPnSn
	case "Pg", "Lg":
		return useRSTTPgLg
	}
	return false
}
