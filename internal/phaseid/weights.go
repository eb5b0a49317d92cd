package phaseid

import "sort"

// weightSample is one (distance, sigma) row of a phase's prior
// measurement-error curve.
type weightSample struct {
	Delta float64
	Sigma float64
}

// WeightTable is the PhaseWeight table of §4.3 step 5: prior σ_time /
// σ_azimuth / σ_slowness, indexed by canonical phase name and
// interpolated over distance.
type WeightTable struct {
	Time     map[string][]weightSample
	Azimuth  map[string][]weightSample
	Slowness map[string][]weightSample
}

// NewWeightTable builds an empty table; the aux-data loader populates it
// from the bundled phase-weight file.
func NewWeightTable() *WeightTable {
	return &WeightTable{
		Time:     map[string][]weightSample{},
		Azimuth:  map[string][]weightSample{},
		Slowness: map[string][]weightSample{},
	}
}

// AddTimeSample / AddAzimuthSample / AddSlownessSample insert a
// (delta, sigma) sample, keeping each phase's curve sorted by distance.
func (w *WeightTable) AddTimeSample(phase string, delta, sigma float64) {
	addSample(w.Time, phase, delta, sigma)
}
func (w *WeightTable) AddAzimuthSample(phase string, delta, sigma float64) {
	addSample(w.Azimuth, phase, delta, sigma)
}
func (w *WeightTable) AddSlownessSample(phase string, delta, sigma float64) {
	addSample(w.Slowness, phase, delta, sigma)
}

func addSample(m map[string][]weightSample, phase string, delta, sigma float64) {
	samples := append(m[phase], weightSample{Delta: delta, Sigma: sigma})
	sort.Slice(samples, func(i, j int) bool { return samples[i].Delta < samples[j].Delta })
	m[phase] = samples
}

// sigmaAt returns the linearly interpolated (clamped at the ends) sigma
// for phase at distance delta, or ok=false when the phase has no curve.
func sigmaAt(m map[string][]weightSample, phase string, delta float64) (float64, bool) {
	samples := m[phase]
	if len(samples) == 0 {
		return 0, false
	}
	if delta <= samples[0].Delta {
		return samples[0].Sigma, true
	}
	last := samples[len(samples)-1]
	if delta >= last.Delta {
		return last.Sigma, true
	}
	for i := 1; i < len(samples); i++ {
		if delta <= samples[i].Delta {
			lo, hi := samples[i-1], samples[i]
			frac := (delta - lo.Delta) / (hi.Delta - lo.Delta)
			return lo.Sigma + frac*(hi.Sigma-lo.Sigma), true
		}
	}
	return last.Sigma, true
}

// SigmaTime / SigmaAzimuth / SigmaSlowness look up the prior σ for a
// canonical phase at a given distance.
func (w *WeightTable) SigmaTime(phase string, delta float64) (float64, bool) {
	return sigmaAt(w.Time, phase, delta)
}
func (w *WeightTable) SigmaAzimuth(phase string, delta float64) (float64, bool) {
	return sigmaAt(w.Azimuth, phase, delta)
}
func (w *WeightTable) SigmaSlowness(phase string, delta float64) (float64, bool) {
	return sigmaAt(w.Slowness, phase, delta)
}
