package covariance

import (
	"github.com/quakelocate/iloc-go/internal/geo"
	"github.com/quakelocate/iloc-go/internal/model"
	"gonum.org/v1/gonum/mat"
)

// Observation is one row of the joint residual vector: a single defining
// observation (time, azimuth, or slowness) of one phase.
type Observation struct {
	PhaseIndex     int
	Class          model.ObservationClass
	CanonicalPhase string
	StationID      string
	Sigma          float64
	RSTTTotalErr   float64
}

// Build assembles the full joint data covariance (§4.5): block-diagonal
// over {time, azimuth, slowness}, with off-diagonal correlation between
// two observations of the same class and canonical phase name at stations
// within the variogram's MaxSep. It mutates each defining phase's CovRow
// to record its row index in the returned matrix.
func Build(phases []*model.Phase, stations map[string]model.Station, vg *Variogram) (*mat.SymDense, []Observation, error) {
	var obs []Observation

	classOrder := []struct {
		class    model.ObservationClass
		defining func(*model.Phase) bool
		sigma    func(*model.Phase) float64
	}{
		{model.ClassTime, func(p *model.Phase) bool { return p.TimeDefining }, func(p *model.Phase) float64 { return p.SigmaTime }},
		{model.ClassAzimuth, func(p *model.Phase) bool { return p.AzimuthDefining }, func(p *model.Phase) float64 { return p.SigmaAzimuth }},
		{model.ClassSlowness, func(p *model.Phase) bool { return p.SlownessDefining }, func(p *model.Phase) float64 { return p.SigmaSlowness }},
	}

	for _, cls := range classOrder {
		for i := range phases {
			p := phases[i]
			if !cls.defining(p) {
				p.CovRow[cls.class] = -1
				continue
			}
			p.CovRow[cls.class] = len(obs)
			obs = append(obs, Observation{
				PhaseIndex:     i,
				Class:          cls.class,
				CanonicalPhase: p.Phase,
				StationID:      p.StationID,
				Sigma:          cls.sigma(p),
				RSTTTotalErr:   p.RSTTTotalErr,
			})
		}
	}

	n := len(obs)
	cov := mat.NewSymDense(n, nil)
	if n == 0 {
		return cov, obs, nil
	}

	for i := 0; i < n; i++ {
		if obs[i].RSTTTotalErr > 0 {
			// RSTT supplies its own total error estimate for this
			// observation; it replaces the sill+sigma^2 prior entirely
			// rather than adding to it (§4.5).
			cov.SetSym(i, i, obs[i].RSTTTotalErr*obs[i].RSTTTotalErr)
			continue
		}
		cov.SetSym(i, i, vg.Sill+obs[i].Sigma*obs[i].Sigma)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if obs[i].Class != obs[j].Class || obs[i].CanonicalPhase != obs[j].CanonicalPhase {
				continue
			}
			if obs[i].StationID == obs[j].StationID {
				continue // same station: treated via the diagonal only
			}
			si, ok1 := stations[obs[i].StationID]
			sj, ok2 := stations[obs[j].StationID]
			if !ok1 || !ok2 {
				continue
			}
			deltaDeg, _, _ := geo.Distance(geo.Point{Lat: si.Lat, Lon: si.Lon}, geo.Point{Lat: sj.Lat, Lon: sj.Lon})
			d := geo.DeltaToKm(deltaDeg)
			if d > vg.MaxSep {
				continue
			}
			cov.SetSym(i, j, vg.Sill-vg.Gamma(d))
		}
	}

	return cov, obs, nil
}

// RowCount returns how many defining observations are recorded for a
// given class in obs, a small helper used by the inversion kernel to size
// its Jacobian.
func RowCount(obs []Observation, class model.ObservationClass) int {
	n := 0
	for _, o := range obs {
		if o.Class == class {
			n++
		}
	}
	return n
}
