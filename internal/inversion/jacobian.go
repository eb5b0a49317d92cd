package inversion

import (
	"github.com/quakelocate/iloc-go/internal/covariance"
	"github.com/quakelocate/iloc-go/internal/model"
	"gonum.org/v1/gonum/mat"
)

// Build assembles the Jacobian G (rows = defining observations, columns =
// free parameters) and residual vector r (§4.6 step 2), in the row order
// obs was returned by covariance.Build.
func Build(phases []*model.Phase, obs []covariance.Observation, lat float64, params ParamSet) (*mat.Dense, *mat.VecDense) {
	n := len(obs)
	m := params.M()
	g := mat.NewDense(n, m, nil)
	r := mat.NewVecDense(n, nil)

	for i, o := range obs {
		p := phases[o.PhaseIndex]
		in := rowInputs{
			esazDeg: p.ESAZ, latDeg: lat, deltaDeg: p.Delta,
			dtdDelta: p.DtDDelta, dtdh: p.DtDh, d2tdDelta2: p.D2tDDelta2,
		}

		var full [4]float64
		var residual float64
		switch o.Class {
		case model.ClassTime:
			full = timePartials(in)
			residual = p.TimeResidual
		case model.ClassAzimuth:
			full = azimuthPartials(in)
			residual = p.AzimuthResidual
		case model.ClassSlowness:
			full = slownessPartials(in)
			residual = p.SlownessResidual
		}

		for col, kind := range params.Columns {
			g.Set(i, col, full[kind])
		}
		r.SetVec(i, residual)
	}

	return g, r
}
