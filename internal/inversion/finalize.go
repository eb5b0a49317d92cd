package inversion

import (
	"math"
	"time"

	"github.com/quakelocate/iloc-go/internal/covariance"
	"github.com/quakelocate/iloc-go/internal/geo"
	"github.com/quakelocate/iloc-go/internal/model"
	"gonum.org/v1/gonum/mat"
)

// zScoreFor approximates the two-sided normal quantile for common
// confidence levels; iLoc's own table is small and fixed, so a short
// lookup (falling back to the 90% value) matches its behaviour closely
// enough for the confidence scaling step (§4.6 step 7).
func zScoreFor(confidence float64) float64 {
	switch {
	case confidence >= 0.99:
		return 2.576
	case confidence >= 0.95:
		return 1.960
	case confidence >= 0.90:
		return 1.645
	default:
		return 1.645
	}
}

// finalize builds the converged Solution: the 4x4 model covariance
// (padded with zero rows/columns for fixed parameters), axis
// uncertainties scaled to the configured confidence level, the horizontal
// error ellipse from the (lat,lon) block, and the RMS/sdobs statistics.
func (k *Kernel) finalize(phases []*model.Phase, obs []covariance.Observation, cov *mat.SymDense, g *mat.Dense, v *mat.Dense, sigma []float64, rank int, lat, lon, depth, otOffset float64, ndef, m int, event *model.Event) model.Solution {
	params := NewParamSet(event.FixedOriginTime, event.FixedEpicenter, event.FixedDepth)

	modelCov := mat.NewDense(m, m, nil)
	for i := 0; i < rank && i < len(sigma); i++ {
		s := sigma[i]
		if s <= 0 {
			continue
		}
		invSq := 1 / (s * s)
		for row := 0; row < m; row++ {
			for col := 0; col < m; col++ {
				modelCov.Set(row, col, modelCov.At(row, col)+invSq*v.At(row, i)*v.At(col, i))
			}
		}
	}

	z := zScoreFor(k.Cfg.ConfidenceLevel)

	var sol model.Solution
	sol.Lat, sol.Lon, sol.Depth = lat, lon, depth
	sol.OriginTime = time.Unix(0, 0).UTC().Add(time.Duration(otOffset * float64(time.Second)))
	sol.Ndef, sol.M, sol.Prank = ndef, m, rank
	sol.ConfidenceLevel = k.Cfg.ConfidenceLevel
	sol.DepthType = model.DepthFree

	var full [4][4]float64
	colKind := make([]ParamKind, m)
	copy(colKind, params.Columns)
	for r, rk := range colKind {
		for c, ck := range colKind {
			full[rk][ck] = modelCov.At(r, c)
		}
	}
	sol.Covariance = full

	sol.AxisErrorSec = z * math.Sqrt(math.Max(0, full[ParamOT][ParamOT]))
	sol.AxisErrorKmLat = z * math.Sqrt(math.Max(0, full[ParamLat][ParamLat])) * geo.DeltaToKm(1)
	sol.AxisErrorKmLon = z * math.Sqrt(math.Max(0, full[ParamLon][ParamLon])) * geo.DeltaToKm(1) * math.Cos(lat*math.Pi/180)
	sol.AxisErrorKmDepth = z * math.Sqrt(math.Max(0, full[ParamDepth][ParamDepth]))

	sol.ErrorEllipse = horizontalEllipse(full[ParamLat][ParamLat], full[ParamLon][ParamLon], full[ParamLat][ParamLon], z)

	sol.RMSWeighted, sol.RMSUnweighted = computeRMS(phases, obs)
	if ndef > m {
		sol.Sdobs = sol.RMSUnweighted * math.Sqrt(float64(ndef)/float64(ndef-m))
	}

	return sol
}

// horizontalEllipse derives the semi-major/minor axes and strike from the
// (lat,lon) 2x2 covariance block's eigendecomposition (§4.6 step 7).
func horizontalEllipse(varLat, varLon, covLatLon, z float64) model.ErrorEllipse {
	a, d, b := varLat, varLon, covLatLon
	mean := (a + d) / 2
	diff := (a - d) / 2
	radius := math.Sqrt(diff*diff + b*b)
	lambda1 := mean + radius
	lambda2 := mean - radius
	if lambda2 < 0 {
		lambda2 = 0
	}
	angle := 0.5 * math.Atan2(2*b, a-d)

	kmPerDeg := geo.DeltaToKm(1)
	return model.ErrorEllipse{
		SemiMajorKm: z * math.Sqrt(math.Max(0, lambda1)) * kmPerDeg,
		SemiMinorKm: z * math.Sqrt(math.Max(0, lambda2)) * kmPerDeg,
		StrikeDeg:   math.Mod(angle*180/math.Pi+360, 360),
	}
}

func computeRMS(phases []*model.Phase, obs []covariance.Observation) (weighted, unweighted float64) {
	var sumW, sumU float64
	n := 0
	for _, o := range obs {
		if o.Class != model.ClassTime {
			continue
		}
		p := phases[o.PhaseIndex]
		sumU += p.TimeResidual * p.TimeResidual
		if p.SigmaTime > 0 {
			w := p.TimeResidual / p.SigmaTime
			sumW += w * w
		}
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return math.Sqrt(sumW / float64(n)), math.Sqrt(sumU / float64(n))
}
