package inversion

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// maxStepGrowthFactor bounds how much the step length may grow relative
// to the previous iteration's step before damping kicks in (§4.6 step 4).
const maxStepGrowthFactor = 2.0

// solveDamped computes Δx = V·Σ⁺·Uᵀ·r truncated at rank, inflating the
// singular values by a Marquardt-like factor λ (σ_eff = σ/(σ²+λ)) when
// the raw step would exceed maxStepGrowthFactor times the previous step
// and damping is allowed.
func solveDamped(sigma []float64, u, v *mat.Dense, r *mat.VecDense, rank int, allowDamping bool, prevStepNorm float64) (*mat.VecDense, bool) {
	m, _ := v.Dims()
	lambda := 0.0
	usedDamping := false

	var step *mat.VecDense
	for attempt := 0; attempt < 12; attempt++ {
		step = applyPseudoInverse(sigma, u, v, r, rank, lambda)
		norm := vecNorm(step)

		if !allowDamping || prevStepNorm <= 0 || norm <= maxStepGrowthFactor*prevStepNorm {
			break
		}
		usedDamping = true
		if lambda == 0 {
			lambda = sigma[0] * sigma[0] * 1e-3
		} else {
			lambda *= 10
		}
	}
	if step == nil {
		step = mat.NewVecDense(m, nil)
	}
	return step, usedDamping
}

func applyPseudoInverse(sigma []float64, u, v *mat.Dense, r *mat.VecDense, rank int, lambda float64) *mat.VecDense {
	m, _ := v.Dims()
	result := mat.NewVecDense(m, nil)

	n, _ := u.Dims()
	for i := 0; i < rank && i < len(sigma); i++ {
		s := sigma[i]
		if s <= 0 {
			continue
		}
		sEff := s / (s*s + lambda)

		var dot float64
		for row := 0; row < n; row++ {
			dot += u.At(row, i) * r.AtVec(row)
		}
		coef := sEff * dot

		for row := 0; row < m; row++ {
			result.SetVec(row, result.AtVec(row)+coef*v.At(row, i))
		}
	}
	return result
}

func vecNorm(v *mat.VecDense) float64 {
	n, _ := v.Dims()
	sum := 0.0
	for i := 0; i < n; i++ {
		x := v.AtVec(i)
		sum += x * x
	}
	return math.Sqrt(sum)
}
