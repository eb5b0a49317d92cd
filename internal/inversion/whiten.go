package inversion

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Whiten implements §4.6 step 3. When doCorrelatedErrors is true it
// inverse-square-roots the joint covariance via its symmetric
// eigendecomposition, then projects out the subspace of eigenvectors
// whose cumulative energy reaches (1-pctVarianceRetained) with the block
// projector W = I - Vp*Vp^T, and applies W*C^-1/2 to both G and r.
// Otherwise it applies simple diagonal whitening by 1/sigma, where sigma
// is read from each row's covariance diagonal entry.
func Whiten(cov *mat.SymDense, g *mat.Dense, r *mat.VecDense, doCorrelatedErrors bool, pctVarianceRetained float64) (*mat.Dense, *mat.VecDense, error) {
	n, _ := cov.Dims()
	if n == 0 {
		return g, r, nil
	}

	if !doCorrelatedErrors {
		gw := mat.DenseCopyOf(g)
		rw := mat.VecDenseCopyOf(r)
		for i := 0; i < n; i++ {
			sigma := math.Sqrt(cov.At(i, i))
			if sigma <= 0 {
				continue
			}
			scaleRow(gw, i, 1/sigma)
			rw.SetVec(i, rw.AtVec(i)/sigma)
		}
		return gw, rw, nil
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(cov, true); !ok {
		return nil, nil, fmt.Errorf("inversion: covariance eigendecomposition failed")
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	type eigPair struct {
		value float64
		col   int
	}
	pairs := make([]eigPair, n)
	total := 0.0
	for i, v := range values {
		if v < 0 {
			v = 0
		}
		pairs[i] = eigPair{value: v, col: i}
		total += v
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].value > pairs[j].value })

	cinvhalf := mat.NewDense(n, n, nil)
	for _, pr := range pairs {
		if pr.value <= 0 {
			continue
		}
		invSqrt := 1 / math.Sqrt(pr.value)
		qi := vectors.ColView(pr.col)
		outerAdd(cinvhalf, qi, invSqrt)
	}

	retainTarget := (1 - pctVarianceRetained) * total
	if retainTarget < 0 {
		retainTarget = 0
	}
	var vp *mat.Dense
	cumulative := 0.0
	var keptCols []int
	for _, pr := range pairs {
		if cumulative >= retainTarget {
			break
		}
		keptCols = append(keptCols, pr.col)
		cumulative += pr.value
	}
	if len(keptCols) > 0 {
		vp = mat.NewDense(n, len(keptCols), nil)
		for j, col := range keptCols {
			vp.SetCol(j, mat.Col(nil, col, &vectors))
		}
	}

	projector := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		projector.Set(i, i, 1)
	}
	if vp != nil {
		var vpvt mat.Dense
		vpvt.Mul(vp, vp.T())
		projector.Sub(projector, &vpvt)
	}

	var wc mat.Dense
	wc.Mul(projector, cinvhalf)

	var gw mat.Dense
	gw.Mul(&wc, g)
	var rw mat.VecDense
	rw.MulVec(&wc, r)

	return &gw, &rw, nil
}

func scaleRow(m *mat.Dense, row int, factor float64) {
	_, cols := m.Dims()
	for j := 0; j < cols; j++ {
		m.Set(row, j, m.At(row, j)*factor)
	}
}

// outerAdd adds invSqrt * q * q^T into dst, where q is a column vector.
func outerAdd(dst *mat.Dense, q mat.Vector, scale float64) {
	n, _ := dst.Dims()
	for i := 0; i < n; i++ {
		qi := q.AtVec(i)
		if qi == 0 {
			continue
		}
		for j := 0; j < n; j++ {
			qj := q.AtVec(j)
			if qj == 0 {
				continue
			}
			dst.Set(i, j, dst.At(i, j)+scale*qi*qj)
		}
	}
}
