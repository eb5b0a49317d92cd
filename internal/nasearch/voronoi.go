package nasearch

import "math/rand"

// axisBounds computes the 1-D intersection of the unit interval [0,1] with
// the implicit Voronoi cell of `current` along `axis`, against every other
// sampled point in `others` (all in normalized [0,1]^nd coordinates). This
// is the "symbolic bisection" of §4.7: for each neighbour vk, the
// perpendicular-bisector crossing point along axis is
//
//	xb = 0.5*(x[axis]+vk[axis]) + d2/(2*(vk[axis]-x[axis]))
//
// where d2 is the squared distance between x and vk along every other axis.
// The cell boundary along axis is the innermost crossing point on each
// side of x[axis].
func axisBounds(current []float64, others [][]float64, axis int) (lo, hi float64) {
	lo, hi = 0, 1
	xd := current[axis]
	for _, vk := range others {
		if vk[axis] == xd {
			continue
		}
		var d2 float64
		for j := range current {
			if j == axis {
				continue
			}
			diff := current[j] - vk[j]
			d2 += diff * diff
		}
		xb := 0.5*(xd+vk[axis]) + d2/(2*(vk[axis]-xd))
		if xb > xd {
			if xb < hi {
				hi = xb
			}
		} else {
			if xb > lo {
				lo = xb
			}
		}
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo, hi
}

// gibbsWalk draws one new point inside seed's Voronoi cell among all
// sampled points (`pool`, normalized coordinates), by visiting each axis in
// a random order and resampling uniformly within that axis's current cell
// bound, updating the running point before moving to the next axis — the
// "single-axis conditional walk" of §4.7.
func gibbsWalk(seed []float64, pool [][]float64, rng *rand.Rand) []float64 {
	nd := len(seed)
	current := append([]float64(nil), seed...)
	order := rng.Perm(nd)
	for _, axis := range order {
		lo, hi := axisBounds(current, pool, axis)
		if hi <= lo {
			continue
		}
		current[axis] = lo + rng.Float64()*(hi-lo)
	}
	return current
}
