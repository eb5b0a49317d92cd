package traveltime

import (
	"fmt"
	"math"

	"github.com/quakelocate/iloc-go/internal/geo"
)

// Sentinel marks a grid cell with no physically meaningful travel time
// (e.g. a phase that does not exist at that distance/depth combination).
const Sentinel = math.MaxFloat64

// Table is a phase-indexed 2-D travel-time grid over distance (degrees) x
// depth (km), per SPEC_FULL.md §3's "TT table" entity.
type Table struct {
	Phase  string
	Bounce bool // true when this phase is a depth phase with a bounce point

	Distances []float64 // strictly increasing, degrees
	Depths    []float64 // strictly increasing, km

	// Grids are indexed [distanceIdx][depthIdx].
	Time             [][]float64
	DtDDelta         [][]float64 // s/deg
	DtDh             [][]float64 // s/km
	BouncePointDelta [][]float64 // degrees, only meaningful when Bounce
}

// NewTable validates and wraps raw grid data loaded by an aux-data reader.
func NewTable(phase string, bounce bool, distances, depths []float64, tt, dtdd, dtdh, bpdelta [][]float64) (*Table, error) {
	nd, nh := len(distances), len(depths)
	if nd == 0 || nh == 0 {
		return nil, fmt.Errorf("traveltime: table %s has empty axis", phase)
	}
	for _, grid := range [][][]float64{tt, dtdd, dtdh} {
		if grid != nil && len(grid) != nd {
			return nil, fmt.Errorf("traveltime: table %s grid row count %d != distance samples %d", phase, len(grid), nd)
		}
	}
	return &Table{
		Phase: phase, Bounce: bounce,
		Distances: distances, Depths: depths,
		Time: tt, DtDDelta: dtdd, DtDh: dtdh, BouncePointDelta: bpdelta,
	}, nil
}

// valueAt interpolates one of the table's grids at (delta, depth). It fits
// natural cubic splines in the distance direction through the samples
// bracketing depth (up to 6 distance samples around delta: the bracketing
// pair plus up to 2 more on each side, per §4.2 step 1), then linearly blends between the two
// depth-plane spline evaluations. Cells equal to Sentinel are treated as
// missing; if fewer than two valid distance samples remain the call fails.
func (t *Table) valueAt(grid [][]float64, delta, depth float64) (value, dDelta, d2Delta float64, err error) {
	if grid == nil {
		return 0, 0, 0, fmt.Errorf("traveltime: table %s has no such grid", t.Phase)
	}
	if delta < t.Distances[0] || delta > t.Distances[len(t.Distances)-1] {
		return 0, 0, 0, fmt.Errorf("traveltime: %s delta %.3f outside table range [%.3f,%.3f]", t.Phase, delta, t.Distances[0], t.Distances[len(t.Distances)-1])
	}

	jLo, jHi := geo.BracketFloat(t.Depths, depth)

	planeLo, dDeltaLo, d2Lo, errLo := t.evalDistancePlane(grid, jLo, delta)
	if jHi == jLo {
		return planeLo, dDeltaLo, d2Lo, errLo
	}
	planeHi, dDeltaHi, d2Hi, errHi := t.evalDistancePlane(grid, jHi, delta)
	if errLo != nil || errHi != nil {
		if errLo != nil {
			return 0, 0, 0, errLo
		}
		return 0, 0, 0, errHi
	}

	h0, h1 := t.Depths[jLo], t.Depths[jHi]
	var frac float64
	if h1 != h0 {
		frac = (depth - h0) / (h1 - h0)
	}
	value = planeLo*(1-frac) + planeHi*frac
	dDelta = dDeltaLo*(1-frac) + dDeltaHi*frac
	d2Delta = d2Lo*(1-frac) + d2Hi*frac
	return value, dDelta, d2Delta, nil
}

// evalDistancePlane fits a natural cubic spline in distance through the
// valid (non-sentinel) samples around delta's bracket at depth index j,
// using up to 6 surrounding samples, and evaluates it at delta.
func (t *Table) evalDistancePlane(grid [][]float64, j int, delta float64) (value, dDelta, d2Delta float64, err error) {
	i0, i1 := geo.BracketFloat(t.Distances, delta)
	lo := i0 - 2
	hi := i1 + 2
	if lo < 0 {
		lo = 0
	}
	if hi > len(t.Distances)-1 {
		hi = len(t.Distances) - 1
	}

	var xs, ys []float64
	for i := lo; i <= hi; i++ {
		v := grid[i][j]
		if v == Sentinel || math.IsNaN(v) {
			continue
		}
		xs = append(xs, t.Distances[i])
		ys = append(ys, v)
	}
	if len(xs) < 2 {
		return 0, 0, 0, fmt.Errorf("%w: %s has fewer than 2 valid samples near delta=%.3f, depth index %d", ErrTableMiss, t.Phase, delta, j)
	}
	if len(xs) == 2 {
		// Linear fallback: spline requires >=2 but behaves like a line anyway.
		frac := 0.0
		if xs[1] != xs[0] {
			frac = (delta - xs[0]) / (xs[1] - xs[0])
		}
		return ys[0]*(1-frac) + ys[1]*frac, (ys[1] - ys[0]) / (xs[1] - xs[0]), 0, nil
	}

	sp, serr := geo.PrepareSpline(xs, ys)
	if serr != nil {
		return 0, 0, 0, fmt.Errorf("traveltime: %s spline: %w", t.Phase, serr)
	}
	value, dDelta, d2Delta = sp.Eval(delta)
	return value, dDelta, d2Delta, nil
}
