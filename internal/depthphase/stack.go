package depthphase

import (
	"math"
	"sort"

	"github.com/quakelocate/iloc-go/internal/model"
	"github.com/quakelocate/iloc-go/internal/traveltime"
	"gonum.org/v1/gonum/stat"
)

// minContributions is the §4.8 "Decision" threshold: fewer depth-phase
// contributions than this and the stack result is discarded.
const minContributions = 3

// madScale converts a median absolute deviation to a normal-equivalent
// standard deviation (1.4826*MAD), the same scale factor iLoc's own
// depth-phase spread estimate uses.
const madScale = 1.4826

// Result is the §4.8 output: the stacked focal-depth estimate, its
// spread, and the number of depth-phase contributions.
type Result struct {
	DepDp      float64
	DepDpError float64
	Ndp        int
	Valid      bool
}

// depthPhaseSlot names the five depth-phase pointer fields on model.Phase
// and how to reach them.
type depthPhaseSlot struct {
	index func(*model.Phase) int
}

var depthPhaseSlots = []depthPhaseSlot{
	{func(p *model.Phase) int { return p.PPIndex }},
	{func(p *model.Phase) int { return p.PwPIndex }},
	{func(p *model.Phase) int { return p.PSIndex }},
	{func(p *model.Phase) int { return p.SPIndex }},
	{func(p *model.Phase) int { return p.SSIndex }},
}

// Stack implements §4.8: per reading with a defining first-P and at least
// one defining, non-duplicate depth phase whose table covers the
// reading's Δ, builds the moveout-to-depth station trace and accumulates
// it into a network stack over a 1-km depth axis spanning
// [0, maxDepthKm].
func Stack(phases []*model.Phase, readings []model.Reading, ctx *traveltime.Context, maxDepthKm float64) Result {
	nsamp := int(maxDepthKm) + 1
	networkStack := make([]int, nsamp)
	ndp := 0

	for _, rd := range readings {
		reading := phases[rd.Start : rd.Start+rd.Count]
		for localIdx, p := range reading {
			if !p.TimeDefining || !p.FirstP || p.Duplicate {
				continue
			}
			_ = localIdx
			contributed := contributeReading(networkStack, phases, rd, p, ctx, maxDepthKm)
			ndp += contributed
			break // one first-P per reading
		}
	}

	if ndp < minContributions {
		return Result{Ndp: ndp, Valid: false}
	}

	depth, spread := summarize(networkStack)
	return Result{DepDp: depth, DepDpError: spread, Ndp: ndp, Valid: true}
}

// contributeReading stacks every valid depth phase of one reading against
// its first-P pick, returning how many depth phases actually contributed
// (§4.8 steps 1-3).
func contributeReading(networkStack []int, phases []*model.Phase, rd model.Reading, firstP *model.Phase, ctx *traveltime.Context, maxDepthKm float64) int {
	depths := depthSampleAxis(ctx, firstP.Phase, maxDepthKm)

	ttP, okP := movecurve(ctx, firstP.Phase, firstP.Delta, firstP.ESAZ, depths)
	if !okP {
		return 0
	}

	contributed := 0
	for _, slot := range depthPhaseSlots {
		localIdx := slot.index(firstP)
		if localIdx < 0 || localIdx >= rd.Count {
			continue
		}
		dp := phases[rd.Start+localIdx]
		if !dp.TimeDefining || dp.Duplicate {
			continue
		}
		ttDP, okDP := movecurve(ctx, dp.Phase, firstP.Delta, firstP.ESAZ, depths)
		if !okDP {
			continue
		}

		moveoutObserved := dp.ArrivalTime.Sub(firstP.ArrivalTime).Seconds()
		sigma := dp.SigmaTime
		if sigma <= 0 {
			sigma = 1.0
		}

		trace, ok := stationTrace(depths, ttDP, ttP, moveoutObserved, sigma, maxDepthKm)
		if !ok {
			continue
		}
		for i, v := range trace {
			networkStack[i] += v
		}
		contributed++
	}
	return contributed
}

// depthSampleAxis returns the native depth samples of phase's global
// table, or a 5km default grid when no table is loaded for it.
func depthSampleAxis(ctx *traveltime.Context, phase string, maxDepthKm float64) []float64 {
	if t, ok := ctx.Global[phase]; ok && len(t.Depths) > 0 {
		return t.Depths
	}
	var depths []float64
	for h := 0.0; h <= maxDepthKm; h += 5 {
		depths = append(depths, h)
	}
	return depths
}

// movecurve evaluates phase's predicted travel time at delta across every
// sample in depths (§4.8 step 1/2); ok is false if fewer than two samples
// predicted successfully.
func movecurve(ctx *traveltime.Context, phase string, deltaDeg, esazDeg float64, depths []float64) ([]float64, bool) {
	tt := make([]float64, len(depths))
	valid := 0
	for i, h := range depths {
		pr, err := traveltime.Predict(ctx, traveltime.Query{Phase: phase, Delta: deltaDeg, Depth: h, ESAZ: esazDeg, Lat: 0})
		if err != nil {
			tt[i] = math.NaN()
			continue
		}
		tt[i] = pr.TT
		valid++
	}
	if valid < 2 {
		return nil, false
	}
	return tt, true
}

// stationTrace builds the 1-km boxcar trace of §4.8 step 3: it inverts
// the moveout(h) = ttDP(h) - ttP(h) curve to find the depth range bounding
// [moveoutObserved-sigma, moveoutObserved+sigma], then sets every integer
// km bin in that range.
func stationTrace(depths, ttDP, ttP []float64, moveoutObserved, sigma, maxDepthKm float64) ([]int, bool) {
	nsamp := int(maxDepthKm) + 1
	moveout := make([]float64, len(depths))
	var hs, ms []float64
	for i := range depths {
		if math.IsNaN(ttDP[i]) || math.IsNaN(ttP[i]) {
			continue
		}
		moveout[i] = ttDP[i] - ttP[i]
		hs = append(hs, depths[i])
		ms = append(ms, moveout[i])
	}
	if len(hs) < 2 {
		return nil, false
	}

	hLo, ok1 := invertMoveout(hs, ms, moveoutObserved-sigma)
	hHi, ok2 := invertMoveout(hs, ms, moveoutObserved+sigma)
	if !ok1 && !ok2 {
		return nil, false
	}
	if !ok1 {
		hLo = hs[0]
	}
	if !ok2 {
		hHi = hs[len(hs)-1]
	}
	if hHi < hLo {
		hLo, hHi = hHi, hLo
	}

	lo := int(math.Floor(hLo))
	hi := int(math.Ceil(hHi))
	if lo < 0 {
		lo = 0
	}
	if hi > nsamp-1 {
		hi = nsamp - 1
	}
	trace := make([]int, nsamp)
	for d := lo; d <= hi; d++ {
		trace[d] = 1
	}
	return trace, true
}

// invertMoveout finds the depth h where the (monotone, but not assumed
// strictly so) moveout(h) curve crosses target, linearly interpolating
// between the bracketing samples.
func invertMoveout(hs, ms []float64, target float64) (float64, bool) {
	n := len(ms)
	if target <= ms[0] {
		return hs[0], true
	}
	if target >= ms[n-1] {
		return hs[n-1], true
	}
	for i := 1; i < n; i++ {
		lo, hi := ms[i-1], ms[i]
		if (target >= lo && target <= hi) || (target <= lo && target >= hi) {
			if hi == lo {
				return hs[i-1], true
			}
			frac := (target - lo) / (hi - lo)
			return hs[i-1] + frac*(hs[i]-hs[i-1]), true
		}
	}
	return 0, false
}

// summarize finds the argmax of the network stack, refines it to the
// median of the plateau of depths sharing the maximum stack value, and
// computes the spread as 1.4826*MAD over that same support (§4.8's
// closing paragraph).
func summarize(networkStack []int) (depth, spread float64) {
	maxVal := 0
	for _, v := range networkStack {
		if v > maxVal {
			maxVal = v
		}
	}
	var support []float64
	for h, v := range networkStack {
		if v == maxVal {
			support = append(support, float64(h))
		}
	}
	if len(support) == 0 {
		return 0, 0
	}
	sort.Float64s(support)

	median := stat.Quantile(0.5, stat.Empirical, support, nil)

	absdev := make([]float64, len(support))
	for i, h := range support {
		absdev[i] = math.Abs(h - median)
	}
	sort.Float64s(absdev)
	mad := stat.Quantile(0.5, stat.Empirical, absdev, nil)

	return median, madScale * mad
}
