package locator

import (
	"math"
	"time"

	"github.com/quakelocate/iloc-go/internal/config"
	"github.com/quakelocate/iloc-go/internal/covariance"
	"github.com/quakelocate/iloc-go/internal/inversion"
	"github.com/quakelocate/iloc-go/internal/model"
)

// attempt is one rung of the §4.9 fix-depth fallback ladder: which
// parameters are fixed for this Kernel.Run call, at what depth, and the
// DepthType the Solution should be tagged with if this rung succeeds.
type attempt struct {
	label        model.DepthType
	fixDepth     bool
	fixEpicentre bool
	depth        float64
}

// depthErrorBudget returns the maximum acceptable depth axis error for a
// converged free-depth solution (§4.9's depth-resolution test): shallow
// hypocentres are held to a tighter bound than deep ones, since a deep
// earthquake's depth is typically far less tightly resolved by P/pP
// moveout alone.
func depthErrorBudget(cfg *config.Config, depth float64) float64 {
	if depth <= 100 {
		return cfg.MaxShallowDepthError
	}
	return cfg.MaxDeepDepthError
}

// runLadder tries the §4.9 fallback options in order, returning the first
// rung whose Kernel.Run converges with an acceptable depth error (or, for
// the fixed-depth/fixed-epicentre rungs, simply converges). If every rung
// fails outright it returns the last rung's error.
func runLadder(kernel *inversion.Kernel, ru *residualUpdater, event *model.Event, phases []*model.Phase, stations map[string]model.Station, vg *covariance.Variogram, seed Seed, hypos []model.Hypocentre, cfg *config.Config) (inversion.Result, model.DepthType, error) {
	if event.FixedHypocenter {
		label := model.DepthHypo
		if event.IsAnthropogenic() {
			label = model.DepthSurface
		}
		res := evaluateFixedHypocentre(ru, phases, seed)
		res.Solution.DepthType = label
		return res, label, res.Err
	}

	var rungs []attempt
	first := attempt{label: model.DepthFree, fixDepth: event.FixedDepth, depth: seed.Depth}
	if event.IsAnthropogenic() {
		first.label = model.DepthSurface
	}
	rungs = append(rungs, first)
	if !event.FixedDepth {
		rungs = append(rungs,
			attempt{label: model.DepthGrid, fixDepth: true, depth: cfg.DefaultDepth},
		)
		if seed.HasDepth {
			rungs = append(rungs, attempt{label: model.DepthHypo, fixDepth: true, depth: seed.Depth})
		}
		if med, ok := medianDepth(hypos); ok {
			rungs = append(rungs, attempt{label: model.DepthMedian, fixDepth: true, depth: med})
		}
	}
	if !event.FixedEpicenter {
		// Every depth-resolution rung above also solves for the epicentre;
		// if none of them converged, the next two rungs hold the epicentre
		// at the seed: the first solves for origin time and depth, the
		// second for origin time alone with depth pinned at the default
		// depth — the last resort before reporting the seed hypocentre
		// outright.
		rungs = append(rungs,
			attempt{label: model.DepthFree, fixEpicentre: true, depth: seed.Depth},
			attempt{label: model.DepthGrid, fixDepth: true, fixEpicentre: true, depth: cfg.DefaultDepth},
		)
	}

	for _, rg := range rungs {
		trial := *event
		trial.FixedDepth = rg.fixDepth
		trial.FixedEpicenter = event.FixedEpicenter || rg.fixEpicentre

		depth0 := seed.Depth
		if rg.fixDepth {
			depth0 = rg.depth
		}

		res := kernel.Run(&trial, phases, stations, vg, seed.Lat, seed.Lon, depth0, ru.eval)

		// Any kernel failure at this rung — divergence, phase loss, an
		// ill-conditioned system, or exhausting MaxIterations — falls
		// through to the next rung rather than aborting the whole event;
		// the ladder's last rung (a direct residual evaluation at the seed
		// hypocentre, after this loop) supplies the error runLadder
		// returns when that evaluation fails too.
		if res.Err != nil {
			continue
		}

		if rg.label == model.DepthFree && res.State != inversion.DepthClamped {
			if res.Solution.AxisErrorKmDepth > depthErrorBudget(cfg, res.Solution.Depth) {
				continue // depth poorly resolved: fall through to the grid/hypo/median rungs
			}
		}
		// The kernel reports origin time as an offset from the Unix epoch;
		// rebase it onto the reference origin time the offset is taken from.
		res.Solution.OriginTime = ru.tref.Add(res.Solution.OriginTime.Sub(time.Unix(0, 0)))
		res.Solution.DepthType = rg.label
		return res, rg.label, nil
	}

	label := model.DepthHypo
	if event.IsAnthropogenic() {
		label = model.DepthSurface
	}
	res := evaluateFixedHypocentre(ru, phases, seed)
	res.Solution.DepthType = label
	return res, label, res.Err
}

// evaluateFixedHypocentre handles the degenerate §4.9 rung where the event
// arrives with a fully fixed hypocentre: there is no free parameter to
// solve for, so the kernel is bypassed and the Solution is built directly
// from one residual evaluation at the fixed point.
func evaluateFixedHypocentre(ru *residualUpdater, phases []*model.Phase, seed Seed) inversion.Result {
	otOffset := 0.0
	if err := ru.eval(seed.Lat, seed.Lon, seed.Depth, otOffset); err != nil {
		return inversion.Result{State: inversion.IllConditioned, Err: err}
	}

	ndef := 0
	var sumSq, sumW float64
	for _, p := range phases {
		if !p.TimeDefining {
			continue
		}
		ndef++
		sumSq += p.TimeResidual * p.TimeResidual
		if p.SigmaTime > 0 {
			w := p.TimeResidual / p.SigmaTime
			sumW += w * w
		}
	}

	sol := model.Solution{
		OriginTime: seed.OriginTime, Lat: seed.Lat, Lon: seed.Lon, Depth: seed.Depth,
		Ndef: ndef, M: 0, DepthFixed: true, DepthType: model.DepthSurface,
		Converged: ndef > 0,
	}
	if ndef > 0 {
		sol.RMSUnweighted = math.Sqrt(sumSq / float64(ndef))
		sol.RMSWeighted = math.Sqrt(sumW / float64(ndef))
	}
	state := inversion.Converged
	if ndef == 0 {
		state = inversion.PhaseLoss
	}
	return inversion.Result{State: state, Solution: sol}
}
