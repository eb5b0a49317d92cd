package inversion

import (
	"fmt"
	"math"

	"github.com/quakelocate/iloc-go/internal/config"
	"github.com/quakelocate/iloc-go/internal/covariance"
	"github.com/quakelocate/iloc-go/internal/locerr"
	"github.com/quakelocate/iloc-go/internal/model"
	"gonum.org/v1/gonum/mat"
)

// Kernel runs the §4.6 Gauss-Newton iteration to convergence or failure.
// It holds only the tuning knobs; all per-event mutable state (the
// current Solution, phase residuals) is threaded through Run's arguments,
// matching SPEC_FULL.md §9's LocatorContext/EventState split.
type Kernel struct {
	Cfg *config.Config
}

// NewKernel builds a Kernel from a validated Config.
func NewKernel(cfg *config.Config) *Kernel { return &Kernel{Cfg: cfg} }

// Result is the outcome of one Kernel.Run call.
type Result struct {
	State    State
	Solution model.Solution
	Err      error
}

// residualEval supplies, for the current trial hypocentre, the updated Δ/
// azimuth/predictions/residuals and defining flags for every phase — it
// is the phase identifier + travel-time engine re-evaluation step (§4.6
// step 1), injected so the kernel stays free of those package imports.
type residualEval func(lat, lon, depth float64, originTimeOffsetSec float64) error

// Run iterates the kernel starting from (lat0, lon0, depth0, t0) until
// convergence, divergence, or a hard failure. evalResiduals is called at
// the top of every iteration to refresh phase residuals/predictions at
// the trial hypocentre before the Jacobian is built.
func (k *Kernel) Run(event *model.Event, phases []*model.Phase, stations map[string]model.Station, vg *covariance.Variogram, lat0, lon0, depth0 float64, evalResiduals residualEval) Result {
	cfg := k.Cfg
	params := NewParamSet(event.FixedOriginTime, event.FixedEpicenter, event.FixedDepth)

	lat, lon, depth := lat0, lon0, depth0
	var otOffset float64 // seconds, relative to the caller's reference origin time
	var prevStepNorm float64
	var prevRMS float64
	growingCount := 0
	depthClamped := false

	state := Initializing
	var sol model.Solution
	var lastErr error

	for iter := 0; iter < cfg.MaxIterations; iter++ {
		state = Iterating

		if err := evalResiduals(lat, lon, depth, otOffset); err != nil {
			return Result{State: IllConditioned, Err: fmt.Errorf("inversion: residual evaluation: %w", err)}
		}

		ndef, m := countDefining(phases), params.M()
		minNdef := cfg.MinNdefPhases
		if m > minNdef {
			minNdef = m
		}
		if ndef < minNdef {
			return Result{State: PhaseLoss, Err: fmt.Errorf("%w: ndef=%d required=%d", locerr.ErrPhaseLoss, ndef, minNdef)}
		}

		cov, obs, err := covariance.Build(phases, stations, vg)
		if err != nil {
			return Result{State: IllConditioned, Err: fmt.Errorf("inversion: %w", err)}
		}

		g, r := Build(phases, obs, lat, params)
		gw, rw, err := Whiten(cov, g, r, cfg.DoCorrelatedErrors, cfg.PctVarianceRetained)
		if err != nil {
			return Result{State: IllConditioned, Err: fmt.Errorf("%w: %v", locerr.ErrIllConditioned, err)}
		}

		var svd mat.SVD
		if ok := svd.Factorize(gw, mat.SVDThin); !ok {
			return Result{State: IllConditioned, Err: fmt.Errorf("%w: SVD factorization failed", locerr.ErrSingularJacobian)}
		}
		sigmaValues := svd.Values(nil)
		rank := effectiveRank(sigmaValues, m, len(obs))
		if rank == 0 {
			return Result{State: IllConditioned, Err: fmt.Errorf("%w: zero-rank Jacobian", locerr.ErrSingularJacobian)}
		}

		var u, v mat.Dense
		svd.UTo(&u)
		svd.VTo(&v)

		stepVec, usedDamping := solveDamped(sigmaValues, &u, &v, rw, rank, cfg.AllowDamping, prevStepNorm)
		state = Iterating
		if usedDamping {
			state = Damping
		}

		dLat, dLon, dDepth, dOT := 0.0, 0.0, 0.0, 0.0
		for col, kind := range params.Columns {
			switch kind {
			case ParamOT:
				dOT = stepVec.AtVec(col)
			case ParamLat:
				dLat = stepVec.AtVec(col)
			case ParamLon:
				dLon = stepVec.AtVec(col)
			case ParamDepth:
				dDepth = stepVec.AtVec(col)
			}
		}

		lat += dLat
		lon += dLon
		depth += dDepth
		otOffset += dOT

		lat, lon = applyGeographicBounds(lat, lon)
		if depth < 0 {
			depth, depthClamped = 0, true
		} else if depth > model.MaxHypocenterDepth {
			depth, depthClamped = model.MaxHypocenterDepth, true
		} else {
			depthClamped = false
		}

		stepNorm := math.Sqrt(dLat*dLat + dLon*dLon + dDepth*dDepth + dOT*dOT)
		rms := weightedRMS(rw)

		if iter > 0 && rms > prevRMS {
			growingCount++
			if growingCount >= 3 {
				return Result{State: Diverging, Err: fmt.Errorf("%w: weighted RMS grew for 3 consecutive iterations", locerr.ErrDiverging)}
			}
		} else {
			growingCount = 0
		}
		prevRMS = rms

		converged := iter >= cfg.MinIterations-1 && relativeChangeBelow(stepNorm, lat, lon, depth, otOffset, config.ConvTol)
		prevStepNorm = stepNorm

		if converged {
			sol = k.finalize(phases, obs, cov, g, &v, sigmaValues, rank, lat, lon, depth, otOffset, ndef, m, event)
			sol.DepthFixed = event.FixedDepth || depthClamped
			if depthClamped {
				state = DepthClamped
			} else {
				state = Converged
			}
			return Result{State: state, Solution: sol}
		}
	}

	lastErr = fmt.Errorf("%w: reached MaxIterations=%d without converging", locerr.ErrSlowConvergence, cfg.MaxIterations)
	return Result{State: state, Err: lastErr}
}

func countDefining(phases []*model.Phase) int {
	n := 0
	for _, p := range phases {
		if p.TimeDefining {
			n++
		}
		if p.AzimuthDefining {
			n++
		}
		if p.SlownessDefining {
			n++
		}
	}
	return n
}

// applyGeographicBounds wraps longitude to [-180,180) and reflects
// latitude back into [-90,90] when the update overshoots a pole (§4.6
// step 5).
func applyGeographicBounds(lat, lon float64) (float64, float64) {
	for lat > 90 {
		lat = 180 - lat
		lon += 180
	}
	for lat < -90 {
		lat = -180 - lat
		lon += 180
	}
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	lon -= 180
	return lat, lon
}

func relativeChangeBelow(stepNorm, lat, lon, depth, otOffset, tol float64) bool {
	scale := math.Max(1, math.Abs(lat)+math.Abs(lon)+math.Abs(depth)+math.Abs(otOffset))
	return stepNorm/scale < tol
}

func weightedRMS(rw *mat.VecDense) float64 {
	n, _ := rw.Dims()
	if n == 0 {
		return 0
	}
	sumSq := 0.0
	for i := 0; i < n; i++ {
		v := rw.AtVec(i)
		sumSq += v * v
	}
	return math.Sqrt(sumSq / float64(n))
}

// effectiveRank thresholds singular values at max(m,n)*eps*sigmaMax, per
// §4.6 step 4.
func effectiveRank(sigma []float64, m, n int) int {
	if len(sigma) == 0 {
		return 0
	}
	sigmaMax := sigma[0]
	threshold := float64(maxInt(m, n)) * config.DEPSILON * sigmaMax
	rank := 0
	for _, s := range sigma {
		if s > threshold {
			rank++
		}
	}
	return rank
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
