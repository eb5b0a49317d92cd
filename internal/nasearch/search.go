package nasearch

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"github.com/quakelocate/iloc-go/internal/locerr"
)

// Config holds the §4.7 Neighbourhood Algorithm tuning parameters
// (NAinitialSample, NAnextSample, NAcells, NAiterMax, NAseed). The Lp
// norm (NAlpNorm) is carried by Space, not by Config.
type Config struct {
	InitialSample int
	NextSample    int
	Cells         int
	IterMax       int
	Seed          int64
}

// Evaluator runs the full forward problem (phase identification plus
// residual/misfit calculation) at a candidate point (ot offset sec, lat,
// lon, depth) and returns its Lp misfit. A non-nil error marks the point
// as infeasible (e.g. travel-time prediction failed everywhere) and it is
// dropped from consideration.
type Evaluator func(point [4]float64) (misfit float64, err error)

// Result is the NA search's output: the lowest-misfit point found and how
// many forward evaluations it cost.
type Result struct {
	Best       [4]float64
	BestMisfit float64
	Evaluated  int
}

type sample struct {
	norm   []float64
	abs    [4]float64
	misfit float64
}

// Search runs the §4.7 Neighbourhood Algorithm: an initial Sobol
// quasi-random sample of the search box, followed by rounds that resample
// the current best Cells points' implicit Voronoi cells via single-axis
// Gibbs walks, for up to IterMax rounds. It returns the lowest-misfit
// point found, even when ctx is cancelled mid-search — cancellation is
// checked between rounds and is graceful per §4.7's closing note.
func Search(ctx context.Context, space *Space, cfg Config, eval Evaluator) (Result, error) {
	if err := space.Validate(); err != nil {
		return Result{}, err
	}
	if cfg.InitialSample <= 0 || cfg.NextSample <= 0 || cfg.Cells <= 0 {
		return Result{}, locerr.ErrBadInstruction
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	nd := space.Nd()
	sobol := newSobolSequence(nd)

	var samples []sample
	for i := 0; i < cfg.InitialSample; i++ {
		u := sobol.Next()
		abs := space.denormalize(u)
		misfit, err := eval(abs)
		if err != nil {
			continue
		}
		samples = append(samples, sample{norm: u, abs: abs, misfit: misfit})
	}
	if len(samples) == 0 {
		return Result{}, locerr.ErrPredictFailed
	}

	for round := 0; round < cfg.IterMax; round++ {
		select {
		case <-ctx.Done():
			return bestOf(samples), nil
		default:
		}

		sort.Slice(samples, func(i, j int) bool { return samples[i].misfit < samples[j].misfit })
		cells := cfg.Cells
		if cells > len(samples) {
			cells = len(samples)
		}
		perCell := cfg.NextSample / cells
		if perCell < 1 {
			perCell = 1
		}

		pool := make([][]float64, len(samples))
		for i, s := range samples {
			pool[i] = s.norm
		}

		var fresh []sample
		for c := 0; c < cells; c++ {
			seed := samples[c].norm
			for k := 0; k < perCell; k++ {
				u := gibbsWalk(seed, pool, rng)
				abs := space.denormalize(u)
				misfit, err := eval(abs)
				if err != nil {
					continue
				}
				fresh = append(fresh, sample{norm: u, abs: abs, misfit: misfit})
			}
		}
		samples = append(samples, fresh...)
	}

	return bestOf(samples), nil
}

func bestOf(samples []sample) Result {
	best := samples[0]
	for _, s := range samples[1:] {
		if s.misfit < best.misfit {
			best = s
		}
	}
	return Result{Best: best.abs, BestMisfit: best.misfit, Evaluated: len(samples)}
}

// LpMisfit computes Σ|r_i/σ_i|^p over the given residuals and sigmas, the
// objective function Evaluator implementations should report (§4.7,
// NAlpNorm).
func LpMisfit(residuals, sigmas []float64, p float64) float64 {
	var sum float64
	for i, r := range residuals {
		sigma := sigmas[i]
		if sigma <= 0 {
			sigma = 1.0
		}
		sum += math.Pow(math.Abs(r/sigma), p)
	}
	return sum
}
