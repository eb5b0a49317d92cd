package locator

import (
	"context"
	"fmt"

	"github.com/quakelocate/iloc-go/internal/config"
	"github.com/quakelocate/iloc-go/internal/covariance"
	"github.com/quakelocate/iloc-go/internal/depthphase"
	"github.com/quakelocate/iloc-go/internal/inversion"
	"github.com/quakelocate/iloc-go/internal/model"
	"github.com/quakelocate/iloc-go/internal/nasearch"
	"github.com/quakelocate/iloc-go/internal/phaseid"
	"github.com/quakelocate/iloc-go/internal/quality"
	"github.com/quakelocate/iloc-go/internal/traveltime"
	"github.com/quakelocate/iloc-go/internal/xlog"
)

// Output bundles the single-event location result (§3's Solution) with the
// final phase set, which callers need for reporting/persistence alongside
// the Solution itself.
type Output struct {
	Solution model.Solution
	Phases   []*model.Phase
}

// Locate runs the full §4.10 pipeline for one event: seed resolution,
// initial phase identification, an optional NA-search-seeded restart, the
// §4.9 fix-depth ladder around the Gauss-Newton inversion kernel, the
// depth-phase stack, and the final network quality metrics.
func Locate(ctx context.Context, cfg *config.Config, ttctx *traveltime.Context, tables *phaseid.Tables, weights *phaseid.WeightTable, vg *covariance.Variogram, stations map[string]model.Station, event *model.Event, hypos []model.Hypocentre, phases []*model.Phase, readings []model.Reading) (*Output, error) {
	if err := event.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("locator: %w", err)
	}

	seed, err := resolveSeed(event, hypos)
	if err != nil {
		return nil, err
	}
	if event.IsAnthropogenic() {
		event.FixedSurface = true
		event.FixedDepth = true
	}

	updateGeodesics(phases, stations, seed.Lat, seed.Lon)
	phaseid.SortReadingsByDelta(phases, readings)
	initHypo := phaseid.Hypocentre{OriginTime: seed.OriginTime, Lat: seed.Lat, Lon: seed.Lon, Depth: seed.Depth}
	if err := phaseid.Run(ttctx, tables, weights, initHypo, phases, readings, cfg.SigmaThreshold, cfg.DoCorrelatedErrors); err != nil {
		return nil, fmt.Errorf("locator: initial phase identification: %w", err)
	}

	if cfg.DoGridSearch && !event.FixedHypocenter {
		seed = runNASearch(ctx, cfg, ttctx, tables, weights, stations, event, seed, phases, readings)
	}

	ru := newResidualUpdater(ttctx, tables, weights, stations, phases, readings, seed.OriginTime, cfg)
	kernel := inversion.NewKernel(cfg)

	res, _, err := runLadder(kernel, ru, event, phases, stations, vg, seed, hypos, cfg)
	if err != nil {
		return nil, fmt.Errorf("locator: %w", err)
	}

	sol := res.Solution
	sol.Converged = sol.Converged || res.State == inversion.Converged || res.State == inversion.DepthClamped

	if !sol.DepthFixed {
		dp := depthphase.Stack(phases, readings, ttctx, model.MaxHypocenterDepth)
		sol.DepDp, sol.DepDpError, sol.Ndp, sol.DepDpValid = dp.DepDp, dp.DepDpError, dp.Ndp, dp.Valid
	}

	sol.Quality, sol.GT5Candidate = quality.Compute(qualityObservations(phases, stations))

	return &Output{Solution: sol, Phases: phases}, nil
}

// qualityObservations builds one quality.Observation per defining-time
// phase, carrying both the angular distance (§4.11's Δ-based bands) and
// its km equivalent (the local-band and GT5 distance tests).
func qualityObservations(phases []*model.Phase, stations map[string]model.Station) []quality.Observation {
	var obs []quality.Observation
	for _, p := range phases {
		if !p.TimeDefining {
			continue
		}
		_, ok := stations[p.StationID]
		if !ok {
			continue
		}
		obs = append(obs, quality.Observation{
			StationID: p.StationID,
			ESAZDeg:   p.ESAZ,
			DeltaDeg:  p.Delta,
			DistKm:    deltaToKm(p.Delta),
		})
	}
	return obs
}

// runNASearch runs the §4.7 Neighbourhood Algorithm over the event's free
// axes, seeded at the current best estimate, and re-identifies phases at
// the winning point before returning it as the new seed.
func runNASearch(ctx context.Context, cfg *config.Config, ttctx *traveltime.Context, tables *phaseid.Tables, weights *phaseid.WeightTable, stations map[string]model.Station, event *model.Event, seed Seed, phases []*model.Phase, readings []model.Reading) Seed {
	space := nasearch.NewSpace(event.FixedOriginTime, event.FixedEpicenter, event.FixedDepth,
		0, seed.Lat, seed.Lon, seed.Depth,
		cfg.NASearchOT, cfg.NASearchRadius, cfg.NASearchDepth, cfg.NALpNorm)
	if space.Nd() == 0 {
		return seed
	}

	eval := func(point [4]float64) (float64, error) {
		otOffset, lat, lon, depth := point[0], point[1], point[2], point[3]
		trialOrigin := seed.OriginTime
		hypo := phaseid.Hypocentre{OriginTime: trialOrigin, Lat: lat, Lon: lon, Depth: depth}
		updateGeodesics(phases, stations, lat, lon)

		var residuals, sigmas []float64
		for _, p := range phases {
			name := p.Phase
			if name == "" {
				continue
			}
			pred, err := traveltime.Predict(ttctx, traveltime.Query{Phase: name, Lat: lat, Lon: lon, Depth: depth, Delta: p.Delta, ESAZ: p.ESAZ, SEAZ: p.SEAZ})
			if err != nil {
				continue
			}
			observed := p.ArrivalTime.Sub(hypo.OriginTime).Seconds() - otOffset
			residuals = append(residuals, observed-pred.TT)
			sigma := p.SigmaTime
			if sigma <= 0 {
				sigma = 1
			}
			sigmas = append(sigmas, sigma)
		}
		if len(residuals) == 0 {
			return 0, fmt.Errorf("nasearch: no predictable defining phases at trial point")
		}
		return nasearch.LpMisfit(residuals, sigmas, cfg.NALpNorm), nil
	}

	naCfg := nasearch.Config{
		InitialSample: cfg.NAInitialSample, NextSample: cfg.NANextSample,
		Cells: cfg.NACells, IterMax: cfg.NAIterMax, Seed: cfg.Iseed,
	}
	result, err := nasearch.Search(ctx, space, naCfg, eval)
	if err != nil {
		xlog.Locator.Printf("na search skipped: %v", err)
		return seed
	}

	newSeed := Seed{
		OriginTime: seed.OriginTime.Add(secondsToDuration(result.Best[0])),
		Lat:        result.Best[1], Lon: result.Best[2], Depth: result.Best[3],
		HasDepth: true,
	}
	updateGeodesics(phases, stations, newSeed.Lat, newSeed.Lon)
	phaseid.SortReadingsByDelta(phases, readings)
	hypo := phaseid.Hypocentre{OriginTime: newSeed.OriginTime, Lat: newSeed.Lat, Lon: newSeed.Lon, Depth: newSeed.Depth}
	if err := phaseid.Run(ttctx, tables, weights, hypo, phases, readings, cfg.SigmaThreshold, cfg.DoCorrelatedErrors); err != nil {
		xlog.Locator.Printf("na search: re-identification at winning point failed: %v, keeping prior seed", err)
		return seed
	}
	return newSeed
}
