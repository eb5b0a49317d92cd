package locator

import (
	"math"
	"time"

	"github.com/quakelocate/iloc-go/internal/config"
	"github.com/quakelocate/iloc-go/internal/locerr"
	"github.com/quakelocate/iloc-go/internal/model"
	"github.com/quakelocate/iloc-go/internal/phaseid"
	"github.com/quakelocate/iloc-go/internal/traveltime"
)

// residualUpdater tracks the state a residual evaluator needs across
// successive inversion-kernel iterations: where the epicentre last sat
// (for the reidentification-trigger test) and the discontinuity depths
// used by that test.
type residualUpdater struct {
	ttctx    *traveltime.Context
	tables   *phaseid.Tables
	weights  *phaseid.WeightTable
	stations map[string]model.Station
	phases   []*model.Phase
	readings []model.Reading
	tref     time.Time
	cfg      *config.Config

	conradDepth, mohoDepth float64

	prevLat, prevLon, prevDepth float64
	initialized                 bool
}

// newResidualUpdater derives the Conrad/Moho trigger depths from the
// travel-time context's local model, when one is loaded (§4.3's
// reidentification clause); a context with no local model never triggers
// on discontinuity crossing, only on epicentre displacement.
func newResidualUpdater(ttctx *traveltime.Context, tables *phaseid.Tables, weights *phaseid.WeightTable, stations map[string]model.Station, phases []*model.Phase, readings []model.Reading, tref time.Time, cfg *config.Config) *residualUpdater {
	ru := &residualUpdater{
		ttctx: ttctx, tables: tables, weights: weights, stations: stations,
		phases: phases, readings: readings, tref: tref, cfg: cfg,
	}
	if ttctx.Local != nil {
		ru.conradDepth = ttctx.Local.Layers[ttctx.Local.ConradIndex].TopDepth
		ru.mohoDepth = ttctx.Local.Layers[ttctx.Local.MohoIndex].TopDepth
	}
	return ru
}

// eval is the residualEval closure handed to inversion.Kernel.Run: it
// refreshes geodesics, reidentifies when triggered, predicts every
// identified phase's travel time at the trial hypocentre, and forms the
// observed-minus-predicted residuals for all three observation classes.
func (ru *residualUpdater) eval(lat, lon, depth, otOffsetSec float64) error {
	moved := 0.0
	if ru.initialized {
		moved = epicentreMoveKm(ru.prevLat, ru.prevLon, lat, lon)
	}
	if !ru.initialized || moved > 0 {
		updateGeodesics(ru.phases, ru.stations, lat, lon)
	}

	reidentify := !ru.initialized || phaseid.ShouldReidentify(ru.prevDepth, depth, ru.conradDepth, ru.mohoDepth, moved, config.EpiwalkKm)
	originTime := ru.tref.Add(time.Duration(otOffsetSec * float64(time.Second)))
	if reidentify {
		phaseid.SortReadingsByDelta(ru.phases, ru.readings)
		hypo := phaseid.Hypocentre{OriginTime: originTime, Lat: lat, Lon: lon, Depth: depth}
		if err := phaseid.Run(ru.ttctx, ru.tables, ru.weights, hypo, ru.phases, ru.readings, ru.cfg.SigmaThreshold, ru.cfg.DoCorrelatedErrors); err != nil {
			return err
		}
	}

	anyPredicted := false
	for _, p := range ru.phases {
		if p.Phase == "" {
			p.TimeDefining, p.AzimuthDefining, p.SlownessDefining = false, false, false
			continue
		}
		st := ru.stations[p.StationID]
		pr, err := traveltime.Predict(ru.ttctx, traveltime.Query{
			Phase: p.Phase, Lat: lat, Lon: lon, Depth: depth,
			Delta: p.Delta, ESAZ: p.ESAZ, SEAZ: p.SEAZ,
			StationLat: st.Lat, StationLon: st.Lon, StationElevM: st.ElevationM,
		})
		if err != nil {
			p.TimeDefining, p.AzimuthDefining, p.SlownessDefining = false, false, false
			p.Analysts = model.ReasonPredictFailed
			continue
		}
		anyPredicted = true

		p.PredictedTT, p.DtDDelta, p.DtDh = pr.TT, pr.DtDDelta, pr.DtDh
		p.D2tDDelta2, p.D2tDh2, p.BouncePointDelta = pr.D2tDDelta2, pr.D2tDh2, pr.BouncePointDelta
		p.RSTTPickErr, p.RSTTTotalErr = pr.RSTTPickErr, pr.RSTTTotalErr

		p.TimeResidual = p.ArrivalTime.Sub(originTime).Seconds() - pr.TT
		p.AzimuthResidual = wrapDeg180(p.Azimuth - p.SEAZ)
		p.SlownessResidual = p.Slowness - pr.DtDDelta

		phaseid.ApplyPriorSigma(p, ru.weights, ru.cfg.SigmaThreshold)
	}
	if !anyPredicted {
		return locerr.ErrPredictFailed
	}

	ru.prevLat, ru.prevLon, ru.prevDepth, ru.initialized = lat, lon, depth, true
	return nil
}

// wrapDeg180 wraps an azimuth difference into (-180, 180].
func wrapDeg180(d float64) float64 {
	d = math.Mod(d+180, 360)
	if d < 0 {
		d += 360
	}
	return d - 180
}
