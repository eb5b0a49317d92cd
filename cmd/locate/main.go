// Command locate is the composition-root CLI for a single-event location
// run, mirroring the teacher's cmd/radar/radar.go flag.String/flag.Bool
// setup rather than reaching for a heavier CLI framework at this level
// (SPEC_FULL.md §10). It reads a self-contained JSON "case" file -- the
// event, its reported hypocentres, stations, readings, phases, and the
// aux tables the engine needs -- runs internal/locator.Locate, and writes
// the resulting Solution (and, optionally, diagnostics artifacts and a
// SQLite row) back out. Decoding the case file's own JSON shape is this
// binary's concern, not internal/locator's: §6 treats readers as external
// collaborators, and this loader is the simplest one satisfying that
// contract for ad-hoc runs and tests.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/quakelocate/iloc-go/internal/config"
	"github.com/quakelocate/iloc-go/internal/covariance"
	"github.com/quakelocate/iloc-go/internal/diagnostics"
	"github.com/quakelocate/iloc-go/internal/locator"
	"github.com/quakelocate/iloc-go/internal/model"
	"github.com/quakelocate/iloc-go/internal/phaseid"
	"github.com/quakelocate/iloc-go/internal/store/sqlite"
	"github.com/quakelocate/iloc-go/internal/traveltime"
)

func main() {
	caseFile := flag.String("case", "", "path to a case JSON file (event, hypocentres, stations, readings, phases, aux tables)")
	configFile := flag.String("config", "", "path to a config JSON file (config.Defaults() used when empty)")
	dbPath := flag.String("db", "", "optional SQLite path to persist the solution (store/sqlite)")
	reportDir := flag.String("report-dir", "", "optional directory to write diagnostics artifacts into")
	flag.Parse()

	if *caseFile == "" {
		fmt.Fprintln(os.Stderr, "locate: -case is required")
		os.Exit(2)
	}

	if err := run(*caseFile, *configFile, *dbPath, *reportDir); err != nil {
		log.Fatalf("locate: %v", err)
	}
}

func run(caseFile, configFile, dbPath, reportDir string) error {
	cfg := config.Defaults()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	cs, err := loadCase(caseFile)
	if err != nil {
		return err
	}

	ttctx, err := cs.buildTravelTimeContext(cfg)
	if err != nil {
		return err
	}
	weights := cs.buildWeightTable()
	vg, err := cs.buildVariogram()
	if err != nil {
		return err
	}
	event, hypos, phases, readings := cs.buildEvent(cfg)

	out, err := locator.Locate(context.Background(), cfg, ttctx, phaseid.DefaultTables(), weights, vg, cs.stationMap(), event, hypos, phases, readings)
	if err != nil {
		return fmt.Errorf("locate: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out.Solution); err != nil {
		return fmt.Errorf("locate: encode solution: %w", err)
	}

	runID := time.Now().UTC().Format("20060102T150405Z")
	if dbPath != "" {
		store, err := sqlite.Open(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.PutSolution(event.ID, runID, out.Solution, out.Phases); err != nil {
			return err
		}
	}
	if reportDir != "" {
		if err := os.MkdirAll(reportDir, 0o755); err != nil {
			return fmt.Errorf("locate: report dir: %w", err)
		}
		if err := diagnostics.PlotResidualsPNG(out.Phases, reportDir+"/residuals.png"); err != nil {
			return err
		}
		if err := diagnostics.PlotAzimuthalCoveragePNG(out.Phases, reportDir+"/azimuth.png"); err != nil {
			return err
		}
		if err := diagnostics.WriteHTMLReportFile(out.Solution, out.Phases, reportDir+"/report.html"); err != nil {
			return err
		}
	}
	return nil
}

// caseFile is the on-disk JSON shape this binary decodes into the core
// model types; see loadCase.
type caseFile struct {
	Event       caseEvent        `json:"event"`
	Hypocentres []caseHypo       `json:"hypocentres"`
	Stations    []caseStation    `json:"stations"`
	Readings    []caseReading    `json:"readings"`
	Phases      []casePhase      `json:"phases"`
	Aux         caseAux          `json:"aux"`
}

type caseEvent struct {
	ID              string   `json:"id"`
	EType           string   `json:"etype"`
	FixedDepth      bool     `json:"fixed_depth"`
	FixedEpicenter  bool     `json:"fixed_epicenter"`
	FixedOriginTime bool     `json:"fixed_origin_time"`
	FixedHypocenter bool     `json:"fixed_hypocenter"`
	TrustedAgency   string   `json:"trusted_agency"`
	RejectAgencies  []string `json:"reject_agencies"`
}

type caseHypo struct {
	ID         string  `json:"id"`
	Agency     string  `json:"agency"`
	TimeUnix   int64   `json:"time_unix"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Depth      float64 `json:"depth"`
	HasDepth   bool    `json:"has_depth"`
	Ignore     bool    `json:"ignore"`
}

type caseStation struct {
	Code       string  `json:"code"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	ElevationM float64 `json:"elevation_m"`
}

type caseReading struct {
	ID         int    `json:"id"`
	StationID  string `json:"station_id"`
	AgencyCode string `json:"agency_code"`
	Start      int    `json:"start"`
	Count      int    `json:"count"`
}

type casePhase struct {
	ReadingID     int     `json:"reading_id"`
	StationID     string  `json:"station_id"`
	ReportedPhase string  `json:"reported_phase"`
	ArrivalUnix   int64   `json:"arrival_unix"`
	Azimuth       float64 `json:"azimuth"`
	Slowness      float64 `json:"slowness"`
}

type caseAux struct {
	GlobalTables      []caseTable      `json:"global_tables"`
	EllipticityTables []caseEllipTable `json:"ellipticity_tables"`
	Variogram         *caseVariogram   `json:"variogram"`
	WeightSamples     caseWeights      `json:"weight_samples"`
}

type caseTable struct {
	Phase     string      `json:"phase"`
	Bounce    bool        `json:"bounce"`
	Distances []float64   `json:"distances"`
	Depths    []float64   `json:"depths"`
	TT        [][]float64 `json:"tt"`
	DtDDelta  [][]float64 `json:"dtdd"`
	DtDh      [][]float64 `json:"dtdh"`
	BPDelta   [][]float64 `json:"bpdelta"`
}

type caseEllipTable struct {
	Phase     string      `json:"phase"`
	Distances []float64   `json:"distances"`
	Depths    [6]float64  `json:"depths"`
	Tau0      [][]float64 `json:"tau0"`
	Tau1      [][]float64 `json:"tau1"`
	Tau2      [][]float64 `json:"tau2"`
}

type caseVariogram struct {
	Distances []float64 `json:"distances"`
	Gammas    []float64 `json:"gammas"`
	Sill      float64   `json:"sill"`
	MaxSep    float64   `json:"max_sep"`
}

type caseWeights struct {
	Time     []caseWeightSample `json:"time"`
	Azimuth  []caseWeightSample `json:"azimuth"`
	Slowness []caseWeightSample `json:"slowness"`
}

type caseWeightSample struct {
	Phase string  `json:"phase"`
	Delta float64 `json:"delta"`
	Sigma float64 `json:"sigma"`
}

func loadCase(path string) (*caseFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("locate: read case file %s: %w", path, err)
	}
	var cs caseFile
	if err := json.Unmarshal(data, &cs); err != nil {
		return nil, fmt.Errorf("locate: parse case file %s: %w", path, err)
	}
	return &cs, nil
}

func (cs *caseFile) stationMap() map[string]model.Station {
	m := make(map[string]model.Station, len(cs.Stations))
	for _, s := range cs.Stations {
		m[s.Code] = model.Station{Code: s.Code, Lat: s.Lat, Lon: s.Lon, ElevationM: s.ElevationM}
	}
	return m
}

func (cs *caseFile) buildTravelTimeContext(cfg *config.Config) (*traveltime.Context, error) {
	ttctx := traveltime.NewContext()
	ttctx.UseRSTTPnSn = cfg.UseRSTTPnSn
	ttctx.UseRSTTPgLg = cfg.UseRSTTPgLg
	ttctx.MaxLocalTTDelta = cfg.MaxLocalTTDelta

	for _, t := range cs.Aux.GlobalTables {
		table, err := traveltime.NewTable(t.Phase, t.Bounce, t.Distances, t.Depths, t.TT, t.DtDDelta, t.DtDh, t.BPDelta)
		if err != nil {
			return nil, fmt.Errorf("locate: global table %s: %w", t.Phase, err)
		}
		ttctx.Global[t.Phase] = table
	}
	for _, e := range cs.Aux.EllipticityTables {
		ttctx.Ellip[e.Phase] = &traveltime.EllipticityTable{
			Phase: e.Phase, Distances: e.Distances, Depths: e.Depths,
			Tau0: e.Tau0, Tau1: e.Tau1, Tau2: e.Tau2,
		}
	}
	return ttctx, nil
}

func (cs *caseFile) buildWeightTable() *phaseid.WeightTable {
	w := phaseid.NewWeightTable()
	for _, s := range cs.Aux.WeightSamples.Time {
		w.AddTimeSample(s.Phase, s.Delta, s.Sigma)
	}
	for _, s := range cs.Aux.WeightSamples.Azimuth {
		w.AddAzimuthSample(s.Phase, s.Delta, s.Sigma)
	}
	for _, s := range cs.Aux.WeightSamples.Slowness {
		w.AddSlownessSample(s.Phase, s.Delta, s.Sigma)
	}
	return w
}

func (cs *caseFile) buildVariogram() (*covariance.Variogram, error) {
	if cs.Aux.Variogram == nil {
		// Sill-only fallback: no spatial correlation, diagonal covariance.
		return covariance.NewVariogram([]float64{0, 1}, []float64{0, 0}, 1.0, 0)
	}
	v := cs.Aux.Variogram
	return covariance.NewVariogram(v.Distances, v.Gammas, v.Sill, v.MaxSep)
}

func (cs *caseFile) buildEvent(cfg *config.Config) (*model.Event, []model.Hypocentre, []*model.Phase, []model.Reading) {
	reject := cfg.RejectSet()
	for _, a := range cs.Event.RejectAgencies {
		reject[a] = true
	}
	event := &model.Event{
		ID:              cs.Event.ID,
		EType:           cs.Event.EType,
		ReportedHypocenterCount: len(cs.Hypocentres),
		PhaseCount:      len(cs.Phases),
		ReadingCount:    len(cs.Readings),
		FixedDepth:      cs.Event.FixedDepth,
		FixedEpicenter:  cs.Event.FixedEpicenter,
		FixedOriginTime: cs.Event.FixedOriginTime,
		FixedHypocenter: cs.Event.FixedHypocenter,
		TrustedAgency:   cs.Event.TrustedAgency,
		RejectAgencies:  reject,
	}

	hypos := make([]model.Hypocentre, 0, len(cs.Hypocentres))
	for _, h := range cs.Hypocentres {
		hypos = append(hypos, model.Hypocentre{
			ID: h.ID, Agency: h.Agency, Time: time.Unix(h.TimeUnix, 0).UTC(),
			Lat: h.Lat, Lon: h.Lon, Depth: h.Depth, HasDepth: h.HasDepth, Ignore: h.Ignore,
		})
	}

	phases := make([]*model.Phase, 0, len(cs.Phases))
	for _, p := range cs.Phases {
		phases = append(phases, &model.Phase{
			ReadingID: p.ReadingID, StationID: p.StationID,
			ReportedPhase: p.ReportedPhase,
			ArrivalTime:   time.Unix(p.ArrivalUnix, 0).UTC(),
			Azimuth:       p.Azimuth, Slowness: p.Slowness,
			PPIndex: -1, PwPIndex: -1, PSIndex: -1, SPIndex: -1, SSIndex: -1,
		})
	}

	readings := make([]model.Reading, 0, len(cs.Readings))
	for _, r := range cs.Readings {
		readings = append(readings, model.Reading{ID: r.ID, StationID: r.StationID, AgencyCode: r.AgencyCode, Start: r.Start, Count: r.Count})
	}

	return event, hypos, phases, readings
}
