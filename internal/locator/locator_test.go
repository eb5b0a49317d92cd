package locator

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/quakelocate/iloc-go/internal/config"
	"github.com/quakelocate/iloc-go/internal/covariance"
	"github.com/quakelocate/iloc-go/internal/geo"
	"github.com/quakelocate/iloc-go/internal/model"
	"github.com/quakelocate/iloc-go/internal/phaseid"
	"github.com/quakelocate/iloc-go/internal/traveltime"
)

// linearPTable builds a P table whose travel time is exactly
// slopeSecPerDeg*delta at every depth (depth-independent), so a natural
// cubic spline through the samples reproduces the line exactly and the
// fixed-depth Gauss-Newton problem stays linear, mirroring the inversion
// package's own kernel_test.go fixtures.
func linearPTable(t *testing.T, slope float64) *traveltime.Table {
	t.Helper()
	distances := []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90}
	depths := []float64{0, 33, 100}
	tt := make([][]float64, len(distances))
	dtdh := make([][]float64, len(distances))
	for i, d := range distances {
		tt[i] = make([]float64, len(depths))
		dtdh[i] = make([]float64, len(depths))
		for j := range depths {
			tt[i][j] = d * slope
		}
	}
	tbl, err := traveltime.NewTable("P", false, distances, depths, tt, tt, dtdh, nil)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return tbl
}

// TestLocate_ConvergesOnFixedDepthSyntheticNetwork builds a five-station
// network around a known epicentre with an exact linear travel-time field
// and checks that Locate recovers the true epicentre and origin time from
// a nearby seed, with depth held at its fixed value throughout.
func TestLocate_ConvergesOnFixedDepthSyntheticNetwork(t *testing.T) {
	const slope = 10.0 // s/deg
	const trueLat, trueLon, trueDepth = 20.0, 40.0, 15.0
	trueOrigin := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	offsets := []struct {
		code       string
		dlat, dlon float64
	}{
		{"AAA", 10, 0},
		{"BBB", -10, 0},
		{"CCC", 0, 20},
		{"DDD", 0, -20},
		{"EEE", 25, 25},
	}

	stations := map[string]model.Station{}
	var phases []*model.Phase
	var readings []model.Reading
	for i, so := range offsets {
		st := model.Station{Code: so.code, Lat: trueLat + so.dlat, Lon: trueLon + so.dlon}
		stations[so.code] = st
		delta, esaz, seaz := geo.Distance(geo.Point{Lat: trueLat, Lon: trueLon}, geo.Point{Lat: st.Lat, Lon: st.Lon})
		arrival := trueOrigin.Add(time.Duration(delta * slope * float64(time.Second)))
		phases = append(phases, &model.Phase{
			StationID: so.code, ReportedPhase: "P",
			Delta: delta, ESAZ: esaz, SEAZ: seaz,
			ArrivalTime: arrival, TimeDefining: true,
		})
		readings = append(readings, model.Reading{StationID: so.code, Start: i, Count: 1})
	}

	ttctx := traveltime.NewContext()
	ttctx.Global["P"] = linearPTable(t, slope)

	tables := phaseid.DefaultTables()
	weights := phaseid.NewWeightTable()
	weights.AddTimeSample("P", 0, 1.0)

	vg, err := covariance.NewVariogram([]float64{0, 100}, []float64{0, 0.01}, 1.0, 100)
	if err != nil {
		t.Fatalf("NewVariogram: %v", err)
	}

	cfg := config.Defaults()
	cfg.DoCorrelatedErrors = false // keep whitening diagonal so the step stays exact
	cfg.DoGridSearch = false       // exercise the ladder/kernel path directly
	cfg.MinNdefPhases = 3
	cfg.MinIterations = 1

	event := &model.Event{ID: "synthtest", EType: "se", FixedDepth: true}
	hypos := []model.Hypocentre{
		{Agency: "SEED", Time: trueOrigin.Add(500 * time.Millisecond), Lat: trueLat + 0.1, Lon: trueLon + 0.1, Depth: trueDepth, HasDepth: true},
	}

	out, err := Locate(context.Background(), cfg, ttctx, tables, weights, vg, stations, event, hypos, phases, readings)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if !out.Solution.Converged {
		t.Fatalf("expected solution to converge, got state with Converged=false")
	}
	if got := math.Abs(out.Solution.Lat - trueLat); got > 0.01 {
		t.Errorf("Lat = %v, want within 0.01 of %v", out.Solution.Lat, trueLat)
	}
	if got := math.Abs(out.Solution.Lon - trueLon); got > 0.01 {
		t.Errorf("Lon = %v, want within 0.01 of %v", out.Solution.Lon, trueLon)
	}
	if out.Solution.Depth != trueDepth {
		t.Errorf("Depth = %v, want fixed at %v", out.Solution.Depth, trueDepth)
	}
	if !out.Solution.DepthFixed {
		t.Errorf("expected DepthFixed=true for an event.FixedDepth event")
	}
	if got := math.Abs(out.Solution.OriginTime.Sub(trueOrigin).Seconds()); got > 0.01 {
		t.Errorf("OriginTime off by %v seconds, want within 0.01", got)
	}
	if len(out.Solution.Quality) == 0 {
		t.Errorf("expected quality metrics to be populated")
	}
}

// TestLocate_FixedHypocenterBypassesInversion checks the degenerate §4.9
// rung: an event with a fully fixed hypocentre never calls the Gauss-Newton
// kernel, it only evaluates residuals once at the reported point.
func TestLocate_FixedHypocenterBypassesInversion(t *testing.T) {
	const trueLat, trueLon, trueDepth = -10.0, 120.0, 33.0
	trueOrigin := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	st := model.Station{Code: "AAA", Lat: trueLat + 10, Lon: trueLon}
	stations := map[string]model.Station{"AAA": st}
	delta, esaz, seaz := geo.Distance(geo.Point{Lat: trueLat, Lon: trueLon}, geo.Point{Lat: st.Lat, Lon: st.Lon})
	arrival := trueOrigin.Add(time.Duration(delta * 10.0 * float64(time.Second)))
	phases := []*model.Phase{
		{StationID: "AAA", ReportedPhase: "P", Delta: delta, ESAZ: esaz, SEAZ: seaz, ArrivalTime: arrival, TimeDefining: true},
	}
	readings := []model.Reading{{StationID: "AAA", Start: 0, Count: 1}}

	ttctx := traveltime.NewContext()
	ttctx.Global["P"] = linearPTable(t, 10.0)
	tables := phaseid.DefaultTables()
	weights := phaseid.NewWeightTable()
	weights.AddTimeSample("P", 0, 1.0)

	vg, err := covariance.NewVariogram([]float64{0, 100}, []float64{0, 0.01}, 1.0, 100)
	if err != nil {
		t.Fatalf("NewVariogram: %v", err)
	}

	cfg := config.Defaults()
	cfg.DoGridSearch = false
	cfg.MinNdefPhases = 1

	event := &model.Event{
		ID: "fixedhypo", EType: "se",
		FixedDepth: true, FixedEpicenter: true, FixedOriginTime: true, FixedHypocenter: true,
	}
	hypos := []model.Hypocentre{
		{Agency: "ISC", Time: trueOrigin, Lat: trueLat, Lon: trueLon, Depth: trueDepth, HasDepth: true},
	}

	out, err := Locate(context.Background(), cfg, ttctx, tables, weights, vg, stations, event, hypos, phases, readings)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if out.Solution.Lat != trueLat || out.Solution.Lon != trueLon || out.Solution.Depth != trueDepth {
		t.Errorf("fixed hypocentre solution = (%v,%v,%v), want (%v,%v,%v)",
			out.Solution.Lat, out.Solution.Lon, out.Solution.Depth, trueLat, trueLon, trueDepth)
	}
	if out.Solution.DepthType != model.DepthHypo {
		t.Errorf("DepthType = %v, want DepthHypo", out.Solution.DepthType)
	}
}
