// Package diagnostics renders offline review artifacts for a located
// event: a residual-vs-distance scatter and an azimuthal-coverage
// histogram as a PNG (gonum.org/v1/plot, grounded on the teacher's
// internal/lidar/monitor/gridplotter.go GridPlotter.generateRingPlot), plus
// a self-contained interactive HTML report (github.com/go-echarts/go-echarts/v2,
// grounded on internal/lidar/monitor/echarts_handlers.go's
// handleBackgroundGridPolar). Neither artifact feeds back into the locator
// itself — §6 states "Format is the sink's concern" for the result sink,
// and these are an additional, optional sink for human review, the same
// role the teacher's debug-only polar/ring plots play for its own pipeline.
package diagnostics

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/google/uuid"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/quakelocate/iloc-go/internal/model"
)

// Report is one diagnostics bundle for a located event; ReportID lets a
// caller correlate it back to the workerpool.Result that produced it.
type Report struct {
	ReportID string
	EventID  string
}

// NewReport allocates a report id the way the teacher's scene_store.go
// allocates a SceneID: uuid.New().String() per artifact.
func NewReport(eventID string) Report {
	return Report{ReportID: uuid.New().String(), EventID: eventID}
}

func definingTimePhases(phases []*model.Phase) []*model.Phase {
	out := make([]*model.Phase, 0, len(phases))
	for _, p := range phases {
		if p.TimeDefining {
			out = append(out, p)
		}
	}
	return out
}

// PlotResidualsPNG renders a Delta (deg) vs. time-residual (s) scatter for
// every defining phase to a 14x6-inch PNG, the same dimensions the
// teacher's generateRingPlot uses for its per-ring time series.
func PlotResidualsPNG(phases []*model.Phase, path string) error {
	defining := definingTimePhases(phases)
	p := plot.New()
	p.Title.Text = "Time residuals vs. distance"
	p.X.Label.Text = "Delta (deg)"
	p.Y.Label.Text = "residual (s)"

	pts := make(plotter.XYs, 0, len(defining))
	for _, ph := range defining {
		pts = append(pts, plotter.XY{X: ph.Delta, Y: ph.TimeResidual})
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("diagnostics: residual scatter: %w", err)
	}
	p.Add(scatter)
	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("diagnostics: save residual plot: %w", err)
	}
	return nil
}

// PlotAzimuthalCoveragePNG renders a 36-bin histogram (bins spanning the
// observed azimuth range) of defining
// phases' event-to-station azimuth (ESAZ), a Cartesian stand-in for the
// network's azimuthal "rose" used by §4.11's gap metrics.
func PlotAzimuthalCoveragePNG(phases []*model.Phase, path string) error {
	defining := definingTimePhases(phases)
	p := plot.New()
	p.Title.Text = "Azimuthal coverage"
	p.X.Label.Text = "ESAZ (deg)"
	p.Y.Label.Text = "count"

	vals := make(plotter.Values, 0, len(defining))
	for _, ph := range defining {
		vals = append(vals, math.Mod(ph.ESAZ+360, 360))
	}
	hist, err := plotter.NewHist(vals, 36)
	if err != nil {
		return fmt.Errorf("diagnostics: azimuth histogram: %w", err)
	}
	p.Add(hist)
	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("diagnostics: save azimuth plot: %w", err)
	}
	return nil
}

// RenderHTMLReport writes a self-contained HTML page with the residual
// scatter and azimuth histogram as interactive go-echarts charts, mirroring
// the teacher's components.NewPage()/page.Render(&buf) pattern for serving
// more than one chart from a single handler.
func RenderHTMLReport(sol model.Solution, phases []*model.Phase, w io.Writer) error {
	defining := definingTimePhases(phases)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Time residuals vs. distance"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "delta (deg)"}),
	)
	scatterData := make([]opts.ScatterData, 0, len(defining))
	for _, ph := range defining {
		scatterData = append(scatterData, opts.ScatterData{Value: []interface{}{ph.Delta, ph.TimeResidual}})
	}
	scatter.SetXAxis(nil).AddSeries("residual", scatterData)

	counts := make([]int, 36)
	azLabels := make([]string, 36)
	for i := range counts {
		azLabels[i] = fmt.Sprintf("%d", i*10)
	}
	for _, ph := range defining {
		bin := int(math.Mod(ph.ESAZ+360, 360)) / 10
		if bin >= 0 && bin < len(counts) {
			counts[bin]++
		}
	}
	azCounts := make([]opts.BarData, 36)
	for i, c := range counts {
		azCounts[i].Value = c
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{
		Title: fmt.Sprintf("Azimuthal coverage (depth type %s, ndef=%d)", sol.DepthType, sol.Ndef),
	}))
	bar.SetXAxis(azLabels).AddSeries("stations", azCounts)

	page := components.NewPage()
	page.AddCharts(scatter, bar)
	return page.Render(w)
}

// WriteHTMLReportFile is a convenience wrapper writing RenderHTMLReport's
// output to a file path, buffering through bytes.Buffer the way the
// teacher's HTTP handlers render to a buffer before writing the response.
func WriteHTMLReportFile(sol model.Solution, phases []*model.Phase, path string) error {
	var buf bytes.Buffer
	if err := RenderHTMLReport(sol, phases, &buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
