package locator

import (
	"fmt"
	"sort"
	"time"

	"github.com/quakelocate/iloc-go/internal/model"
	"gonum.org/v1/gonum/stat"
)

// Seed is the starting hypocentre the inversion kernel (and, when enabled,
// the NA search) is initialized from.
type Seed struct {
	OriginTime time.Time
	Lat, Lon   float64
	Depth      float64
	HasDepth   bool
}

// resolveSeed implements SPEC_FULL.md §12's Open Question decision: an
// event's TrustedAgency, when set and present among the reported
// hypocentres, is used outright; otherwise the seed is the componentwise
// median of every non-ignored, non-rejected reported hypocentre. For an
// anthropogenic event (§4.9/§12) the seed depth is additionally set to 0;
// the FixedSurface flag itself is set by Locate, not here.
func resolveSeed(event *model.Event, hypos []model.Hypocentre) (Seed, error) {
	usable := make([]model.Hypocentre, 0, len(hypos))
	for _, h := range hypos {
		if h.Ignore || event.RejectAgencies[h.Agency] {
			continue
		}
		usable = append(usable, h)
	}
	if len(usable) == 0 {
		return Seed{}, fmt.Errorf("locator: no usable reported hypocentres for event %s", event.ID)
	}

	var seed Seed
	if event.TrustedAgency != "" {
		for _, h := range usable {
			if h.Agency == event.TrustedAgency {
				seed = Seed{OriginTime: h.Time, Lat: h.Lat, Lon: h.Lon, Depth: h.Depth, HasDepth: h.HasDepth}
				break
			}
		}
	}
	if seed.OriginTime.IsZero() {
		seed = medianSeed(usable)
	}

	if event.IsAnthropogenic() {
		seed.Depth, seed.HasDepth = 0, true
	}
	return seed, nil
}

// medianSeed takes the componentwise median of lat/lon/depth and the
// median time offset from the first hypocentre (so the result stays a
// valid time.Time regardless of the absolute epoch).
func medianSeed(hypos []model.Hypocentre) Seed {
	lats := make([]float64, len(hypos))
	lons := make([]float64, len(hypos))
	var depths []float64
	ref := hypos[0].Time
	offsets := make([]float64, len(hypos))

	for i, h := range hypos {
		lats[i] = h.Lat
		lons[i] = h.Lon
		offsets[i] = h.Time.Sub(ref).Seconds()
		if h.HasDepth {
			depths = append(depths, h.Depth)
		}
	}
	sort.Float64s(lats)
	sort.Float64s(lons)
	sort.Float64s(offsets)

	medLat := stat.Quantile(0.5, stat.Empirical, lats, nil)
	medLon := stat.Quantile(0.5, stat.Empirical, lons, nil)
	medOffset := stat.Quantile(0.5, stat.Empirical, offsets, nil)

	s := Seed{
		OriginTime: ref.Add(time.Duration(medOffset * float64(time.Second))),
		Lat:        medLat,
		Lon:        medLon,
	}
	if len(depths) > 0 {
		sort.Float64s(depths)
		s.Depth = stat.Quantile(0.5, stat.Empirical, depths, nil)
		s.HasDepth = true
	}
	return s
}

// medianDepth returns the median depth among hypocentres that reported
// one, used by the §4.9 fix-depth ladder's "median reported depth" option.
func medianDepth(hypos []model.Hypocentre) (float64, bool) {
	var depths []float64
	for _, h := range hypos {
		if h.HasDepth && !h.Ignore {
			depths = append(depths, h.Depth)
		}
	}
	if len(depths) == 0 {
		return 0, false
	}
	sort.Float64s(depths)
	n := len(depths)
	if n%2 == 0 {
		return (depths[n/2-1] + depths[n/2]) / 2, true
	}
	return depths[n/2], true
}
