package quality

import (
	"math"
	"sort"

	"github.com/quakelocate/iloc-go/internal/model"
	"gonum.org/v1/gonum/stat"
)

// Observation is the minimal per-defining-phase geometry the quality
// metrics need: one entry per station contributing a defining time
// observation, the event-to-station azimuth and the two distance measures
// the aperture bands filter on.
type Observation struct {
	StationID string
	ESAZDeg   float64
	DeltaDeg  float64
	DistKm    float64
}

// Band names the four network-aperture bands of §4.11.
type Band string

const (
	BandLocal         Band = "local"
	BandNearRegional  Band = "near-regional"
	BandTeleseismic   Band = "teleseismic"
	BandFull          Band = "full"
)

// gt5StationKm is the "at least one station within 10 km" clause of the
// GT5-candidate test.
const gt5StationKm = 10.0
const gt5DUMax = 0.35
const gt5SgapMaxDeg = 160.0

func inBand(b Band, o Observation) bool {
	switch b {
	case BandLocal:
		return o.DistKm <= 150
	case BandNearRegional:
		return o.DeltaDeg >= 3 && o.DeltaDeg <= 10
	case BandTeleseismic:
		return o.DeltaDeg >= 28 && o.DeltaDeg <= 180
	case BandFull:
		return o.DeltaDeg >= 0 && o.DeltaDeg <= 180
	}
	return false
}

// Compute builds the §4.11 metrics for every aperture band and the GT5
// flag, deduplicating observations to one per station before the gap/dU
// computation (a network with several phases at one station has a single
// azimuth, not several).
func Compute(obs []Observation) (map[string]model.QualityMetrics, bool) {
	result := map[string]model.QualityMetrics{}

	bands := []Band{BandLocal, BandNearRegional, BandTeleseismic, BandFull}
	for _, b := range bands {
		var filtered []Observation
		for _, o := range obs {
			if inBand(b, o) {
				filtered = append(filtered, o)
			}
		}
		result[string(b)] = metricsFor(filtered)
	}

	full := result[string(BandFull)]
	hasClose := false
	for _, o := range obs {
		if o.DistKm > 0 && o.DistKm <= gt5StationKm {
			hasClose = true
			break
		}
	}
	gt5 := full.DU <= gt5DUMax && full.SecondaryGapDeg <= gt5SgapMaxDeg && hasClose

	return result, gt5
}

// metricsFor computes one band's gap/sgap/dU/ndef/mindist/maxdist,
// deduplicating by station and following the sorted-azimuth construction
// of the original iLoc GetdUGapSgap routine.
func metricsFor(obs []Observation) model.QualityMetrics {
	byStation := map[string]Observation{}
	for _, o := range obs {
		if _, ok := byStation[o.StationID]; !ok {
			byStation[o.StationID] = o
		}
	}
	if len(byStation) == 0 {
		return model.QualityMetrics{PrimaryGapDeg: 360, SecondaryGapDeg: 360, DU: 1}
	}

	esaz := make([]float64, 0, len(byStation))
	minDist, maxDist := math.Inf(1), math.Inf(-1)
	for _, o := range byStation {
		esaz = append(esaz, math.Mod(o.ESAZDeg+360, 360))
		if o.DeltaDeg < minDist {
			minDist = o.DeltaDeg
		}
		if o.DeltaDeg > maxDist {
			maxDist = o.DeltaDeg
		}
	}
	sort.Float64s(esaz)
	n := len(esaz)

	du, gap, sgap := 1.0, 360.0, 360.0
	if n >= 2 {
		diffs := make([]float64, n)
		for i := range esaz {
			uesaz := 360 * float64(i) / float64(n)
			diffs[i] = esaz[i] - uesaz
		}
		bb := stat.Mean(diffs, nil)

		w := 0.0
		for i := range esaz {
			uesaz := 360 * float64(i) / float64(n)
			w += math.Abs(esaz[i] - uesaz - bb)
		}
		du = 4 * w / (360 * float64(n))

		wrapped := append(append([]float64(nil), esaz...), esaz[0]+360)
		g := 0.0
		for i := 0; i < n; i++ {
			if d := wrapped[i+1] - wrapped[i]; d > g {
				g = d
			}
		}
		if g > 360 {
			g = 360
		}
		gap = g

		wrapped2 := append(append([]float64(nil), esaz...), esaz[0]+360, esaz[1]+360)
		sg := 0.0
		for i := 0; i < n; i++ {
			if d := wrapped2[i+2] - wrapped2[i]; d > sg {
				sg = d
			}
		}
		if sg > 360 {
			sg = 360
		}
		sgap = sg
	}

	return model.QualityMetrics{
		PrimaryGapDeg:   gap,
		SecondaryGapDeg: sgap,
		DU:              du,
		Ndef:            n,
		MinDistDeg:      minDist,
		MaxDistDeg:      maxDist,
	}
}

