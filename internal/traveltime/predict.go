package traveltime

import (
	"fmt"
	"math"

	"github.com/quakelocate/iloc-go/internal/geo"
)

// FirstP and FirstS are the sentinel phase names the phase identifier and
// inversion kernel use to ask "whatever P/S phase arrives first" (§4.2).
const (
	FirstP = "firstP"
	FirstS = "firstS"
)

// Prediction is the full travel-time engine output for one phase query
// (§4.2's public contract).
type Prediction struct {
	TT               float64
	DtDDelta         float64 // s/deg
	DtDh             float64 // s/km
	D2tDDelta2       float64
	D2tDh2           float64
	BouncePointDelta float64 // degrees, only set for depth phases

	RSTTPickErr  float64
	RSTTTotalErr float64
	FromRSTT     bool
}

// Query is the input geometry for one prediction: the event's hypocentre
// plus the phase's already-computed geodesics.
type Query struct {
	Phase string // canonical phase name, or FirstP/FirstS
	Lat   float64
	Lon   float64
	Depth float64
	Delta float64
	ESAZ  float64 // event-to-station azimuth, degrees
	SEAZ  float64 // station-to-event azimuth, degrees

	StationLat      float64
	StationLon      float64
	StationElevM    float64
}

// Predict is the travel-time engine's public entry point (§4.2).
func Predict(ctx *Context, q Query) (Prediction, error) {
	if q.Phase == FirstP || q.Phase == FirstS {
		return firstArrival(ctx, q)
	}
	return predictOne(ctx, q, q.Phase)
}

func firstArrival(ctx *Context, q Query) (Prediction, error) {
	wantP := q.Phase == FirstP
	var best Prediction
	found := false
	for name := range ctx.Global {
		if IsPType(name) != wantP {
			continue
		}
		if IsDepthPhaseName(name) {
			continue
		}
		pr, err := predictOne(ctx, q, name)
		if err != nil {
			continue
		}
		if pr.TT <= 0 {
			continue
		}
		if !found || pr.TT < best.TT {
			best, found = pr, true
		}
	}
	if !found {
		return Prediction{}, fmt.Errorf("%w: no first-arrival candidate for delta=%.2f depth=%.1f", ErrTableMiss, q.Delta, q.Depth)
	}
	return best, nil
}

// IsDepthPhaseName reports whether name is a depth phase (lower-case first
// letter, glossary "Depth phase").
func IsDepthPhaseName(name string) bool {
	if name == "" {
		return false
	}
	return name[0] >= 'a' && name[0] <= 'z'
}

func predictOne(ctx *Context, q Query, phase string) (Prediction, error) {
	// §4.2 step 5: redirect to locally synthesized tables when allowed and
	// within range.
	if ctx.Local != nil && IsLocalAllowed(phase) && q.Delta <= ctx.MaxLocalTTDelta {
		if t, ok := ctx.LocalTables[phase]; ok {
			return predictFromTable(t, ctx, q)
		}
	}

	// §4.2 step 6: RSTT substitution for regional phases within 15 degrees.
	if rsttEligible(phase, ctx.UseRSTTPnSn, ctx.UseRSTTPgLg) && q.Delta <= 15.0 {
		rp, ok, err := ctx.RSTT.Predict(phase, q.Delta, q.Depth, q.Lat, q.Lon)
		if err != nil {
			return Prediction{}, fmt.Errorf("traveltime: rstt predict %s: %w", phase, err)
		}
		if ok {
			return Prediction{
				TT: rp.TT, DtDDelta: rp.DtDDelta, DtDh: rp.DtDh,
				RSTTPickErr:  rp.PickErr,
				RSTTTotalErr: math.Hypot(rp.PickErr, rp.ModelErr),
				FromRSTT:     true,
			}, nil
		}
	}

	table, ok := ctx.Global[phase]
	if !ok {
		return Prediction{}, fmt.Errorf("%w: no global table for phase %q", ErrTableMiss, phase)
	}
	return predictFromTable(table, ctx, q)
}

func predictFromTable(table *Table, ctx *Context, q Query) (Prediction, error) {
	ttVal, dDeltaVal, d2DeltaVal, err := table.valueAt(table.Time, q.Delta, q.Depth)
	if err != nil {
		return Prediction{}, err
	}

	dh, _, _, errH := table.valueAt(table.DtDh, q.Delta, q.Depth)
	if errH != nil {
		dh = 0 // dT/dh grid may be unavailable for some tables; not fatal.
	}

	pr := Prediction{TT: ttVal, DtDDelta: dDeltaVal, D2tDDelta2: d2DeltaVal, DtDh: dh}

	colat := 90 - q.Lat
	if e, ok := ctx.Ellip[table.Phase]; ok {
		corr, eerr := e.Correction(q.Delta, q.Depth, colat, q.ESAZ)
		if eerr == nil {
			pr.TT += corr
		}
	}

	elevCorr := elevationCorrection(pr.DtDDelta, q.StationElevM/1000, IsPType(table.Phase))
	pr.TT += elevCorr

	if table.Bounce || IsDepthPhaseName(table.Phase) {
		bp, _, _, berr := table.valueAt(table.BouncePointDelta, q.Delta, q.Depth)
		if berr == nil {
			pr.BouncePointDelta = bp
			bearing := q.ESAZ
			if pr.DtDDelta < 0 {
				bearing = math.Mod(bearing+180, 360)
			}
			bouncePt := geo.PointAtDeltaAzimuth(geo.Point{Lat: q.Lat, Lon: q.Lon}, bp, bearing)
			if elevM, ok := ctx.Bathymetry.ElevationM(bouncePt.Lat, bouncePt.Lon); ok {
				pr.TT += bounceCorrection(pr.DtDDelta, elevM/1000, table.Phase)
			}
		}
	}

	return pr, nil
}

// elevationCorrection is the station-elevation slant-path term (§4.2
// step 3): elevKm * sqrt(1/v^2 - p^2), p the ray parameter in s/km.
func elevationCorrection(dtddSecPerDeg, elevKm float64, isP bool) float64 {
	if elevKm == 0 {
		return 0
	}
	v := surfaceVelocityKmS(isP)
	p := dtddSecPerDeg / geo.DeltaToKm(1)
	term := 1/(v*v) - p*p
	if term < 0 {
		term = 0
	}
	return elevKm * math.Sqrt(term)
}

// bounceCorrection applies the bathymetric/topographic correction at a
// depth-phase bounce point (§4.2 step 4), plus an extra water-column term
// for pwP.
func bounceCorrection(dtddSecPerDeg, elevKm float64, phase string) float64 {
	isP := IsPType(phase)
	corr := elevationCorrection(dtddSecPerDeg, -elevKm, isP) // reflection: elevation above sea level shortens the path
	if phase == "pwP" && elevKm < 0 {
		p := dtddSecPerDeg / geo.DeltaToKm(1)
		term := 1/(waterVelocityKmS*waterVelocityKmS) - p*p
		if term < 0 {
			term = 0
		}
		corr += -elevKm * math.Sqrt(term)
	}
	return corr
}
