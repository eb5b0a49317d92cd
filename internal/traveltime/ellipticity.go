package traveltime

import (
	"fmt"
	"math"

	"github.com/quakelocate/iloc-go/internal/geo"
)

// EllipticityTable holds the tau0/tau1/tau2 ellipticity coefficients for
// one phase over distance x 6 fixed depths (§3's "Ellipticity-coef table").
type EllipticityTable struct {
	Phase     string
	Distances []float64
	Depths    [6]float64
	Tau0      [][]float64 // [distanceIdx][depthIdx]
	Tau1      [][]float64
	Tau2      [][]float64
}

// Correction returns the ellipticity time correction (seconds) to add to a
// spherical travel time (§4.2 step 2):
//
//	tau0 + tau1*cos(colatitude) + tau2*sin(colatitude)*cos(ESAZ)
//
// colatDeg is the event's geocentric colatitude (90 - lat); esazDeg is the
// event-to-station azimuth.
func (e *EllipticityTable) Correction(delta, depth, colatDeg, esazDeg float64) (float64, error) {
	tau0, err := e.interp(e.Tau0, delta, depth)
	if err != nil {
		return 0, err
	}
	tau1, err := e.interp(e.Tau1, delta, depth)
	if err != nil {
		return 0, err
	}
	tau2, err := e.interp(e.Tau2, delta, depth)
	if err != nil {
		return 0, err
	}

	colat := colatDeg * math.Pi / 180
	esaz := esazDeg * math.Pi / 180
	return tau0 + tau1*math.Cos(colat) + tau2*math.Sin(colat)*math.Cos(esaz), nil
}

func (e *EllipticityTable) interp(grid [][]float64, delta, depth float64) (float64, error) {
	if len(grid) != len(e.Distances) {
		return 0, fmt.Errorf("traveltime: ellipticity table %s grid shape mismatch", e.Phase)
	}
	depths := e.Depths[:]
	return geo.Bilinear(e.Distances, depths, grid, delta, depth)
}
