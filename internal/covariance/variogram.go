package covariance

import (
	"fmt"

	"github.com/quakelocate/iloc-go/internal/geo"
)

// Variogram is a generic distance -> semivariance function (§3's
// "Variogram" entity, glossary "Variogram"): gamma(d), monotone
// non-decreasing and bounded by Sill for d <= MaxSep.
type Variogram struct {
	Distances []float64
	Gammas    []float64
	Sill      float64
	MaxSep    float64

	spline *geo.Spline
}

// NewVariogram validates and prepares a Variogram from (distance, gamma)
// samples loaded by the aux-data reader.
func NewVariogram(distances, gammas []float64, sill, maxSep float64) (*Variogram, error) {
	if len(distances) != len(gammas) {
		return nil, fmt.Errorf("covariance: variogram distance/gamma length mismatch")
	}
	if len(distances) < 2 {
		return nil, fmt.Errorf("covariance: variogram needs at least 2 samples")
	}
	for i, d := range distances {
		if d <= maxSep+1e-9 && gammas[i] > sill+1e-9 {
			return nil, fmt.Errorf("covariance: variogram sample %d exceeds sill within range", i)
		}
		if i > 0 && gammas[i] < gammas[i-1]-1e-9 {
			return nil, fmt.Errorf("covariance: variogram gamma must be monotone non-decreasing at sample %d", i)
		}
	}
	sp, err := geo.PrepareSpline(distances, gammas)
	if err != nil {
		return nil, fmt.Errorf("covariance: variogram spline: %w", err)
	}
	return &Variogram{Distances: distances, Gammas: gammas, Sill: sill, MaxSep: maxSep, spline: sp}, nil
}

// Gamma interpolates the semivariance at distance d (km), clamped to the
// sample domain.
func (v *Variogram) Gamma(d float64) float64 {
	if d <= v.Distances[0] {
		return v.Gammas[0]
	}
	if d >= v.Distances[len(v.Distances)-1] {
		return v.Gammas[len(v.Gammas)-1]
	}
	y, _, _ := v.spline.Eval(d)
	return y
}
