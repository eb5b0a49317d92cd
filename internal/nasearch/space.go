package nasearch

import "fmt"

// Axis indexes one of the four hypocentral dimensions the NA search can
// range over (§3's "NA search space" entity).
type Axis int

const (
	AxisOT Axis = iota
	AxisLat
	AxisLon
	AxisDepth
	numAxes
)

// Space is the axis-aligned search box of §4.7: a centre point plus
// per-axis absolute ranges, restricted to the dimensions left free by the
// event's fix flags. `nd = 4 - (otfix + epifix*2 + depfix)`.
type Space struct {
	Active []Axis
	Center [4]float64 // ot(offset sec), lat, lon, depth
	Lo, Hi [4]float64 // absolute bounds, meaningful only for active axes
	LpNorm float64
}

// NewSpace builds the search space from the event's fix flags, a centre
// point, and per-axis radii (NAsearchOT/NAsearchRadius/NAsearchDepth).
// Latitude/longitude share the single NAsearchRadius value, converted to a
// degree box around the centre.
func NewSpace(fixedOT, fixedEpi, fixedDepth bool, centerOTSec, centerLat, centerLon, centerDepth float64, radiusOTSec, radiusDeg, radiusDepthKm, lpNorm float64) *Space {
	s := &Space{
		Center: [4]float64{centerOTSec, centerLat, centerLon, centerDepth},
		LpNorm: lpNorm,
	}
	radius := [4]float64{radiusOTSec, radiusDeg, radiusDeg, radiusDepthKm}
	fixed := [4]bool{fixedOT, fixedEpi, fixedEpi, fixedDepth}
	for a := Axis(0); a < numAxes; a++ {
		if fixed[a] {
			s.Lo[a], s.Hi[a] = s.Center[a], s.Center[a]
			continue
		}
		s.Active = append(s.Active, a)
		s.Lo[a] = s.Center[a] - radius[a]
		s.Hi[a] = s.Center[a] + radius[a]
	}
	return s
}

// Nd is the search space's dimensionality (1-4).
func (s *Space) Nd() int { return len(s.Active) }

// normalize maps an absolute point to [0,1]^nd over the active axes, in
// Active order.
func (s *Space) normalize(abs [4]float64) []float64 {
	u := make([]float64, len(s.Active))
	for i, a := range s.Active {
		span := s.Hi[a] - s.Lo[a]
		if span <= 0 {
			u[i] = 0.5
			continue
		}
		u[i] = (abs[a] - s.Lo[a]) / span
	}
	return u
}

// denormalize maps a [0,1]^nd point back to an absolute 4-vector, filling
// fixed axes with the space's centre value.
func (s *Space) denormalize(u []float64) [4]float64 {
	abs := s.Center
	for i, a := range s.Active {
		abs[a] = s.Lo[a] + u[i]*(s.Hi[a]-s.Lo[a])
	}
	return abs
}

// Validate reports whether the space has at least one free dimension and
// non-degenerate ranges for each.
func (s *Space) Validate() error {
	if len(s.Active) == 0 {
		return fmt.Errorf("nasearch: search space has no free dimensions")
	}
	for _, a := range s.Active {
		if s.Hi[a] <= s.Lo[a] {
			return fmt.Errorf("nasearch: axis %d has non-positive range", a)
		}
	}
	return nil
}
