// Package model holds the shared data model of SPEC_FULL.md §3: the
// entities the locator reads, mutates, and produces. It is intentionally
// free of any I/O — readers/writers are external collaborators (§6).
package model

import "time"

// DepthType records which option in the §4.9 fallback ladder produced the
// solution's depth.
type DepthType string

const (
	DepthFree    DepthType = "F" // free-depth inversion converged
	DepthGrid    DepthType = "G" // default-depth-grid cell
	DepthRegion  DepthType = "R" // Flinn-Engdahl region default
	DepthHypo    DepthType = "H" // a reported hypocentre's depth
	DepthMedian  DepthType = "M" // median of reported depths
	DepthSurface DepthType = "S" // anthropogenic event, forced to 0 km
)

// Event is the top-level unit of work: one earthquake (or anthropogenic
// event) with its reported hypocentres, readings, and phases.
type Event struct {
	ID string

	// EType is the two-character event-type code; its second character
	// (n,x,m,q,r,h,s,i) marks an anthropogenic event (SPEC_FULL.md §12).
	EType string

	ReportedHypocenterCount int
	PhaseCount              int
	ReadingCount            int
	StationCount            int

	FixedDepth      bool
	FixedEpicenter  bool
	FixedOriginTime bool
	FixedHypocenter bool
	FixedSurface    bool // anthropogenic surface fix

	// TrustedAgency, when non-empty, names the agency whose own reported
	// hypocentre overrides the cross-agency median seed (SPEC_FULL.md §12).
	TrustedAgency string
	// RejectAgencies lists agencies excluded from the seed computation
	// (config DoNotUseAgencies).
	RejectAgencies map[string]bool
}

// IsAnthropogenic reports whether the event's type forces a surface fix.
func (e *Event) IsAnthropogenic() bool {
	if len(e.EType) < 2 {
		return false
	}
	switch e.EType[1] {
	case 'n', 'x', 'm', 'q', 'r', 'h', 's', 'i':
		return true
	}
	return false
}

// CheckInvariants enforces the Event row from the §3 data-model table:
// FixedHypocenter implies the other three fix flags.
func (e *Event) CheckInvariants() error {
	if e.FixedHypocenter && !(e.FixedDepth && e.FixedEpicenter && e.FixedOriginTime) {
		return errInvariant("FixedHypocenter requires FixedDepth, FixedEpicenter and FixedOriginTime")
	}
	return nil
}

type invariantError string

func (e invariantError) Error() string { return string(e) }

func errInvariant(msg string) error { return invariantError(msg) }

// Hypocentre is one agency-reported starting/candidate hypocentre.
type Hypocentre struct {
	ID       string
	Agency   string
	Time     time.Time // origin time
	Lat      float64   // geographic latitude, degrees
	Lon      float64   // geographic longitude, degrees
	Depth    float64   // km
	HasDepth bool
	Ignore   bool

	// Uncertainty descriptors as reported (not recomputed by this package).
	TimeError  float64
	SMajAxis   float64
	SMinAxis   float64
	Strike     float64
	DepthError float64
}

// MaxHypocenterDepth is the maximum permissible depth (km), used to bound
// depth both in the Jacobian update (§4.6) and the depth-phase stack axis
// (§4.8). It is a fixed constant; Config has no option for it.
const MaxHypocenterDepth = 700.0

// ValidDepth reports whether d falls in the permitted depth range.
func ValidDepth(d float64) bool { return d >= 0 && d <= MaxHypocenterDepth }
