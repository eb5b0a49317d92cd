package model

import "time"

// ObservationClass indexes the three blocks of the joint residual vector
// used throughout the covariance builder and inversion kernel (§4.5, §4.6).
type ObservationClass int

const (
	ClassTime ObservationClass = iota
	ClassAzimuth
	ClassSlowness
	numObservationClasses
)

// NumObservationClasses is the fixed width of the covariance block
// structure (time, azimuth, slowness).
const NumObservationClasses = int(numObservationClasses)

// Phase is a single reported arrival-time/azimuth/slowness observation,
// the core unit both the phase identifier and the inversion kernel operate
// on (§3).
type Phase struct {
	ReadingID int
	StationID string // primary station code

	// Geodesics, event-centric.
	Delta float64 // degrees
	ESAZ  float64 // event-to-station azimuth, degrees
	SEAZ  float64 // station-to-event azimuth, degrees

	ReportedPhase  string // as submitted, before identification
	Phase          string // current canonical label
	PreviousPhase  string // canonical label before the last reidentification pass
	FixedLabel     bool   // DoNotRenamePhase: label excluded from the candidate search
	DoNotRename    bool   // analyst flag, see SPEC_FULL.md §12

	ArrivalTime time.Time
	Azimuth     float64 // observed azimuth, degrees
	Slowness    float64 // observed horizontal slowness, s/deg

	// Residuals, set by the inversion kernel / phase identifier each pass.
	TimeResidual     float64
	AzimuthResidual  float64
	SlownessResidual float64

	// Defining flags: whether this observation participates in the
	// corresponding block of the inversion.
	TimeDefining     bool
	AzimuthDefining  bool
	SlownessDefining bool

	// Prior measurement sigma, looked up from the phase-weight table.
	SigmaTime     float64
	SigmaAzimuth  float64
	SigmaSlowness float64

	Duplicate bool
	FirstP    bool
	FirstS    bool

	// Depth-phase pointers: indices into the reading's phase slice, -1 if absent.
	PPIndex  int
	PwPIndex int
	PSIndex  int
	SPIndex  int
	SSIndex  int

	// Row indices into the data covariance, per observation class; -1 when
	// the phase is non-defining in that class.
	CovRow [NumObservationClasses]int

	// Predicted travel time and its partial derivatives, cached from the
	// most recent travel-time call.
	PredictedTT   float64
	DtDDelta      float64 // s/deg
	DtDh          float64 // s/km
	D2tDDelta2    float64
	D2tDh2        float64
	BouncePointDelta float64

	// RSTT error terms, populated only when the RSTT collaborator supplied
	// the prediction (SPEC_FULL.md §11).
	RSTTModelErr float64
	RSTTPickErr  float64
	RSTTTotalErr float64

	Analysts NonDefiningReason
}

// NonDefiningReason records why a phase is currently non-defining, purely
// for diagnostics; it never drives control flow.
type NonDefiningReason string

const (
	ReasonNone             NonDefiningReason = ""
	ReasonResidualExceeded NonDefiningReason = "residual-exceeded-threshold"
	ReasonAnalystForced    NonDefiningReason = "analyst-forced-nondefining"
	ReasonPredictFailed    NonDefiningReason = "predict-failed"
	ReasonDuplicate        NonDefiningReason = "duplicate"
	ReasonUnidentified     NonDefiningReason = "unidentified"
)

// IsDepthPhase reports whether name is a depth phase (first letter
// lower-case, e.g. pP, pwP, pS, sP, sS) per the glossary.
func IsDepthPhase(name string) bool {
	if name == "" {
		return false
	}
	c := name[0]
	return c >= 'a' && c <= 'z'
}

// Reading groups all phase picks submitted by one agency at one station
// for one event; Phases is a half-open [Start, Start+Count) window into
// the event's flat phase slice.
type Reading struct {
	ID         int
	StationID  string
	AgencyCode string
	Start      int
	Count      int
}
