package model

import "time"

// ErrorEllipse is the horizontal 90%-style confidence ellipse derived from
// the (lat, lon) 2x2 block of the model covariance (§4.6 step 7).
type ErrorEllipse struct {
	SemiMajorKm float64
	SemiMinorKm float64
	StrikeDeg   float64 // azimuth of the semi-major axis, degrees from north
}

// Magnitude is a placeholder for the external magnitude collaborator (§6);
// the locator only reserves the slot in Solution.
type Magnitude struct {
	Type   string // mb, Ms, ML, mB, ...
	Value  float64
	Error  float64
	NumObs int
}

// QualityMetrics holds the per-aperture-band network geometry metrics of
// §4.11, keyed by band name ("local", "near-regional", "teleseismic", "full").
type QualityMetrics struct {
	PrimaryGapDeg   float64
	SecondaryGapDeg float64
	DU              float64
	Ndef            int
	MinDistDeg      float64
	MaxDistDeg      float64
}

// Solution is the locator's output for one event (§3).
type Solution struct {
	Converged bool
	Diverging bool

	OriginTime time.Time
	Lat        float64
	Lon        float64
	Depth      float64

	// Covariance is the 4x4 model covariance (time, lat, lon, depth); rows
	// and columns for fixed parameters are left zeroed ("null").
	Covariance [4][4]float64
	AxisErrorSec   float64
	AxisErrorKmLat float64
	AxisErrorKmLon float64
	AxisErrorKmDepth float64

	ErrorEllipse ErrorEllipse

	RMSWeighted   float64
	RMSUnweighted float64
	Sdobs         float64 // urms * sqrt(N / (N - M))

	Ndef  int // number of defining observations
	M     int // number of free parameters
	Prank int // rank retained in the model covariance

	DepthFixed bool
	DepthType  DepthType

	// Depth-phase-stack outputs (§4.8); DepDpValid is false when ndp < 3.
	DepDp      float64
	DepDpError float64
	Ndp        int
	DepDpValid bool

	Quality map[string]QualityMetrics
	GT5Candidate bool

	Magnitudes []Magnitude

	ConfidenceLevel float64 // e.g. 0.90
}
