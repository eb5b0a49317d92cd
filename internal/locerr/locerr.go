// Package locerr defines the sentinel error kinds the locator surfaces to
// its caller (SPEC_FULL.md §7). Each stage wraps one of these with fmt.Errorf
// and %w so callers can use errors.Is without caring which stage produced it.
package locerr

import "errors"

var (
	// ErrUnknown covers failures that do not fit any other kind.
	ErrUnknown = errors.New("unknown locator error")
	// ErrAllocationFailed is surfaced when a required buffer could not be sized.
	ErrAllocationFailed = errors.New("allocation failed")
	// ErrFileOpenFailed is surfaced by aux-data loaders.
	ErrFileOpenFailed = errors.New("file open failed")
	// ErrBadInstruction marks a malformed configuration or option request.
	ErrBadInstruction = errors.New("bad instruction")
	// ErrDiverging marks an inversion that failed the divergence test.
	ErrDiverging = errors.New("diverging")
	// ErrInsufficientPhases marks ndef below MinNdefPhases.
	ErrInsufficientPhases = errors.New("insufficient phases")
	// ErrInsufficientIndependentPhases marks a rank-deficient defining set.
	ErrInsufficientIndependentPhases = errors.New("insufficient independent phases")
	// ErrPhaseLoss marks ndef dropping below max(MinNdefPhases, m) mid-iteration.
	ErrPhaseLoss = errors.New("phase loss")
	// ErrSlowConvergence marks MaxIterations exhausted without convergence.
	ErrSlowConvergence = errors.New("slow convergence")
	// ErrSingularJacobian marks a Jacobian with no usable singular values.
	ErrSingularJacobian = errors.New("singular jacobian")
	// ErrIllConditioned marks a rank-deficient-beyond-recovery system.
	ErrIllConditioned = errors.New("ill conditioned")
	// ErrInvalidStation marks a phase referencing an unresolvable station.
	ErrInvalidStation = errors.New("invalid station")

	// ErrPredictFailed marks a travel-time table miss (§4.2); callers
	// downgrade the phase to non-defining rather than propagate it.
	ErrPredictFailed = errors.New("travel-time prediction failed")
)
