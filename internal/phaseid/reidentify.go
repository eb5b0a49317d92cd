package phaseid

import "math"

// ShouldReidentify reports whether the locator driver must rerun Run
// between inversion iterations (§4.3's "Reidentification between
// iterations" clause): the depth crossed the Conrad or Moho discontinuity,
// or the epicentre moved more than epiwalkKm since the last identification
// pass.
func ShouldReidentify(prevDepth, newDepth, conradDepth, mohoDepth float64, epicentreMovedKm, epiwalkKm float64) bool {
	if crossedDiscontinuity(prevDepth, newDepth, conradDepth) {
		return true
	}
	if crossedDiscontinuity(prevDepth, newDepth, mohoDepth) {
		return true
	}
	return epicentreMovedKm > epiwalkKm
}

func crossedDiscontinuity(prevDepth, newDepth, discontinuity float64) bool {
	if discontinuity <= 0 {
		return false
	}
	return math.Signbit(prevDepth-discontinuity) != math.Signbit(newDepth-discontinuity)
}
