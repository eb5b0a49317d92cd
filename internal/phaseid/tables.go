package phaseid

import "github.com/quakelocate/iloc-go/internal/traveltime"

// Tables bundles the auxiliary phase lists the identifier consults: the
// reported-to-canonical label map, the allowable-candidate lists per
// first-arrival type, and the PP/SS/PS/SP split extensions (§4.3 step 3).
type Tables struct {
	// LabelMap maps a reported label to its canonical IASPEI label.
	// Labels absent from the map fall through to the amplitude/period
	// heuristic in mapReportedLabel.
	LabelMap map[string]string

	// AllowableFirstP / AllowableFirstS are the phases a reading's
	// earliest time-defining pick may be identified as.
	AllowableFirstP []string
	AllowableFirstS []string

	// OptionalFirstP / OptionalFirstS extend the above when the engine
	// allows a wider first-arrival search (§4.3 step 3).
	OptionalFirstP []string
	OptionalFirstS []string

	// Candidates lists every phase name the search tries for a
	// non-first, non-fixed pick.
	Candidates []string

	// SplitExtensions maps a reported depth-phase-pair label (PP, SS,
	// PS, SP) to its regional-distance counterparts (Pn/Pb/Pg etc), the
	// "temporarily extended list" of §4.3 step 3.
	SplitExtensions map[string][]string
}

// DefaultTables returns the standard IASPEI label set used when no
// site-specific override is configured; it is grounded on the iLoc
// reference phase list carried into SPEC_FULL.md §12.
func DefaultTables() *Tables {
	return &Tables{
		LabelMap: map[string]string{
			"P":   "P",
			"PKP": "PKP",
			"PKIKP": "PKIKP",
			"PKiKP": "PKiKP",
			"Pg":  "Pg",
			"Pb":  "Pb",
			"Pn":  "Pn",
			"S":   "S",
			"Sg":  "Sg",
			"Sb":  "Sb",
			"Sn":  "Sn",
			"Lg":  "Lg",
			"pP":  "pP",
			"sP":  "sP",
			"pwP": "pwP",
			"pS":  "pS",
			"sS":  "sS",
			"PP":  "PP",
			"SS":  "SS",
			"PS":  "PS",
			"SP":  "SP",
		},
		AllowableFirstP: []string{"P", "Pn", "Pg", "Pb", "PKP", "PKIKP", "PKiKP"},
		AllowableFirstS: []string{"S", "Sn", "Sg", "Sb", "Lg"},
		OptionalFirstP:  []string{"Pdiff"},
		OptionalFirstS:  []string{"Sdiff"},
		Candidates: []string{
			"P", "Pn", "Pg", "Pb", "PKP", "PKIKP", "PKiKP",
			"S", "Sn", "Sg", "Sb", "Lg",
			"pP", "sP", "pwP", "pS", "sS",
			"PP", "SS", "PS", "SP",
		},
		SplitExtensions: map[string][]string{
			"PP": {"Pn", "Pb", "Pg"},
			"SS": {"Sn", "Sb", "Sg"},
			"PS": {"Pn", "Pb", "Pg"},
			"SP": {"Sn", "Sb", "Sg"},
		},
	}
}

// mapReportedLabel applies §4.3 step 1: a table lookup, falling back to
// the amplitude/period heuristic (AMB/AMS) or a bare "P" default for the
// reading's initial pick.
func (t *Tables) mapReportedLabel(reported string, hasAmplitude bool, periodSec float64, isInitialPick bool) string {
	if canon, ok := t.LabelMap[reported]; ok {
		return canon
	}
	if hasAmplitude {
		if periodSec > 0 && periodSec < 3.0 {
			return "AMB"
		}
		return "AMS"
	}
	if isInitialPick {
		return "P"
	}
	return ""
}

// isPType / isSType delegate to the travel-time engine's classification
// so the identifier and engine agree on ray-type boundaries.
func isPType(phase string) bool { return traveltime.IsPType(phase) }
func isSType(phase string) bool { return traveltime.IsSType(phase) }
func isDepthPhase(phase string) bool { return traveltime.IsDepthPhaseName(phase) }
