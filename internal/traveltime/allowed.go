package traveltime

// localAllowedPhases is the set of phases synthesized from a local 1-D
// velocity model (§4.2 step 5): Pg/Pb/Pn/Sg/Sb/Sn/Lg (Lg aliased to Sg).
var localAllowedPhases = map[string]bool{
	"Pg": true, "Pb": true, "Pn": true,
	"Sg": true, "Sb": true, "Sn": true, "Lg": true,
}

// IsLocalAllowed reports whether phase may be redirected to the locally
// synthesized tables.
func IsLocalAllowed(phase string) bool { return localAllowedPhases[phase] }

// surfaceVelocityKmS returns the Pg/Sg surface velocity used for the
// station-elevation slant-path correction (§4.2 step 3); it is a property
// of the global model's uppermost crust, not of any one station.
func surfaceVelocityKmS(phaseIsP bool) float64 {
	if phaseIsP {
		return 5.8 // Pg
	}
	return 3.46 // Sg
}

// waterVelocityKmS is the sound speed used for the pwP water-column
// correction (§4.2 step 4).
const waterVelocityKmS = 1.5

// IsPType / IsSType classify a canonical phase name by its leading ray
// type, ignoring depth-phase case and common prefixes (pP/sP/etc).
func IsPType(phase string) bool {
	for _, c := range phase {
		switch c {
		case 'P', 'p':
			return true
		case 'S', 's':
			return false
		}
	}
	return false
}

func IsSType(phase string) bool { return !IsPType(phase) }
