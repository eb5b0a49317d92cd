package inversion

// State is the inversion kernel's public state (§4.6's closing
// paragraph). Converged is the only terminal success state.
type State string

const (
	Initializing  State = "Initializing"
	Iterating     State = "Iterating"
	Damping       State = "Damping"
	Converged     State = "Converged"
	Diverging     State = "Diverging"
	PhaseLoss     State = "PhaseLoss"
	IllConditioned State = "IllConditioned"
	DepthClamped  State = "DepthClamped"
)
