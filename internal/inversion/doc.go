// Package inversion implements the Gauss-Newton hypocentre inversion
// kernel of SPEC_FULL.md §4.6: Jacobian construction, correlated-error
// whitening via a truncated-SVD block projector, damped pseudoinverse
// updates, bounds enforcement, and the convergence/divergence state
// machine.
package inversion
