// Package locator is the §4.10 driver: it wires phase identification, data
// covariance, the Neighbourhood Algorithm search, the Gauss-Newton
// inversion kernel, the depth-phase stack and the network quality metrics
// into the single public Locate entry point. Every other internal package
// is an independent leaf; this is the only package that imports them all.
package locator
