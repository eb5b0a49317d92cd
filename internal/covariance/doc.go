// Package covariance builds the data-covariance matrix of SPEC_FULL.md §4.5
// from a station-separation variogram: block-diagonal over the time,
// azimuth and slowness observation classes, and within each class only
// correlated across observations of the same canonical phase name at
// nearby stations.
package covariance
