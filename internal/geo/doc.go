// Package geo implements the geodesy and interpolation primitives of
// SPEC_FULL.md §4.1: geocentric distance/azimuth on the WGS-84 spheroid,
// the forward point-at-range-bearing projection, natural cubic splines,
// bilinear grid interpolation, and array bracketing. Every function here
// is pure — no package state, no I/O.
package geo
