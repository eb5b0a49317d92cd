// Package traveltime implements the travel-time engine of SPEC_FULL.md §4.2:
// a global tabulated model (phase-indexed 2-D tables over distance and
// depth), ellipticity/elevation/bounce-point corrections, an optional local
// 1-D layered model synthesized by Earth-flattening + regula-falsi ray
// shooting, and an optional RSTT regional-model collaborator.
package traveltime
