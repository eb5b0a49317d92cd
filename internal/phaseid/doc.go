// Package phaseid implements the phase identifier and duplicate resolver
// of SPEC_FULL.md §4.3-§4.4: mapping reported labels to canonical IASPEI
// phase names, searching the allowable-candidate lists for the
// best-fitting label against the travel-time engine, and merging
// near-simultaneous picks at a station.
package phaseid
