// Package quality computes the per-network location-quality metrics of
// SPEC_FULL.md §4.11: primary/secondary azimuthal gap, the dU network
// uniformity statistic, and the GT5-candidate flag, over the four aperture
// bands (local, near-regional, teleseismic, full).
package quality
