// Package depthphase implements the §4.8 depth-phase stacking estimator:
// for every reading with a defining first-P and at least one defining
// depth phase, it builds a station trace of TT_dp(h)-TT_P(h) moveout
// against depth and stacks the traces over the network to obtain a
// robust focal-depth estimate independent of the inversion kernel.
package depthphase
