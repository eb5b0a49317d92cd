// Package nasearch implements the §4.7 Neighbourhood-Algorithm grid search:
// a quasi-random initial sample of an axis-aligned (t, φ, λ, h) box followed
// by iterative Voronoi-cell resampling, used to seed the inversion kernel
// when reported hypocentres disagree or are absent.
package nasearch
