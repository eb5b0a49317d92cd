package geo

import "fmt"

// Spline is a precomputed natural cubic spline over monotone increasing
// x samples (§4.1). Prepare once, Eval many times.
type Spline struct {
	x, y []float64
	y2   []float64 // second derivatives at each sample
}

// PrepareSpline computes the natural-boundary (y''=0 at both ends) cubic
// spline coefficients for x (strictly increasing) and y (same length).
func PrepareSpline(x, y []float64) (*Spline, error) {
	n := len(x)
	if n != len(y) {
		return nil, fmt.Errorf("geo: spline x/y length mismatch (%d vs %d)", n, len(y))
	}
	if n < 2 {
		return nil, fmt.Errorf("geo: spline needs at least 2 samples, got %d", n)
	}
	for i := 1; i < n; i++ {
		if x[i] <= x[i-1] {
			return nil, fmt.Errorf("geo: spline x must be strictly increasing at index %d", i)
		}
	}

	y2 := make([]float64, n)
	u := make([]float64, n)
	// Natural boundary conditions.
	y2[0], u[0] = 0, 0
	for i := 1; i < n-1; i++ {
		sig := (x[i] - x[i-1]) / (x[i+1] - x[i-1])
		p := sig*y2[i-1] + 2
		y2[i] = (sig - 1) / p
		d := (y[i+1]-y[i])/(x[i+1]-x[i]) - (y[i]-y[i-1])/(x[i]-x[i-1])
		u[i] = (6*d/(x[i+1]-x[i-1]) - sig*u[i-1]) / p
	}
	y2[n-1] = 0
	for k := n - 2; k >= 0; k-- {
		y2[k] = y2[k]*y2[k+1] + u[k]
	}

	return &Spline{x: append([]float64(nil), x...), y: append([]float64(nil), y...), y2: y2}, nil
}

// Eval returns the spline value and its first and second derivatives at
// xq. xq outside [x[0],
// x[n-1]] is still evaluated by extrapolating the end-interval cubic.
func (s *Spline) Eval(xq float64) (yq, dy, d2y float64) {
	i, j := BracketFloat(s.x, xq)
	h := s.x[j] - s.x[i]
	a := (s.x[j] - xq) / h
	b := (xq - s.x[i]) / h

	yq = a*s.y[i] + b*s.y[j] +
		((a*a*a-a)*s.y2[i]+(b*b*b-b)*s.y2[j])*(h*h)/6

	dy = (s.y[j]-s.y[i])/h - (3*a*a-1)*h*s.y2[i]/6 + (3*b*b-1)*h*s.y2[j]/6

	d2y = a*s.y2[i] + b*s.y2[j]

	return yq, dy, d2y
}

// Samples exposes the raw sample arrays the spline was prepared from.
func (s *Spline) Samples() (x, y []float64) { return s.x, s.y }
