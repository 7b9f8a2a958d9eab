// Package approx provides fast approximation models for expensive
// transforms: a least-squares polynomial fit of a projection's forward
// transform over a window, and a per-scan-row spline model of swath
// geolocation.
package approx

import (
	"errors"
	"fmt"
	"math"

	"github.com/mvetter/swathgrid/internal/numeric"
	"github.com/mvetter/swathgrid/internal/proj"
)

// Window is the lat/lon region a model is fitted over.
type Window struct {
	LatMin, LatMax float64
	LonMin, LonMax float64
}

func (w Window) validate() error {
	if w.LatMin >= w.LatMax || w.LonMin >= w.LonMax {
		return fmt.Errorf("approx: degenerate window [%g,%g]x[%g,%g]",
			w.LatMin, w.LatMax, w.LonMin, w.LonMax)
	}
	return nil
}

// PolyModel approximates a projection's forward transform with a pair of
// bivariate polynomials over a fitted window. Inputs are normalized to
// [-1, 1] over the window before evaluation, so the coefficients stay well
// conditioned across windows of any size.
type PolyModel struct {
	degree int
	window Window

	cx, cy []float64 // monomial coefficients, degree-graded order

	// RMS residuals of the fit against the sampled transform, in km.
	RMSX, RMSY float64
}

// terms returns the monomial count for total degree d.
func terms(d int) int { return (d + 1) * (d + 2) / 2 }

// FitPoly samples the projection's forward transform on a regular lattice
// over the window and fits total-degree polynomials for x and y by SVD
// least squares. Sample points outside the projection domain are skipped;
// the fit needs at least as many surviving samples as coefficients. A
// non-converged SVD is reported as an error; the polynomial from the
// partial decomposition is not trustworthy.
func FitPoly(p *proj.Projection, w Window, degree, samples int) (*PolyModel, error) {
	if err := w.validate(); err != nil {
		return nil, err
	}
	if degree < 1 {
		return nil, fmt.Errorf("approx: degree %d must be at least 1", degree)
	}
	n := terms(degree)
	if samples < degree+2 {
		samples = degree + 2
	}

	m := &PolyModel{degree: degree, window: w}
	var rows [][]float64
	var bx, by []float64
	for i := 0; i < samples; i++ {
		lat := w.LatMin + (w.LatMax-w.LatMin)*float64(i)/float64(samples-1)
		for j := 0; j < samples; j++ {
			lon := w.LonMin + (w.LonMax-w.LonMin)*float64(j)/float64(samples-1)
			x, y, err := p.Forward(lat, lon)
			if err != nil {
				continue
			}
			u, v := m.normalize(lat, lon)
			rows = append(rows, monomials(u, v, degree))
			bx = append(bx, x)
			by = append(by, y)
		}
	}
	if len(rows) < n {
		return nil, fmt.Errorf("approx: %d usable samples for %d coefficients", len(rows), n)
	}

	u, wvals, v, err := numeric.SVD(rows)
	if err != nil {
		return nil, fmt.Errorf("approx: %w", err)
	}
	if m.cx, err = numeric.SVDSolve(u, wvals, v, bx, 0); err != nil {
		return nil, err
	}
	if m.cy, err = numeric.SVDSolve(u, wvals, v, by, 0); err != nil {
		return nil, err
	}

	m.RMSX = residual(rows, m.cx, bx)
	m.RMSY = residual(rows, m.cy, by)
	return m, nil
}

func residual(rows [][]float64, c, b []float64) float64 {
	var ss float64
	for i, row := range rows {
		var fit float64
		for j, cj := range c {
			fit += cj * row[j]
		}
		d := fit - b[i]
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(rows)))
}

func (m *PolyModel) normalize(lat, lon float64) (u, v float64) {
	u = (2*lat - m.window.LatMin - m.window.LatMax) / (m.window.LatMax - m.window.LatMin)
	v = (2*lon - m.window.LonMin - m.window.LonMax) / (m.window.LonMax - m.window.LonMin)
	return u, v
}

// monomials lists u^i * v^j for i+j <= degree in degree-graded order,
// building each power from the previous one.
func monomials(u, v float64, degree int) []float64 {
	out := make([]float64, 0, terms(degree))
	up := make([]float64, degree+1)
	vp := make([]float64, degree+1)
	up[0], vp[0] = 1, 1
	for k := 1; k <= degree; k++ {
		up[k] = up[k-1] * u
		vp[k] = vp[k-1] * v
	}
	for d := 0; d <= degree; d++ {
		for i := d; i >= 0; i-- {
			out = append(out, up[i]*vp[d-i])
		}
	}
	return out
}

// Forward evaluates the fitted model. Points outside the fitted window are
// an extrapolation error.
func (m *PolyModel) Forward(lat, lon float64) (x, y float64, err error) {
	if lat < m.window.LatMin || lat > m.window.LatMax ||
		lon < m.window.LonMin || lon > m.window.LonMax {
		return 0, 0, errors.New("approx: point outside fitted window")
	}
	u, v := m.normalize(lat, lon)
	basis := monomials(u, v, m.degree)
	for i, b := range basis {
		x += m.cx[i] * b
		y += m.cy[i] * b
	}
	return x, y, nil
}

// Degree returns the fitted polynomial degree.
func (m *PolyModel) Degree() int { return m.degree }
