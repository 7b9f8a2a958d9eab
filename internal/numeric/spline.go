package numeric

import (
	"fmt"
	"math"
	"sort"
)

// Spline is a natural cubic spline over strictly increasing abscissas.
// In circular mode the ordinates are treated as longitudes in degrees:
// they are unwrapped across the ±180° discontinuity before fitting and
// evaluation results are re-normalized to [-180, 180).
type Spline struct {
	xs, ys []float64 // ys unwrapped when circular
	y2     []float64 // second derivatives at the knots
	dx     float64   // mean knot spacing, for the interval guess

	circular bool
	lastIdx  int // cached interval for repeated nearby queries
}

// NewSpline fits a natural cubic spline through (xs, ys). The abscissas
// must be strictly increasing and at least three points are required.
func NewSpline(xs, ys []float64) (*Spline, error) {
	return newSpline(xs, ys, false)
}

// NewCircularSpline fits a spline through longitude ordinates in degrees,
// linearizing them across the antimeridian before the fit. Eval results
// are normalized back to [-180, 180).
func NewCircularSpline(xs, ys []float64) (*Spline, error) {
	return newSpline(xs, ys, true)
}

func newSpline(xs, ys []float64, circular bool) (*Spline, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("spline: %d abscissas but %d ordinates", len(xs), len(ys))
	}
	if len(xs) < 3 {
		return nil, fmt.Errorf("spline: need at least 3 points, got %d", len(xs))
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return nil, fmt.Errorf("spline: abscissas not strictly increasing at index %d", i)
		}
	}

	sp := &Spline{
		xs:       append([]float64(nil), xs...),
		ys:       append([]float64(nil), ys...),
		y2:       make([]float64, len(xs)),
		circular: circular,
	}
	if circular {
		unwrapDegrees(sp.ys)
	}
	sp.dx = (xs[len(xs)-1] - xs[0]) / float64(len(xs)-1)
	if err := sp.solveY2(); err != nil {
		return nil, err
	}
	return sp, nil
}

// unwrapDegrees removes ±360° jumps so the sequence is continuous.
func unwrapDegrees(vals []float64) {
	offset := 0.0
	for i := 1; i < len(vals); i++ {
		d := vals[i] + offset - vals[i-1]
		switch {
		case d > 180:
			offset -= 360
		case d < -180:
			offset += 360
		}
		vals[i] += offset
	}
}

// solveY2 computes the knot second derivatives with natural boundary
// conditions (zero curvature at both ends) via the tridiagonal solver.
func (sp *Spline) solveY2() error {
	n := len(sp.xs)
	xs, ys := sp.xs, sp.ys
	sp.y2[0], sp.y2[n-1] = 0, 0

	as := make([]float64, n-2)
	bs := make([]float64, n-2)
	cs := make([]float64, n-2)
	rs := make([]float64, n-2)
	for i := range rs {
		j := i + 1
		as[i] = (xs[j] - xs[j-1]) / 6
		bs[i] = (xs[j+1] - xs[j-1]) / 3
		cs[i] = (xs[j+1] - xs[j]) / 6
		rs[i] = (ys[j+1]-ys[j])/(xs[j+1]-xs[j]) - (ys[j]-ys[j-1])/(xs[j]-xs[j-1])
	}
	return TriDiag(as, bs, cs, rs, sp.y2[1:n-1])
}

// Eval evaluates the spline at x, clamping to the end knots outside the
// fitted range.
func (sp *Spline) Eval(x float64) float64 {
	n := len(sp.xs)
	var y float64
	switch {
	case x <= sp.xs[0]:
		y = sp.ys[0]
	case x >= sp.xs[n-1]:
		y = sp.ys[n-1]
	default:
		i := sp.interval(x)
		h := sp.xs[i+1] - sp.xs[i]
		a := (sp.xs[i+1] - x) / h
		b := (x - sp.xs[i]) / h
		y = a*sp.ys[i] + b*sp.ys[i+1] +
			((a*a*a-a)*sp.y2[i]+(b*b*b-b)*sp.y2[i+1])*h*h/6
	}
	if sp.circular {
		y = wrapDegrees(y)
	}
	return y
}

// interval returns i such that xs[i] <= x < xs[i+1]. The previous interval
// and the uniform-spacing guess are tried before binary search.
func (sp *Spline) interval(x float64) int {
	n := len(sp.xs)
	if i := sp.lastIdx; i >= 0 && i < n-1 && sp.xs[i] <= x && x < sp.xs[i+1] {
		return i
	}
	if guess := int((x - sp.xs[0]) / sp.dx); guess >= 0 && guess < n-1 &&
		sp.xs[guess] <= x && x < sp.xs[guess+1] {
		sp.lastIdx = guess
		return guess
	}
	i := sort.Search(n-1, func(j int) bool { return sp.xs[j+1] > x })
	sp.lastIdx = i
	return i
}

// wrapDegrees normalizes an angle in degrees to [-180, 180).
func wrapDegrees(deg float64) float64 {
	deg = math.Mod(deg+180, 360)
	if deg < 0 {
		deg += 360
	}
	return deg - 180
}
