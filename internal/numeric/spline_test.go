package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpline_PassesThroughKnots(t *testing.T) {
	xs := []float64{0, 1, 2.5, 4, 5}
	ys := []float64{1, -2, 0.5, 3, 3}
	sp, err := NewSpline(xs, ys)
	require.NoError(t, err)

	for i := range xs {
		assert.InDelta(t, ys[i], sp.Eval(xs[i]), 1e-12, "knot %d", i)
	}
}

func TestSpline_ReproducesLine(t *testing.T) {
	// A natural cubic spline through collinear points is that line.
	xs := []float64{0, 1, 2, 3, 4, 5}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = 3*x - 7
	}
	sp, err := NewSpline(xs, ys)
	require.NoError(t, err)

	for x := 0.0; x <= 5.0; x += 0.17 {
		assert.InDelta(t, 3*x-7, sp.Eval(x), 1e-10)
	}
}

func TestSpline_SmoothSine(t *testing.T) {
	n := 41
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i) / float64(n-1) * 2 * math.Pi
		ys[i] = math.Sin(xs[i])
	}
	sp, err := NewSpline(xs, ys)
	require.NoError(t, err)

	for x := 0.3; x < 2*math.Pi; x += 0.31 {
		assert.InDelta(t, math.Sin(x), sp.Eval(x), 1e-4)
	}
}

func TestSpline_ClampsOutsideRange(t *testing.T) {
	sp, err := NewSpline([]float64{0, 1, 2}, []float64{5, 6, 7})
	require.NoError(t, err)

	assert.Equal(t, 5.0, sp.Eval(-10))
	assert.Equal(t, 7.0, sp.Eval(10))
}

func TestSpline_InputValidation(t *testing.T) {
	_, err := NewSpline([]float64{0, 1}, []float64{0, 1})
	assert.Error(t, err, "too few points")

	_, err = NewSpline([]float64{0, 2, 1}, []float64{0, 1, 2})
	assert.Error(t, err, "not increasing")

	_, err = NewSpline([]float64{0, 1, 2}, []float64{0, 1})
	assert.Error(t, err, "length mismatch")
}

func TestCircularSpline_Antimeridian(t *testing.T) {
	// Longitudes marching east across the antimeridian.
	xs := []float64{0, 1, 2, 3, 4}
	lons := []float64{170, 175, -180, -175, -170}
	sp, err := NewCircularSpline(xs, lons)
	require.NoError(t, err)

	// Knots come back normalized to [-180, 180).
	assert.InDelta(t, 175, sp.Eval(1), 1e-9)
	assert.InDelta(t, -180, sp.Eval(2), 1e-9)
	assert.InDelta(t, -175, sp.Eval(3), 1e-9)

	// Midway between 175 and -180 is ±177.5, not their naive mean -2.5.
	mid := sp.Eval(1.5)
	dist := math.Abs(mid - 177.5)
	if dist > 180 {
		dist = 360 - dist
	}
	assert.Less(t, dist, 1.0)
}

func TestCircularSpline_WestwardCrossing(t *testing.T) {
	xs := []float64{0, 1, 2, 3}
	lons := []float64{-170, -178, 176, 168}
	sp, err := NewCircularSpline(xs, lons)
	require.NoError(t, err)

	got := sp.Eval(1.5)
	// Expect roughly the wrapped midpoint of -178 and 176.
	assert.InDelta(t, 179, got, 2.0)
}

func TestTriDiag(t *testing.T) {
	// 3x3 system with known solution x = (1, 2, 3):
	// |2 1 0|         |4|
	// |1 3 1| * x  =  |10|
	// |0 1 2|         |8|
	as := []float64{0, 1, 1}
	bs := []float64{2, 3, 2}
	cs := []float64{1, 1, 0}
	rs := []float64{4, 10, 8}
	out := make([]float64, 3)
	require.NoError(t, TriDiag(as, bs, cs, rs, out))

	assert.InDelta(t, 1, out[0], 1e-12)
	assert.InDelta(t, 2, out[1], 1e-12)
	assert.InDelta(t, 3, out[2], 1e-12)
}

func TestTriDiag_LengthMismatch(t *testing.T) {
	err := TriDiag([]float64{1}, []float64{1, 2}, []float64{1}, []float64{1}, []float64{0})
	assert.Error(t, err)
}
