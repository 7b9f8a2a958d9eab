package proj

import (
	"fmt"
	"math"

	"github.com/mvetter/swathgrid/internal/numeric"
)

// Shared ellipsoid series helpers (Snyder's m, t, and q functions) and the
// Newton-style latitude recoveries used by the ellipsoidal inverses. The
// iterative routines return their last estimate plus a ConvergenceError
// when the iteration cap runs out; the estimate remains usable.

// msfnz computes m = cos(phi)/sqrt(1 - e^2 sin^2 phi).
func msfnz(e, sinPhi, cosPhi float64) float64 {
	es := e * sinPhi
	return cosPhi / math.Sqrt(1-es*es)
}

// tsfnz computes t = tan(pi/4 - phi/2) / ((1 - e sin phi)/(1 + e sin phi))^(e/2).
func tsfnz(e, phi, sinPhi float64) float64 {
	con := e * sinPhi
	return math.Tan(math.Pi/4-phi/2) / math.Pow((1-con)/(1+con), e/2)
}

// qsfnz computes Snyder's q, the authalic-latitude parameter.
func qsfnz(e, sinPhi float64) float64 {
	if e < 1e-10 {
		return 2 * sinPhi
	}
	con := e * sinPhi
	return (1 - e*e) * (sinPhi/(1-con*con) - (1/(2*e))*math.Log((1-con)/(1+con)))
}

// phi2z recovers latitude from the conformal parameter t by fixed-point
// iteration (polar stereographic and Lambert conformal inverses).
func phi2z(e, ts float64) (float64, error) {
	eHalf := e / 2
	phi := math.Pi/2 - 2*math.Atan(ts)
	for i := 0; i < maxIterations; i++ {
		con := e * math.Sin(phi)
		next := math.Pi/2 - 2*math.Atan(ts*math.Pow((1-con)/(1+con), eHalf))
		if math.Abs(next-phi) < convergenceEps {
			return next, nil
		}
		phi = next
	}
	return phi, &numeric.ConvergenceError{
		Routine: "conformal latitude", Index: -1, Iterations: maxIterations,
	}
}

// phi1z recovers latitude from the authalic parameter q by Newton iteration
// (Albers and equal-area inverses).
func phi1z(e, q float64) (float64, error) {
	es := e * e
	phi := math.Asin(clamp1(q / 2))
	if e < 1e-10 {
		return phi, nil
	}
	for i := 0; i < maxIterations; i++ {
		sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)
		if math.Abs(cosPhi) < 1e-12 {
			// Converged onto a pole.
			return phi, nil
		}
		con := e * sinPhi
		com := 1 - con*con
		delta := com * com / (2 * cosPhi) *
			(q/(1-es) - sinPhi/com + 1/(2*e)*math.Log((1-con)/(1+con)))
		phi += delta
		if math.Abs(delta) < convergenceEps {
			return phi, nil
		}
	}
	return phi, &numeric.ConvergenceError{
		Routine: "authalic latitude", Index: -1, Iterations: maxIterations,
	}
}

// ---------------------------------------------------------------------------
// Azimuthal equal-area (ellipsoid, oblique aspect)
// ---------------------------------------------------------------------------

type azimuthalEqualAreaEll struct {
	a, e               float64
	lam0               float64
	qp                 float64 // q at the pole
	sinBeta1, cosBeta1 float64
	rq                 float64 // radius of the authalic sphere
	d                  float64 // Snyder's D
}

func newAzimuthalEqualAreaEllipsoid(p Params) (transformer, error) {
	a, e := p.EquatorialRadius, p.Eccentricity
	phi0 := p.Lat0 * degToRad
	sin0, cos0 := math.Sin(phi0), math.Cos(phi0)

	qp := qsfnz(e, 1)
	q1 := qsfnz(e, sin0)
	beta1 := math.Asin(clamp1(q1 / qp))
	rq := a * math.Sqrt(qp/2)

	t := &azimuthalEqualAreaEll{
		a: a, e: e,
		lam0:     p.Lon0 * degToRad,
		qp:       qp,
		sinBeta1: math.Sin(beta1),
		cosBeta1: math.Cos(beta1),
		rq:       rq,
	}
	if math.Abs(cos0) < 1e-12 {
		// Polar aspect: D degenerates to 1.
		t.d = 1
	} else {
		m1 := msfnz(e, sin0, cos0)
		t.d = a * m1 / (rq * t.cosBeta1)
	}
	return t, nil
}

func (t *azimuthalEqualAreaEll) forward(phi, lam float64) (float64, float64, error) {
	dlam := wrapRad(lam - t.lam0)
	q := qsfnz(t.e, math.Sin(phi))
	beta := math.Asin(clamp1(q / t.qp))
	sinBeta, cosBeta := math.Sin(beta), math.Cos(beta)
	cosDlam := math.Cos(dlam)

	denom := 1 + t.sinBeta1*sinBeta + t.cosBeta1*cosBeta*cosDlam
	if denom < 1e-12 {
		return 0, 0, ErrOutsideDomain
	}
	b := t.rq * math.Sqrt(2/denom)
	x := b * t.d * cosBeta * math.Sin(dlam)
	y := (b / t.d) * (t.cosBeta1*sinBeta - t.sinBeta1*cosBeta*cosDlam)
	return x, y, nil
}

func (t *azimuthalEqualAreaEll) inverse(x, y float64) (float64, float64, error) {
	xd := x / t.d
	yd := y * t.d
	rho := math.Hypot(xd, yd)
	if rho == 0 {
		phi, err := phi1z(t.e, t.qp*t.sinBeta1)
		return phi, t.lam0, err
	}
	arg := rho / (2 * t.rq)
	if arg > 1 {
		return 0, 0, ErrOutsideDomain
	}
	ce := 2 * math.Asin(arg)
	sinCe, cosCe := math.Sin(ce), math.Cos(ce)

	q := t.qp * (cosCe*t.sinBeta1 + yd*sinCe*t.cosBeta1/rho)
	phi, err := phi1z(t.e, q)
	lam := t.lam0 + math.Atan2(xd*sinCe, rho*t.cosBeta1*cosCe-yd*t.sinBeta1*sinCe)
	return phi, lam, err
}

// ---------------------------------------------------------------------------
// Cylindrical equal-area (ellipsoid), true scale at the second reference
// latitude
// ---------------------------------------------------------------------------

type cylindricalEqualAreaEll struct {
	a, e float64
	lam0 float64
	k0   float64
}

func newCylindricalEqualAreaEllipsoid(p Params) (transformer, error) {
	phi1 := p.Lat1 * degToRad
	k0 := msfnz(p.Eccentricity, math.Sin(phi1), math.Cos(phi1))
	if k0 < 1e-12 {
		return nil, fmt.Errorf("standard parallel %g too close to a pole", p.Lat1)
	}
	return &cylindricalEqualAreaEll{
		a: p.EquatorialRadius, e: p.Eccentricity,
		lam0: p.Lon0 * degToRad,
		k0:   k0,
	}, nil
}

func (t *cylindricalEqualAreaEll) forward(phi, lam float64) (float64, float64, error) {
	dlam := wrapRad(lam - t.lam0)
	q := qsfnz(t.e, math.Sin(phi))
	return t.a * t.k0 * dlam, t.a * q / (2 * t.k0), nil
}

func (t *cylindricalEqualAreaEll) inverse(x, y float64) (float64, float64, error) {
	q := 2 * y * t.k0 / t.a
	if math.Abs(q) > qsfnz(t.e, 1)+1e-9 {
		return 0, 0, ErrOutsideDomain
	}
	phi, err := phi1z(t.e, q)
	return phi, t.lam0 + x/(t.a*t.k0), err
}

// ---------------------------------------------------------------------------
// Polar stereographic (ellipsoid), true scale at the second reference
// latitude
// ---------------------------------------------------------------------------

type polarStereographicEll struct {
	a, e  float64
	lam0  float64
	north bool
	rhoC  float64 // rho = rhoC * t for the true-scale parallel
}

func newPolarStereographicEllipsoid(p Params) (transformer, error) {
	if p.Lat0 != 90 && p.Lat0 != -90 {
		return nil, fmt.Errorf("reference latitude must be a pole, got %g", p.Lat0)
	}
	a, e := p.EquatorialRadius, p.Eccentricity
	north := p.Lat0 > 0
	lat1 := p.Lat1
	if lat1 == 0 {
		lat1 = p.Lat0
	}
	if north != (lat1 > 0) {
		return nil, fmt.Errorf("true-scale latitude %g on the wrong hemisphere", lat1)
	}

	phiC := math.Abs(lat1) * degToRad
	var rhoC float64
	if math.Abs(phiC-math.Pi/2) < 1e-12 {
		// True scale at the pole itself.
		rhoC = 2 * a * p.CenterScale /
			math.Sqrt(math.Pow(1+e, 1+e)*math.Pow(1-e, 1-e))
	} else {
		sinC := math.Sin(phiC)
		mc := msfnz(e, sinC, math.Cos(phiC))
		tc := tsfnz(e, phiC, sinC)
		rhoC = a * mc / tc
	}
	return &polarStereographicEll{
		a: a, e: e,
		lam0:  p.Lon0 * degToRad,
		north: north,
		rhoC:  rhoC,
	}, nil
}

func (t *polarStereographicEll) forward(phi, lam float64) (float64, float64, error) {
	dlam := wrapRad(lam - t.lam0)
	if !t.north {
		phi, dlam = -phi, -dlam
	}
	if phi < -math.Pi/2+1e-9 {
		return 0, 0, ErrOutsideDomain
	}
	ts := tsfnz(t.e, phi, math.Sin(phi))
	rho := t.rhoC * ts
	x := rho * math.Sin(dlam)
	y := rho * math.Cos(dlam)
	if !t.north {
		x = -x
	}
	return x, y, nil
}

func (t *polarStereographicEll) inverse(x, y float64) (float64, float64, error) {
	if !t.north {
		x = -x
	}
	rho := math.Hypot(x, y)
	if rho == 0 {
		phi := math.Pi / 2
		if !t.north {
			phi = -phi
		}
		return phi, t.lam0, nil
	}
	ts := rho / t.rhoC
	phi, err := phi2z(t.e, ts)
	dlam := math.Atan2(x, y)
	if !t.north {
		phi, dlam = -phi, -dlam
	}
	return phi, t.lam0 + dlam, err
}

// ---------------------------------------------------------------------------
// Albers conic equal-area (ellipsoid); standard parallels at the reference
// and second reference latitudes
// ---------------------------------------------------------------------------

type albersConicEll struct {
	a, e float64
	lam0 float64
	n    float64
	c    float64
	rho0 float64
}

func newAlbersConicEqualAreaEllipsoid(p Params) (transformer, error) {
	a, e := p.EquatorialRadius, p.Eccentricity
	phi1 := p.Lat0 * degToRad
	phi2 := p.Lat1 * degToRad
	sin1, cos1 := math.Sin(phi1), math.Cos(phi1)
	sin2, cos2 := math.Sin(phi2), math.Cos(phi2)

	m1 := msfnz(e, sin1, cos1)
	q1 := qsfnz(e, sin1)

	var n float64
	if math.Abs(phi1-phi2) < 1e-12 {
		n = sin1
	} else {
		m2 := msfnz(e, sin2, cos2)
		q2 := qsfnz(e, sin2)
		n = (m1*m1 - m2*m2) / (q2 - q1)
	}
	if math.Abs(n) < 1e-12 {
		return nil, fmt.Errorf("standard parallels %g, %g are symmetric about the equator",
			p.Lat0, p.Lat1)
	}
	c := m1*m1 + n*q1
	t := &albersConicEll{a: a, e: e, lam0: p.Lon0 * degToRad, n: n, c: c}
	t.rho0 = t.rho(q1)
	return t, nil
}

func (t *albersConicEll) rho(q float64) float64 {
	return t.a * math.Sqrt(math.Max(0, t.c-t.n*q)) / t.n
}

func (t *albersConicEll) forward(phi, lam float64) (float64, float64, error) {
	dlam := wrapRad(lam - t.lam0)
	q := qsfnz(t.e, math.Sin(phi))
	if t.c-t.n*q < 0 {
		return 0, 0, ErrOutsideDomain
	}
	rho := t.rho(q)
	theta := t.n * dlam
	return rho * math.Sin(theta), t.rho0 - rho*math.Cos(theta), nil
}

func (t *albersConicEll) inverse(x, y float64) (float64, float64, error) {
	dy := t.rho0 - y
	rho := math.Hypot(x, dy)
	if t.n < 0 {
		rho = -rho
		x, dy = -x, -dy
	}
	theta := math.Atan2(x, dy)

	q := (t.c - (rho*t.n/t.a)*(rho*t.n/t.a)) / t.n
	if math.Abs(q) > qsfnz(t.e, 1)+1e-9 {
		return 0, 0, ErrOutsideDomain
	}
	phi, err := phi1z(t.e, q)
	return phi, t.lam0 + theta/t.n, err
}

// ---------------------------------------------------------------------------
// Lambert conformal conic (ellipsoid); standard parallels at the reference
// and second reference latitudes
// ---------------------------------------------------------------------------

type lambertConformalEll struct {
	a, e float64
	lam0 float64
	n    float64
	f    float64
	rho0 float64
}

func newLambertConicConformalEllipsoid(p Params) (transformer, error) {
	a, e := p.EquatorialRadius, p.Eccentricity
	phi1 := p.Lat0 * degToRad
	phi2 := p.Lat1 * degToRad
	if math.Abs(phi1)+1e-12 > math.Pi/2 || math.Abs(phi2)+1e-12 > math.Pi/2 {
		return nil, fmt.Errorf("standard parallel at a pole")
	}
	sin1, cos1 := math.Sin(phi1), math.Cos(phi1)
	sin2, cos2 := math.Sin(phi2), math.Cos(phi2)

	m1 := msfnz(e, sin1, cos1)
	t1 := tsfnz(e, phi1, sin1)

	var n float64
	if math.Abs(phi1-phi2) < 1e-12 {
		n = sin1
	} else {
		m2 := msfnz(e, sin2, cos2)
		t2 := tsfnz(e, phi2, sin2)
		n = math.Log(m1/m2) / math.Log(t1/t2)
	}
	if math.Abs(n) < 1e-12 {
		return nil, fmt.Errorf("standard parallels %g, %g yield a degenerate cone",
			p.Lat0, p.Lat1)
	}
	f := m1 / (n * math.Pow(t1, n))
	tr := &lambertConformalEll{a: a, e: e, lam0: p.Lon0 * degToRad, n: n, f: f}
	tr.rho0 = a * f * math.Pow(t1, n)
	return tr, nil
}

func (t *lambertConformalEll) forward(phi, lam float64) (float64, float64, error) {
	dlam := wrapRad(lam - t.lam0)

	var rho float64
	if math.Abs(math.Abs(phi)-math.Pi/2) < 1e-9 {
		if phi*t.n <= 0 {
			// The pole on the far side of the cone maps to infinity.
			return 0, 0, ErrOutsideDomain
		}
		rho = 0
	} else {
		rho = t.a * t.f * math.Pow(tsfnz(t.e, phi, math.Sin(phi)), t.n)
	}
	theta := t.n * dlam
	return rho * math.Sin(theta), t.rho0 - rho*math.Cos(theta), nil
}

func (t *lambertConformalEll) inverse(x, y float64) (float64, float64, error) {
	dy := t.rho0 - y
	rho := math.Hypot(x, dy)
	if t.n < 0 {
		rho = -rho
		x, dy = -x, -dy
	}
	theta := math.Atan2(x, dy)

	if rho == 0 {
		return math.Copysign(math.Pi/2, t.n), t.lam0, nil
	}
	ts := math.Pow(rho/(t.a*t.f), 1/t.n)
	phi, err := phi2z(t.e, ts)
	return phi, t.lam0 + theta/t.n, err
}
