package proj

import (
	"fmt"
	"math"

	"github.com/mvetter/swathgrid/internal/numeric"
)

// Spherical variants. Each payload holds the constants derived once at
// construction; forward/inverse work in radians and radius units.

// ---------------------------------------------------------------------------
// Azimuthal equal-area (Lambert azimuthal, oblique aspect)
// ---------------------------------------------------------------------------

type azimuthalEqualArea struct {
	r                float64
	lam0             float64
	sinLat0, cosLat0 float64
}

func newAzimuthalEqualArea(p Params) (transformer, error) {
	phi0 := p.Lat0 * degToRad
	return &azimuthalEqualArea{
		r:       p.EquatorialRadius,
		lam0:    p.Lon0 * degToRad,
		sinLat0: math.Sin(phi0),
		cosLat0: math.Cos(phi0),
	}, nil
}

func (t *azimuthalEqualArea) forward(phi, lam float64) (float64, float64, error) {
	dlam := wrapRad(lam - t.lam0)
	sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)
	cosDlam := math.Cos(dlam)

	denom := 1 + t.sinLat0*sinPhi + t.cosLat0*cosPhi*cosDlam
	if denom < 1e-12 {
		// Antipode of the projection center.
		return 0, 0, ErrOutsideDomain
	}
	k := math.Sqrt(2 / denom)
	x := t.r * k * cosPhi * math.Sin(dlam)
	y := t.r * k * (t.cosLat0*sinPhi - t.sinLat0*cosPhi*cosDlam)
	return x, y, nil
}

func (t *azimuthalEqualArea) inverse(x, y float64) (float64, float64, error) {
	rho := math.Hypot(x, y)
	if rho == 0 {
		return math.Asin(t.sinLat0), t.lam0, nil
	}
	arg := rho / (2 * t.r)
	if arg > 1 {
		return 0, 0, ErrOutsideDomain
	}
	c := 2 * math.Asin(arg)
	sinC, cosC := math.Sin(c), math.Cos(c)

	phi := math.Asin(clamp1(cosC*t.sinLat0 + y*sinC*t.cosLat0/rho))
	lam := t.lam0 + math.Atan2(x*sinC, rho*t.cosLat0*cosC-y*t.sinLat0*sinC)
	return phi, lam, nil
}

// ---------------------------------------------------------------------------
// Cylindrical equal-area, standard parallel from the second reference
// latitude
// ---------------------------------------------------------------------------

type cylindricalEqualArea struct {
	r       float64
	lam0    float64
	cosLat1 float64
}

func newCylindricalEqualArea(p Params) (transformer, error) {
	cosLat1 := math.Cos(p.Lat1 * degToRad)
	if cosLat1 < 1e-12 {
		return nil, fmt.Errorf("standard parallel %g too close to a pole", p.Lat1)
	}
	return &cylindricalEqualArea{
		r:       p.EquatorialRadius,
		lam0:    p.Lon0 * degToRad,
		cosLat1: cosLat1,
	}, nil
}

func (t *cylindricalEqualArea) forward(phi, lam float64) (float64, float64, error) {
	dlam := wrapRad(lam - t.lam0)
	return t.r * dlam * t.cosLat1, t.r * math.Sin(phi) / t.cosLat1, nil
}

func (t *cylindricalEqualArea) inverse(x, y float64) (float64, float64, error) {
	arg := y * t.cosLat1 / t.r
	if arg < -1 || arg > 1 {
		return 0, 0, ErrOutsideDomain
	}
	return math.Asin(arg), t.lam0 + x/(t.r*t.cosLat1), nil
}

// ---------------------------------------------------------------------------
// Cylindrical equidistant (plate carrée about lat0, true scale at lat1)
// ---------------------------------------------------------------------------

type cylindricalEquidistant struct {
	r       float64
	lam0    float64
	phi0    float64
	cosLat1 float64
}

func newCylindricalEquidistant(p Params) (transformer, error) {
	cosLat1 := math.Cos(p.Lat1 * degToRad)
	if cosLat1 < 1e-12 {
		return nil, fmt.Errorf("standard parallel %g too close to a pole", p.Lat1)
	}
	return &cylindricalEquidistant{
		r:       p.EquatorialRadius,
		lam0:    p.Lon0 * degToRad,
		phi0:    p.Lat0 * degToRad,
		cosLat1: cosLat1,
	}, nil
}

func (t *cylindricalEquidistant) forward(phi, lam float64) (float64, float64, error) {
	dlam := wrapRad(lam - t.lam0)
	return t.r * dlam * t.cosLat1, t.r * (phi - t.phi0), nil
}

func (t *cylindricalEquidistant) inverse(x, y float64) (float64, float64, error) {
	phi := y/t.r + t.phi0
	if phi < -math.Pi/2-1e-9 || phi > math.Pi/2+1e-9 {
		return 0, 0, ErrOutsideDomain
	}
	return phi, t.lam0 + x/(t.r*t.cosLat1), nil
}

// ---------------------------------------------------------------------------
// Mercator, true scale at lat1
// ---------------------------------------------------------------------------

type mercator struct {
	r       float64 // radius scaled by cos(lat1)
	lam0    float64
}

func newMercator(p Params) (transformer, error) {
	cosLat1 := math.Cos(p.Lat1 * degToRad)
	if cosLat1 < 1e-12 {
		return nil, fmt.Errorf("standard parallel %g too close to a pole", p.Lat1)
	}
	return &mercator{
		r:    p.EquatorialRadius * cosLat1,
		lam0: p.Lon0 * degToRad,
	}, nil
}

func (t *mercator) forward(phi, lam float64) (float64, float64, error) {
	if math.Abs(phi) >= math.Pi/2-1e-9 {
		// The poles map to infinity.
		return 0, 0, ErrOutsideDomain
	}
	dlam := wrapRad(lam - t.lam0)
	return t.r * dlam, t.r * math.Log(math.Tan(math.Pi/4+phi/2)), nil
}

func (t *mercator) inverse(x, y float64) (float64, float64, error) {
	phi := math.Pi/2 - 2*math.Atan(math.Exp(-y/t.r))
	return phi, t.lam0 + x/t.r, nil
}

// ---------------------------------------------------------------------------
// Mollweide
// ---------------------------------------------------------------------------

type mollweide struct {
	r    float64
	lam0 float64
}

func newMollweide(p Params) (transformer, error) {
	return &mollweide{r: p.EquatorialRadius, lam0: p.Lon0 * degToRad}, nil
}

func (t *mollweide) forward(phi, lam float64) (float64, float64, error) {
	dlam := wrapRad(lam - t.lam0)

	theta, err := mollweideTheta(phi)
	x := t.r * (2 * math.Sqrt2 / math.Pi) * dlam * math.Cos(theta)
	y := t.r * math.Sqrt2 * math.Sin(theta)
	return x, y, err
}

// mollweideTheta solves 2θ + sin 2θ = π sin φ by Newton iteration. On
// iteration-budget overrun the last estimate is returned together with a
// ConvergenceError; the estimate is still usable.
func mollweideTheta(phi float64) (float64, error) {
	if math.Abs(phi) >= math.Pi/2-1e-12 {
		return math.Copysign(math.Pi/2, phi), nil
	}
	target := math.Pi * math.Sin(phi)
	theta := phi
	for i := 0; i < maxIterations; i++ {
		f := 2*theta + math.Sin(2*theta) - target
		d := 2 + 2*math.Cos(2*theta)
		if d == 0 {
			break
		}
		delta := f / d
		theta -= delta
		if math.Abs(delta) < convergenceEps {
			return theta, nil
		}
	}
	return theta, &numeric.ConvergenceError{
		Routine: "mollweide theta", Index: -1, Iterations: maxIterations,
	}
}

func (t *mollweide) inverse(x, y float64) (float64, float64, error) {
	arg := y / (t.r * math.Sqrt2)
	if arg < -1-1e-9 || arg > 1+1e-9 {
		return 0, 0, ErrOutsideDomain
	}
	theta := math.Asin(clamp1(arg))
	phi := math.Asin(clamp1((2*theta + math.Sin(2*theta)) / math.Pi))

	cosTheta := math.Cos(theta)
	if cosTheta < 1e-12 {
		// Pole: any longitude collapses here.
		return phi, t.lam0, nil
	}
	lam := t.lam0 + math.Pi*x/(2*math.Sqrt2*t.r*cosTheta)
	return phi, lam, nil
}

// ---------------------------------------------------------------------------
// Orthographic (oblique aspect)
// ---------------------------------------------------------------------------

type orthographic struct {
	r                float64
	lam0             float64
	sinLat0, cosLat0 float64
}

func newOrthographic(p Params) (transformer, error) {
	phi0 := p.Lat0 * degToRad
	return &orthographic{
		r:       p.EquatorialRadius,
		lam0:    p.Lon0 * degToRad,
		sinLat0: math.Sin(phi0),
		cosLat0: math.Cos(phi0),
	}, nil
}

func (t *orthographic) forward(phi, lam float64) (float64, float64, error) {
	dlam := wrapRad(lam - t.lam0)
	sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)
	cosDlam := math.Cos(dlam)

	cosC := t.sinLat0*sinPhi + t.cosLat0*cosPhi*cosDlam
	if cosC < 0 {
		// Back hemisphere is not visible.
		return 0, 0, ErrOutsideDomain
	}
	x := t.r * cosPhi * math.Sin(dlam)
	y := t.r * (t.cosLat0*sinPhi - t.sinLat0*cosPhi*cosDlam)
	return x, y, nil
}

func (t *orthographic) inverse(x, y float64) (float64, float64, error) {
	rho := math.Hypot(x, y)
	if rho == 0 {
		return math.Asin(t.sinLat0), t.lam0, nil
	}
	if rho > t.r*(1+1e-12) {
		return 0, 0, ErrOutsideDomain
	}
	c := math.Asin(clamp1(rho / t.r))
	sinC, cosC := math.Sin(c), math.Cos(c)

	phi := math.Asin(clamp1(cosC*t.sinLat0 + y*sinC*t.cosLat0/rho))
	lam := t.lam0 + math.Atan2(x*sinC, rho*t.cosLat0*cosC-y*t.sinLat0*sinC)
	return phi, lam, nil
}

// ---------------------------------------------------------------------------
// Sinusoidal
// ---------------------------------------------------------------------------

type sinusoidal struct {
	r    float64
	lam0 float64
}

func newSinusoidal(p Params) (transformer, error) {
	return &sinusoidal{r: p.EquatorialRadius, lam0: p.Lon0 * degToRad}, nil
}

func (t *sinusoidal) forward(phi, lam float64) (float64, float64, error) {
	dlam := wrapRad(lam - t.lam0)
	return t.r * dlam * math.Cos(phi), t.r * phi, nil
}

func (t *sinusoidal) inverse(x, y float64) (float64, float64, error) {
	phi := y / t.r
	if phi < -math.Pi/2-1e-9 || phi > math.Pi/2+1e-9 {
		return 0, 0, ErrOutsideDomain
	}
	cosPhi := math.Cos(phi)
	if cosPhi < 1e-12 {
		return phi, t.lam0, nil
	}
	dlam := x / (t.r * cosPhi)
	if dlam < -math.Pi-1e-9 || dlam > math.Pi+1e-9 {
		return 0, 0, ErrOutsideDomain
	}
	return phi, t.lam0 + dlam, nil
}

// ---------------------------------------------------------------------------
// Polar stereographic (sphere), true scale at the second reference latitude
// ---------------------------------------------------------------------------

type polarStereographic struct {
	r     float64
	lam0  float64
	north bool
	k     float64 // 1 + |sin(lat1)| scale constant
}

func newPolarStereographic(p Params) (transformer, error) {
	if p.Lat0 != 90 && p.Lat0 != -90 {
		return nil, fmt.Errorf("reference latitude must be a pole, got %g", p.Lat0)
	}
	north := p.Lat0 > 0
	lat1 := p.Lat1
	if lat1 == 0 {
		lat1 = p.Lat0 // true scale at the pole unless configured
	}
	if north != (lat1 > 0) {
		return nil, fmt.Errorf("true-scale latitude %g on the wrong hemisphere", lat1)
	}
	return &polarStereographic{
		r:     p.EquatorialRadius,
		lam0:  p.Lon0 * degToRad,
		north: north,
		k:     1 + math.Abs(math.Sin(lat1*degToRad)),
	}, nil
}

func (t *polarStereographic) forward(phi, lam float64) (float64, float64, error) {
	dlam := wrapRad(lam - t.lam0)
	if !t.north {
		phi, dlam = -phi, -dlam
	}
	denom := 1 + math.Sin(phi)
	if denom < 1e-12 {
		// Opposite pole maps to infinity.
		return 0, 0, ErrOutsideDomain
	}
	rho := t.r * math.Cos(phi) * t.k / denom
	x := rho * math.Sin(dlam)
	y := rho * math.Cos(dlam)
	if !t.north {
		x = -x
	}
	return x, y, nil
}

func (t *polarStereographic) inverse(x, y float64) (float64, float64, error) {
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
	// rho = R k tan(pi/4 - phi/2)
	phi := math.Pi/2 - 2*math.Atan(rho/(t.r*t.k))
	dlam := math.Atan2(x, y)
	if !t.north {
		phi, dlam = -phi, -dlam
	}
	return phi, t.lam0 + dlam, nil
}

// ---------------------------------------------------------------------------
// Albers conic equal-area (sphere); standard parallels at the reference and
// second reference latitudes
// ---------------------------------------------------------------------------

type albersConic struct {
	r    float64
	lam0 float64
	n    float64
	c    float64
	rho0 float64
}

func newAlbersConicEqualArea(p Params) (transformer, error) {
	phi0 := p.Lat0 * degToRad
	phi1 := p.Lat1 * degToRad
	sin0, sin1 := math.Sin(phi0), math.Sin(phi1)

	n := (sin0 + sin1) / 2
	if math.Abs(n) < 1e-12 {
		return nil, fmt.Errorf("standard parallels %g, %g are symmetric about the equator",
			p.Lat0, p.Lat1)
	}
	c := math.Cos(phi0)*math.Cos(phi0) + 2*n*sin0
	t := &albersConic{
		r:    p.EquatorialRadius,
		lam0: p.Lon0 * degToRad,
		n:    n,
		c:    c,
	}
	t.rho0 = t.rho(sin0)
	return t, nil
}

func (t *albersConic) rho(sinPhi float64) float64 {
	return t.r * math.Sqrt(math.Max(0, t.c-2*t.n*sinPhi)) / t.n
}

func (t *albersConic) forward(phi, lam float64) (float64, float64, error) {
	dlam := wrapRad(lam - t.lam0)
	if t.c-2*t.n*math.Sin(phi) < 0 {
		return 0, 0, ErrOutsideDomain
	}
	rho := t.rho(math.Sin(phi))
	theta := t.n * dlam
	return rho * math.Sin(theta), t.rho0 - rho*math.Cos(theta), nil
}

func (t *albersConic) inverse(x, y float64) (float64, float64, error) {
	dy := t.rho0 - y
	rho := math.Hypot(x, dy)
	if t.n < 0 {
		rho = -rho
		x, dy = -x, -dy
	}
	theta := math.Atan2(x, dy)

	arg := (t.c - (rho*t.n/t.r)*(rho*t.n/t.r)) / (2 * t.n)
	if arg < -1-1e-9 || arg > 1+1e-9 {
		return 0, 0, ErrOutsideDomain
	}
	return math.Asin(clamp1(arg)), t.lam0 + theta/t.n, nil
}

// ---------------------------------------------------------------------------
// Transverse Mercator (sphere)
// ---------------------------------------------------------------------------

type transverseMercator struct {
	rk   float64 // R * k0
	lam0 float64
	phi0 float64
}

func newTransverseMercator(p Params) (transformer, error) {
	return &transverseMercator{
		rk:   p.EquatorialRadius * p.CenterScale,
		lam0: p.Lon0 * degToRad,
		phi0: p.Lat0 * degToRad,
	}, nil
}

func (t *transverseMercator) forward(phi, lam float64) (float64, float64, error) {
	dlam := wrapRad(lam - t.lam0)
	b := math.Cos(phi) * math.Sin(dlam)
	if math.Abs(b) > 1-1e-10 {
		// 90 degrees away from the central meridian on the equator.
		return 0, 0, ErrOutsideDomain
	}
	x := 0.5 * t.rk * math.Log((1+b)/(1-b))
	y := t.rk * (math.Atan2(math.Tan(phi), math.Cos(dlam)) - t.phi0)
	return x, y, nil
}

func (t *transverseMercator) inverse(x, y float64) (float64, float64, error) {
	d := y/t.rk + t.phi0
	xr := x / t.rk
	phi := math.Asin(clamp1(math.Sin(d) / math.Cosh(xr)))
	lam := t.lam0 + math.Atan2(math.Sinh(xr), math.Cos(d))
	return phi, lam, nil
}
