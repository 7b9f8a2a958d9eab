package proj

import (
	"fmt"
	"math"
)

// Ellipsoidal transverse Mercator. Forward uses the standard power series;
// the inverse recovers the footprint latitude from the meridional distance
// by series expansion, then applies the correction terms. UTM is the same
// transform with its fixed zone parameters.

type transverseMercatorEll struct {
	a, es, ep2 float64
	k0         float64
	lam0       float64
	m0         float64 // meridional distance to lat0

	// meridional-distance series coefficients, derived once
	mc0, mc2, mc4, mc6 float64
	e1                 float64
}

func newTransverseMercatorEllipsoid(p Params) (transformer, error) {
	a := p.EquatorialRadius
	es := p.Eccentricity * p.Eccentricity
	t := &transverseMercatorEll{
		a:    a,
		es:   es,
		ep2:  es / (1 - es),
		k0:   p.CenterScale,
		lam0: p.Lon0 * degToRad,
	}
	t.mc0 = 1 - es/4 - 3*es*es/64 - 5*es*es*es/256
	t.mc2 = 3*es/8 + 3*es*es/32 + 45*es*es*es/1024
	t.mc4 = 15*es*es/256 + 45*es*es*es/1024
	t.mc6 = 35 * es * es * es / 3072

	sq := math.Sqrt(1 - es)
	t.e1 = (1 - sq) / (1 + sq)
	t.m0 = t.meridianDistance(p.Lat0 * degToRad)
	return t, nil
}

// meridianDistance is the distance along the meridian from the equator.
func (t *transverseMercatorEll) meridianDistance(phi float64) float64 {
	return t.a * (t.mc0*phi - t.mc2*math.Sin(2*phi) +
		t.mc4*math.Sin(4*phi) - t.mc6*math.Sin(6*phi))
}

func (t *transverseMercatorEll) forward(phi, lam float64) (float64, float64, error) {
	dlam := wrapRad(lam - t.lam0)
	if math.Cos(dlam) <= 0 {
		// More than 90 degrees from the central meridian.
		return 0, 0, ErrOutsideDomain
	}
	sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)

	if math.Abs(cosPhi) < 1e-12 {
		// Poles lie on the central meridian.
		return 0, t.k0 * (t.meridianDistance(phi) - t.m0), nil
	}

	n := t.a / math.Sqrt(1-t.es*sinPhi*sinPhi)
	tt := (sinPhi / cosPhi) * (sinPhi / cosPhi)
	c := t.ep2 * cosPhi * cosPhi
	aa := cosPhi * dlam

	aa2 := aa * aa
	x := t.k0 * n * (aa + (1-tt+c)*aa*aa2/6 +
		(5-18*tt+tt*tt+72*c-58*t.ep2)*aa*aa2*aa2/120)
	y := t.k0 * (t.meridianDistance(phi) - t.m0 +
		n*(sinPhi/cosPhi)*(aa2/2+(5-tt+9*c+4*c*c)*aa2*aa2/24+
			(61-58*tt+tt*tt+600*c-330*t.ep2)*aa2*aa2*aa2/720))
	return x, y, nil
}

func (t *transverseMercatorEll) inverse(x, y float64) (float64, float64, error) {
	m := t.m0 + y/t.k0
	mu := m / (t.a * t.mc0)

	// Footprint latitude by series inversion of the meridional distance.
	e1 := t.e1
	phi1 := mu + (3*e1/2-27*e1*e1*e1/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*e1*e1*e1*e1/32)*math.Sin(4*mu) +
		(151*e1*e1*e1/96)*math.Sin(6*mu) +
		(1097*e1*e1*e1*e1/512)*math.Sin(8*mu)
	if phi1 < -math.Pi/2-1e-9 || phi1 > math.Pi/2+1e-9 {
		return 0, 0, ErrOutsideDomain
	}

	sin1, cos1 := math.Sin(phi1), math.Cos(phi1)
	if math.Abs(cos1) < 1e-12 {
		return phi1, t.lam0, nil
	}

	con := 1 - t.es*sin1*sin1
	n1 := t.a / math.Sqrt(con)
	r1 := t.a * (1 - t.es) / (con * math.Sqrt(con))
	tt := (sin1 / cos1) * (sin1 / cos1)
	c1 := t.ep2 * cos1 * cos1
	d := x / (n1 * t.k0)
	d2 := d * d

	phi := phi1 - (n1*(sin1/cos1)/r1)*(d2/2-
		(5+3*tt+10*c1-4*c1*c1-9*t.ep2)*d2*d2/24+
		(61+90*tt+298*c1+45*tt*tt-252*t.ep2-3*c1*c1)*d2*d2*d2/720)
	lam := t.lam0 + (d-(1+2*tt+c1)*d*d2/6+
		(5-2*c1+28*tt-3*c1*c1+8*t.ep2+24*tt*tt)*d*d2*d2/120)/cos1
	return phi, lam, nil
}

// UTM false origin, in kilometers to match the projection units.
const (
	utmCenterScale   = 0.9996
	utmFalseEasting  = 500.0
	utmFalseNorthing = 10000.0
)

func newUniversalTransverseMercator(p Params) (transformer, error) {
	zone := p.UTMZone
	if zone == 0 || zone < -60 || zone > 60 {
		return nil, fmt.Errorf("UTM zone %d outside ±1..±60", zone)
	}
	south := zone < 0
	if south {
		zone = -zone
	}

	tp := p
	tp.Lat0 = 0
	tp.Lon0 = float64(6*zone - 183)
	if p.CenterScale == 1 {
		tp.CenterScale = utmCenterScale
	}
	inner, err := newTransverseMercatorEllipsoid(tp)
	if err != nil {
		return nil, err
	}

	fn := 0.0
	if south {
		fn = utmFalseNorthing
	}
	return &utm{inner: inner.(*transverseMercatorEll), fe: utmFalseEasting, fn: fn}, nil
}

// utm wraps the ellipsoidal transverse Mercator with the zone's false
// easting/northing, which apply before the shared map rotation/offsets.
type utm struct {
	inner  *transverseMercatorEll
	fe, fn float64
}

func (t *utm) forward(phi, lam float64) (float64, float64, error) {
	x, y, err := t.inner.forward(phi, lam)
	if err != nil {
		return 0, 0, err
	}
	return x + t.fe, y + t.fn, nil
}

func (t *utm) inverse(x, y float64) (float64, float64, error) {
	return t.inner.inverse(x-t.fe, y-t.fn)
}
