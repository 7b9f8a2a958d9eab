// Package proj implements the map-projection engine: forward (lat/lon → x/y)
// and inverse (x/y → lat/lon) transforms for the supported projection
// variants, configured from textual parameter blocks.
//
// Planar coordinates are in the units of the configured earth radius
// (kilometers by default). After the per-variant math every forward result
// passes through a shared rotation, linear scale, and false easting/northing
// translation; Inverse undoes them first.
package proj

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mvetter/swathgrid/internal/numeric"
)

// Default earth figures, in kilometers. The sphere is the authalic radius
// used by the polar gridded products; the ellipsoid is Clarke 1866.
const (
	DefaultSphereRadius     = 6371.228
	DefaultEquatorialRadius = 6378.2064
	DefaultEccentricity     = 0.082271673
)

// Iteration budget and tolerance shared by the Newton-style ellipsoidal
// solvers (latitude from conformal/authalic parameters, Mollweide theta).
const (
	maxIterations  = 35
	convergenceEps = 1e-7
)

var (
	// ErrOutsideDomain marks a per-call domain failure: the point has no
	// representation in the chosen projection (antipode, pole, far
	// hemisphere). Expected for points far from a grid's coverage.
	ErrOutsideDomain = errors.New("outside projection domain")

	// ErrAccuracy marks a forward transform whose own inverse landed
	// farther from the input than the configured tolerance.
	ErrAccuracy = errors.New("accuracy tolerance exceeded")
)

// Kind identifies a projection variant. The set is closed: New dispatches
// over it exhaustively, so an unhandled variant is a compile-time visible
// gap rather than a runtime table miss.
type Kind int

const (
	AzimuthalEqualArea Kind = iota
	AzimuthalEqualAreaEllipsoid
	CylindricalEqualArea
	CylindricalEqualAreaEllipsoid
	CylindricalEquidistant
	Mercator
	Mollweide
	Orthographic
	Sinusoidal
	IntegerizedSinusoidal
	PolarStereographic
	PolarStereographicEllipsoid
	AlbersConicEqualArea
	AlbersConicEqualAreaEllipsoid
	LambertConicConformalEllipsoid
	TransverseMercator
	TransverseMercatorEllipsoid
	UniversalTransverseMercator
)

var kindNames = map[Kind]string{
	AzimuthalEqualArea:             "Azimuthal Equal-Area",
	AzimuthalEqualAreaEllipsoid:    "Azimuthal Equal-Area Ellipsoid",
	CylindricalEqualArea:           "Cylindrical Equal-Area",
	CylindricalEqualAreaEllipsoid:  "Cylindrical Equal-Area Ellipsoid",
	CylindricalEquidistant:         "Cylindrical Equidistant",
	Mercator:                       "Mercator",
	Mollweide:                      "Mollweide",
	Orthographic:                   "Orthographic",
	Sinusoidal:                     "Sinusoidal",
	IntegerizedSinusoidal:          "Integerized Sinusoidal",
	PolarStereographic:             "Polar Stereographic",
	PolarStereographicEllipsoid:    "Polar Stereographic Ellipsoid",
	AlbersConicEqualArea:           "Albers Conic Equal-Area",
	AlbersConicEqualAreaEllipsoid:  "Albers Conic Equal-Area Ellipsoid",
	LambertConicConformalEllipsoid: "Lambert Conic Conformal Ellipsoid",
	TransverseMercator:             "Transverse Mercator",
	TransverseMercatorEllipsoid:    "Transverse Mercator Ellipsoid",
	UniversalTransverseMercator:    "Universal Transverse Mercator",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Ellipsoidal reports whether the variant uses a non-spherical earth figure.
func (k Kind) Ellipsoidal() bool {
	switch k {
	case AzimuthalEqualAreaEllipsoid, CylindricalEqualAreaEllipsoid,
		PolarStereographicEllipsoid, AlbersConicEqualAreaEllipsoid,
		LambertConicConformalEllipsoid, TransverseMercatorEllipsoid,
		UniversalTransverseMercator:
		return true
	}
	return false
}

// ParseKind resolves a projection name. Matching ignores case and treats
// spaces, hyphens, and underscores interchangeably, so
// "polar_stereographic" and "Polar Stereographic" both resolve.
func ParseKind(name string) (Kind, error) {
	want := foldName(name)
	for k, n := range kindNames {
		if foldName(n) == want {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown projection %q", name)
}

func foldName(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, " ", "")
	return s
}

// Params configures a projection. Zero values select the documented
// defaults at construction time; the struct itself carries the textual
// parameter set unmodified.
type Params struct {
	Kind Kind

	Lat0, Lon0 float64 // reference latitude/longitude, degrees
	Lat1, Lon1 float64 // second reference (conics, some cylindricals)

	Rotation    float64 // map rotation, degrees counterclockwise
	Scale       float64 // linear scale applied after rotation (default 1)
	CenterScale float64 // scale factor at the projection center (default 1)

	EquatorialRadius float64 // km; 0 selects the per-kind default
	Eccentricity     float64 // 0 required for spherical kinds
	PolarRadius      float64 // km; alternative to Eccentricity

	FalseEasting  float64 // km, added to x after rotation and scale
	FalseNorthing float64 // km, added to y

	MaxError float64 // km; > 0 enables the per-call accuracy check

	UTMZone  int // Universal Transverse Mercator only; ±1..±60, negative = south
	ISinRows int // Integerized Sinusoidal latitude rows (default 86400)

	eccentricitySet bool // distinguishes an explicit 0 from "unspecified"
}

// transformer is the per-variant payload: derived constants plus the raw
// forward/inverse math in radians and radius units, before the shared
// rotation/scale/translation.
type transformer interface {
	forward(phi, lam float64) (x, y float64, err error)
	inverse(x, y float64) (phi, lam float64, err error)
}

// Projection is an immutable configured projection.
type Projection struct {
	params Params
	t      transformer

	radius         float64 // equatorial radius actually in effect
	cosRot, sinRot float64
	scale          float64
	fe, fn         float64
	maxError       float64
}

// New validates params, derives the per-variant constants once, and returns
// an immutable Projection. Configuration errors (contradictory or
// out-of-range parameters) are reported here, before any transform runs.
func New(params Params) (*Projection, error) {
	p := params
	if p.Lat0 < -90 || p.Lat0 > 90 || p.Lat1 < -90 || p.Lat1 > 90 {
		return nil, fmt.Errorf("%s: reference latitude outside [-90, 90]", p.Kind)
	}
	if p.Scale == 0 {
		p.Scale = 1
	}
	if p.CenterScale == 0 {
		p.CenterScale = 1
	}

	if !p.Kind.Ellipsoidal() {
		if p.Eccentricity != 0 {
			return nil, fmt.Errorf("%s: eccentricity %g given for a spherical projection",
				p.Kind, p.Eccentricity)
		}
		if p.PolarRadius != 0 && p.PolarRadius != p.EquatorialRadius {
			return nil, fmt.Errorf("%s: polar radius given for a spherical projection", p.Kind)
		}
		if p.EquatorialRadius == 0 {
			p.EquatorialRadius = DefaultSphereRadius
		}
	} else {
		if err := resolveEllipsoid(&p); err != nil {
			return nil, fmt.Errorf("%s: %v", p.Kind, err)
		}
	}
	if p.EquatorialRadius < 0 {
		return nil, fmt.Errorf("%s: negative equatorial radius", p.Kind)
	}

	t, err := newTransformer(p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Kind, err)
	}

	rot := p.Rotation * degToRad
	return &Projection{
		params:   p,
		t:        t,
		radius:   p.EquatorialRadius,
		cosRot:   math.Cos(rot),
		sinRot:   math.Sin(rot),
		scale:    p.Scale,
		fe:       p.FalseEasting,
		fn:       p.FalseNorthing,
		maxError: p.MaxError,
	}, nil
}

// resolveEllipsoid fills in the earth figure: any two of equatorial radius,
// polar radius, and eccentricity determine the third.
func resolveEllipsoid(p *Params) error {
	a, b, e := p.EquatorialRadius, p.PolarRadius, p.Eccentricity
	eSet := p.eccentricitySet || e != 0
	switch {
	case a != 0 && b != 0 && eSet:
		want := math.Sqrt(1 - (b*b)/(a*a))
		if math.Abs(want-e) > 1e-9 {
			return fmt.Errorf("contradictory ellipsoid: radius %g/%g implies eccentricity %g, got %g",
				a, b, want, e)
		}
	case a != 0 && b != 0:
		if b > a {
			return fmt.Errorf("polar radius %g exceeds equatorial radius %g", b, a)
		}
		e = math.Sqrt(1 - (b*b)/(a*a))
	case a != 0 && eSet:
		// nothing to derive
	case b != 0 && eSet:
		a = b / math.Sqrt(1-e*e)
	case a != 0:
		e = DefaultEccentricity
	default:
		a = DefaultEquatorialRadius
		if !eSet {
			e = DefaultEccentricity
		}
	}
	if e < 0 || e >= 1 {
		return fmt.Errorf("eccentricity %g outside [0, 1)", e)
	}
	p.EquatorialRadius, p.Eccentricity = a, e
	return nil
}

// newTransformer builds the derived-constants payload for one variant.
// The switch is exhaustive over Kind.
func newTransformer(p Params) (transformer, error) {
	switch p.Kind {
	case AzimuthalEqualArea:
		return newAzimuthalEqualArea(p)
	case AzimuthalEqualAreaEllipsoid:
		return newAzimuthalEqualAreaEllipsoid(p)
	case CylindricalEqualArea:
		return newCylindricalEqualArea(p)
	case CylindricalEqualAreaEllipsoid:
		return newCylindricalEqualAreaEllipsoid(p)
	case CylindricalEquidistant:
		return newCylindricalEquidistant(p)
	case Mercator:
		return newMercator(p)
	case Mollweide:
		return newMollweide(p)
	case Orthographic:
		return newOrthographic(p)
	case Sinusoidal:
		return newSinusoidal(p)
	case IntegerizedSinusoidal:
		return newIntegerizedSinusoidal(p)
	case PolarStereographic:
		return newPolarStereographic(p)
	case PolarStereographicEllipsoid:
		return newPolarStereographicEllipsoid(p)
	case AlbersConicEqualArea:
		return newAlbersConicEqualArea(p)
	case AlbersConicEqualAreaEllipsoid:
		return newAlbersConicEqualAreaEllipsoid(p)
	case LambertConicConformalEllipsoid:
		return newLambertConicConformalEllipsoid(p)
	case TransverseMercator:
		return newTransverseMercator(p)
	case TransverseMercatorEllipsoid:
		return newTransverseMercatorEllipsoid(p)
	case UniversalTransverseMercator:
		return newUniversalTransverseMercator(p)
	}
	return nil, fmt.Errorf("unhandled projection kind %d", int(p.Kind))
}

// Params returns the configuration in effect, with defaults resolved.
func (p *Projection) Params() Params { return p.params }

// Kind returns the projection variant.
func (p *Projection) Kind() Kind { return p.params.Kind }

// Forward maps geographic degrees to planar coordinates. Longitude is
// normalized to [-180, 180) first. A *numeric.ConvergenceError return
// still carries a usable best-estimate result; any other non-nil error
// means the point has no valid mapping.
func (p *Projection) Forward(lat, lon float64) (x, y float64, err error) {
	if lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("forward (%.6f, %.6f): latitude out of range: %w",
			lat, lon, ErrOutsideDomain)
	}
	phi := lat * degToRad
	lam := wrapLon(lon) * degToRad

	x, y, err = p.t.forward(phi, lam)
	if err != nil && !isConvergence(err) {
		return 0, 0, fmt.Errorf("forward (%.6f, %.6f): %w", lat, lon, err)
	}
	x, y = p.toMap(x, y)

	if p.maxError > 0 {
		backLat, backLon, ierr := p.inverseRaw(x, y)
		if ierr != nil && !isConvergence(ierr) {
			return 0, 0, fmt.Errorf("forward (%.6f, %.6f): accuracy check: %w", lat, lon, ierr)
		}
		if d := greatCircleKM(p.radius, lat, lon, backLat, backLon); d > p.maxError {
			return 0, 0, fmt.Errorf("forward (%.6f, %.6f): distance %.6g km: %w",
				lat, lon, d, ErrAccuracy)
		}
	}
	return x, y, err
}

// Inverse maps planar coordinates back to geographic degrees with the
// longitude normalized to [-180, 180). See Forward for the error contract.
func (p *Projection) Inverse(x, y float64) (lat, lon float64, err error) {
	lat, lon, err = p.inverseRaw(x, y)
	if err != nil && !isConvergence(err) {
		return 0, 0, fmt.Errorf("inverse (%.6g, %.6g): %w", x, y, err)
	}
	return lat, lon, err
}

func (p *Projection) inverseRaw(x, y float64) (lat, lon float64, err error) {
	x, y = p.fromMap(x, y)
	phi, lam, err := p.t.inverse(x, y)
	if err != nil && !isConvergence(err) {
		return 0, 0, err
	}
	return phi * radToDeg, wrapLon(lam * radToDeg), err
}

// toMap applies the shared post-transform: rotation, scale, translation.
func (p *Projection) toMap(x, y float64) (float64, float64) {
	u := p.cosRot*x + p.sinRot*y
	v := -p.sinRot*x + p.cosRot*y
	return u*p.scale + p.fe, v*p.scale + p.fn
}

func (p *Projection) fromMap(x, y float64) (float64, float64) {
	u := (x - p.fe) / p.scale
	v := (y - p.fn) / p.scale
	return p.cosRot*u - p.sinRot*v, p.sinRot*u + p.cosRot*v
}

// isConvergence reports whether err is (only) an iteration-budget overrun,
// whose accompanying result is the documented best estimate.
func isConvergence(err error) bool {
	var ce *numeric.ConvergenceError
	return errors.As(err, &ce)
}

const (
	degToRad = math.Pi / 180
	radToDeg = 180 / math.Pi
)

// wrapLon normalizes a longitude in degrees to [-180, 180).
func wrapLon(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

// wrapRad normalizes an angle in radians to [-pi, pi).
func wrapRad(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// greatCircleKM is the spherical great-circle distance used by the
// accuracy check, in the haversine form: the acos formulation loses all
// resolution below ~1e-4 km, which is the scale the check measures.
func greatCircleKM(radius, lat1, lon1, lat2, lon2 float64) float64 {
	phi1, phi2 := lat1*degToRad, lat2*degToRad
	sdLat := math.Sin((phi2 - phi1) / 2)
	sdLon := math.Sin((lon2 - lon1) * degToRad / 2)
	h := sdLat*sdLat + math.Cos(phi1)*math.Cos(phi2)*sdLon*sdLon
	return 2 * radius * math.Asin(math.Sqrt(clamp1(h)))
}

func clamp1(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
