package proj

import (
	"errors"
	"fmt"

	"github.com/mvetter/swathgrid/internal/label"
)

// Label keywords for projection parameter blocks.
const (
	keyProjection    = "Map Projection"
	keyLat0          = "Map Reference Latitude"
	keyLon0          = "Map Reference Longitude"
	keyLat1          = "Map Second Reference Latitude"
	keyLon1          = "Map Second Reference Longitude"
	keyRotation      = "Map Rotation"
	keyScale         = "Map Scale"
	keyCenterScale   = "Map Center Scale"
	keyEqRadius      = "Map Equatorial Radius"
	keyPolarRadius   = "Map Polar Radius"
	keyEccentricity  = "Map Eccentricity"
	keyFalseEasting  = "Map False Easting"
	keyFalseNorthing = "Map False Northing"
	keyMaxError      = "Map Maximum Error"
	keyUTMZone       = "Map UTM Zone"
	keyISinRows      = "Map ISin Rows"
)

// ParamsFromLabel extracts projection parameters from a decoded label
// block. The reference latitude and longitude are required for every
// variant except Universal Transverse Mercator (which takes a zone) and
// Integerized Sinusoidal (which defaults both to zero).
func ParamsFromLabel(l *label.Label) (Params, error) {
	var p Params

	name := l.String(keyProjection, "")
	if name == "" {
		return p, fmt.Errorf("label: missing %q", keyProjection)
	}
	kind, err := ParseKind(name)
	if err != nil {
		return p, err
	}
	p.Kind = kind

	switch kind {
	case UniversalTransverseMercator:
		if !l.Has(keyUTMZone) {
			return p, fmt.Errorf("label: %s requires %q", kind, keyUTMZone)
		}
	case IntegerizedSinusoidal:
		// reference lat/lon default to zero
	default:
		if !l.Has(keyLat0) || !l.Has(keyLon0) {
			return p, fmt.Errorf("label: %s requires %q and %q", kind, keyLat0, keyLon0)
		}
	}

	var errs []error
	get := func(dst *float64, read func() (float64, error)) {
		v, err := read()
		if err != nil {
			errs = append(errs, err)
			return
		}
		*dst = v
	}
	get(&p.Lat0, func() (float64, error) { return l.Lat(keyLat0, 0) })
	get(&p.Lon0, func() (float64, error) { return l.Lon(keyLon0, 0) })
	get(&p.Lat1, func() (float64, error) { return l.Lat(keyLat1, 0) })
	get(&p.Lon1, func() (float64, error) { return l.Lon(keyLon1, 0) })
	get(&p.Rotation, func() (float64, error) { return l.Float(keyRotation, 0) })
	get(&p.Scale, func() (float64, error) { return l.Float(keyScale, 0) })
	get(&p.CenterScale, func() (float64, error) { return l.Float(keyCenterScale, 0) })
	get(&p.EquatorialRadius, func() (float64, error) { return l.Float(keyEqRadius, 0) })
	get(&p.PolarRadius, func() (float64, error) { return l.Float(keyPolarRadius, 0) })
	get(&p.Eccentricity, func() (float64, error) { return l.Float(keyEccentricity, 0) })
	get(&p.FalseEasting, func() (float64, error) { return l.Float(keyFalseEasting, 0) })
	get(&p.FalseNorthing, func() (float64, error) { return l.Float(keyFalseNorthing, 0) })
	get(&p.MaxError, func() (float64, error) { return l.Float(keyMaxError, 0) })
	if err := errors.Join(errs...); err != nil {
		return p, err
	}

	if p.UTMZone, err = l.Int(keyUTMZone, 0); err != nil {
		return p, err
	}
	if p.ISinRows, err = l.Int(keyISinRows, 0); err != nil {
		return p, err
	}
	p.eccentricitySet = l.Has(keyEccentricity)
	return p, nil
}

// FromLabel builds a Projection directly from a decoded label block.
func FromLabel(l *label.Label) (*Projection, error) {
	p, err := ParamsFromLabel(l)
	if err != nil {
		return nil, err
	}
	return New(p)
}

// FromText decodes a parameter text block and builds a Projection.
func FromText(text string) (*Projection, error) {
	l, err := label.Decode(text)
	if err != nil {
		return nil, err
	}
	return FromLabel(l)
}
