package proj

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mvetter/swathgrid/internal/label"
)

func decode(t *testing.T, text string) *label.Label {
	t.Helper()
	l, err := label.Decode(text)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return l
}

func TestParamsFromLabel(t *testing.T) {
	text := `
; polar pathfinder grid, northern hemisphere
Map Projection:            Polar Stereographic
Map Reference Latitude:    90.0
Map Second Reference Latitude: 70.0
Map Reference Longitude:   -45.0
Map Rotation:              0.0
Map Scale:                 1.0
Map False Easting:         0.0
Map False Northing:        0.0
`
	got, err := ParamsFromLabel(decode(t, text))
	if err != nil {
		t.Fatal(err)
	}
	want := Params{
		Kind: PolarStereographic,
		Lat0: 90, Lat1: 70, Lon0: -45,
		Scale: 1,
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(Params{})); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestParamsFromLabel_Hemispheres(t *testing.T) {
	text := `
Map Projection: Azimuthal Equal-Area
Map Reference Latitude: 45.0S
Map Reference Longitude: 100.0W
`
	got, err := ParamsFromLabel(decode(t, text))
	if err != nil {
		t.Fatal(err)
	}
	if got.Lat0 != -45 || got.Lon0 != -100 {
		t.Errorf("got (%v, %v), want (-45, -100)", got.Lat0, got.Lon0)
	}
}

func TestParamsFromLabel_Ellipsoid(t *testing.T) {
	text := `
Map Projection: Polar Stereographic Ellipsoid
Map Reference Latitude: 90.0
Map Second Reference Latitude: 70.0
Map Reference Longitude: 0.0
Map Equatorial Radius: 6378.273
Map Eccentricity: 0.081816153
Map Maximum Error: 0.001
`
	p, err := FromLabel(decode(t, text))
	if err != nil {
		t.Fatal(err)
	}
	got := p.Params()
	if got.EquatorialRadius != 6378.273 || got.Eccentricity != 0.081816153 {
		t.Errorf("ellipsoid = (%v, %v)", got.EquatorialRadius, got.Eccentricity)
	}
	if got.MaxError != 0.001 {
		t.Errorf("max error = %v", got.MaxError)
	}
}

func TestParamsFromLabel_ExplicitZeroEccentricity(t *testing.T) {
	// Eccentricity: 0 with a bare radius means a sphere-figure ellipsoid
	// variant, not Clarke 1866.
	text := `
Map Projection: Azimuthal Equal-Area Ellipsoid
Map Reference Latitude: 90.0
Map Reference Longitude: 0.0
Map Equatorial Radius: 6371.228
Map Eccentricity: 0.0
`
	p, err := FromLabel(decode(t, text))
	if err != nil {
		t.Fatal(err)
	}
	if e := p.Params().Eccentricity; e != 0 {
		t.Errorf("eccentricity = %v, want explicit 0", e)
	}
}

func TestParamsFromLabel_UTM(t *testing.T) {
	text := `
Map Projection: Universal Transverse Mercator
Map UTM Zone: 18
`
	got, err := ParamsFromLabel(decode(t, text))
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != UniversalTransverseMercator || got.UTMZone != 18 {
		t.Errorf("got kind %v zone %d", got.Kind, got.UTMZone)
	}
}

func TestParamsFromLabel_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"missing projection", "Map Reference Latitude: 45.0\n", "Map Projection"},
		{"unknown projection", "Map Projection: Cordiform\n", "unknown projection"},
		{"missing reference", "Map Projection: Mercator\n", "Map Reference Latitude"},
		{"utm missing zone", "Map Projection: Universal Transverse Mercator\n", "Map UTM Zone"},
		{"bad latitude", "Map Projection: Mercator\nMap Reference Latitude: 99.0\nMap Reference Longitude: 0.0\n", "latitude"},
		{"bad number", "Map Projection: Mercator\nMap Reference Latitude: north\nMap Reference Longitude: 0.0\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParamsFromLabel(decode(t, tt.text))
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.want != "" && !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestParseKind_Folding(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"Polar Stereographic", PolarStereographic},
		{"polar_stereographic", PolarStereographic},
		{"POLAR-STEREOGRAPHIC", PolarStereographic},
		{"azimuthal equal-area ellipsoid", AzimuthalEqualAreaEllipsoid},
		{"Integerized Sinusoidal", IntegerizedSinusoidal},
		{"universaltransversemercator", UniversalTransverseMercator},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if err != nil {
			t.Errorf("ParseKind(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseKind("cordiform"); err == nil {
		t.Error("expected an error for an unknown name")
	}
}

func TestFromText(t *testing.T) {
	p, err := FromText("Map Projection: Sinusoidal\nMap Reference Latitude: 0.0\nMap Reference Longitude: 90.0\n")
	if err != nil {
		t.Fatal(err)
	}
	x, y, err := p.Forward(0, 90)
	if err != nil {
		t.Fatal(err)
	}
	if x != 0 || y != 0 {
		t.Errorf("center maps to (%v, %v), want (0, 0)", x, y)
	}
}
