package grid

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/mvetter/swathgrid/internal/proj"
)

const northPolarHeader = `
; 100 km north polar grid
Map Projection:                Polar Stereographic
Map Reference Latitude:        90.0
Map Second Reference Latitude: 70.0
Map Reference Longitude:       -45.0
`

func TestParse_Static(t *testing.T) {
	d, err := FromText(northPolarHeader + `
Grid Width:        76
Grid Height:       89
Grid Cell Width:   100.0
Grid Map Origin X: -3850.0
Grid Map Origin Y:  5850.0
`)
	if err != nil {
		t.Fatal(err)
	}
	if !d.Resolved() {
		t.Fatal("fully declared grid not resolved")
	}
	if d.Width != 76 || d.Height != 89 {
		t.Errorf("extent = %dx%d", d.Width, d.Height)
	}
	// Cell height defaults to the negated cell width.
	if d.CellHeight != -100 {
		t.Errorf("cell height = %v, want -100", d.CellHeight)
	}
	if d.Projection.Kind() != proj.PolarStereographic {
		t.Errorf("kind = %v", d.Projection.Kind())
	}

	// The pole projects to (0, 0) km, pixel (38.5, 58.5).
	col, row, err := d.GeoToPixel(90, 0)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(col-38.5) > 1e-9 || math.Abs(row-58.5) > 1e-9 {
		t.Errorf("pole pixel = (%v, %v), want (38.5, 58.5)", col, row)
	}
}

func TestParse_DynamicSentinel(t *testing.T) {
	d, err := FromText(northPolarHeader + `
Grid Width:        ?
Grid Height:       ?
Grid Cell Width:   25.0
Grid Cell Height:  -25.0
`)
	if err != nil {
		t.Fatal(err)
	}
	if d.Resolved() {
		t.Fatal("grid with uninitialized extent should be dynamic")
	}
	if _, _, err := d.GeoToPixel(80, 0); !errors.Is(err, ErrUnresolved) {
		t.Errorf("err = %v, want ErrUnresolved", err)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"missing cell width", northPolarHeader, "Grid Cell Width"},
		{"width without height", northPolarHeader + "Grid Cell Width: 100.0\nGrid Width: 10\n", "together"},
		{"origin x without y", northPolarHeader + "Grid Cell Width: 100.0\nGrid Map Origin X: 0.0\n", "together"},
		{"cap exceeded", northPolarHeader + `
Grid Width:        100000
Grid Height:       100000
Grid Cell Width:   1.0
Grid Map Origin X: 0.0
Grid Map Origin Y: 0.0
`, "cap"},
		{"bad projection", "Map Projection: Cordiform\nGrid Cell Width: 100.0\n", "unknown projection"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromText(tt.text)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestParse_CellCapOverride(t *testing.T) {
	d, err := FromText(northPolarHeader + `
Grid Width:        100000
Grid Height:       100000
Grid Cell Width:   1.0
Grid Map Origin X: 0.0
Grid Map Origin Y: 0.0
Grid Cell Cap:     100000000000
`)
	if err != nil {
		t.Fatal(err)
	}
	if d.Cells() != 100000*100000 {
		t.Errorf("cells = %d", d.Cells())
	}
}
