package approx

import (
	"math"
	"testing"

	"github.com/mvetter/swathgrid/internal/proj"
)

func TestFitPoly_ExactOnLinearProjection(t *testing.T) {
	// Plate carree is linear in lat/lon, so a degree-1 fit is exact.
	p, err := proj.New(proj.Params{Kind: proj.CylindricalEquidistant})
	if err != nil {
		t.Fatal(err)
	}
	w := Window{LatMin: -30, LatMax: 30, LonMin: -60, LonMax: 60}
	m, err := FitPoly(p, w, 1, 8)
	if err != nil {
		t.Fatal(err)
	}
	if m.RMSX > 1e-9 || m.RMSY > 1e-9 {
		t.Fatalf("nonzero residual on a linear transform: %g, %g", m.RMSX, m.RMSY)
	}

	for _, pt := range [][2]float64{{12.3, -45.6}, {-29, 59}, {0, 0}} {
		wantX, wantY, err := p.Forward(pt[0], pt[1])
		if err != nil {
			t.Fatal(err)
		}
		gotX, gotY, err := m.Forward(pt[0], pt[1])
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(gotX-wantX) > 1e-6 || math.Abs(gotY-wantY) > 1e-6 {
			t.Errorf("model at %v = (%v, %v), want (%v, %v)", pt, gotX, gotY, wantX, wantY)
		}
	}
}

func TestFitPoly_PolarStereographicWindow(t *testing.T) {
	p, err := proj.New(proj.Params{
		Kind: proj.PolarStereographic, Lat0: 90, Lat1: 70, Lon0: -45,
	})
	if err != nil {
		t.Fatal(err)
	}
	w := Window{LatMin: 60, LatMax: 80, LonMin: -65, LonMax: -25}
	m, err := FitPoly(p, w, 4, 12)
	if err != nil {
		t.Fatal(err)
	}
	if m.RMSX > 1 || m.RMSY > 1 {
		t.Fatalf("residuals %g, %g km exceed 1 km", m.RMSX, m.RMSY)
	}

	// Off-lattice points stay close to the true transform.
	for _, pt := range [][2]float64{{72.4, -44.1}, {61.7, -60.3}, {79.2, -27.8}} {
		wantX, wantY, err := p.Forward(pt[0], pt[1])
		if err != nil {
			t.Fatal(err)
		}
		gotX, gotY, err := m.Forward(pt[0], pt[1])
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(gotX-wantX) > 2 || math.Abs(gotY-wantY) > 2 {
			t.Errorf("model at %v off by (%v, %v) km",
				pt, gotX-wantX, gotY-wantY)
		}
	}

	if _, _, err := m.Forward(50, -45); err == nil {
		t.Error("extrapolation outside the window accepted")
	}
}

func TestFitPoly_Validation(t *testing.T) {
	p, err := proj.New(proj.Params{Kind: proj.Sinusoidal})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := FitPoly(p, Window{LatMin: 10, LatMax: 10, LonMin: 0, LonMax: 1}, 2, 8); err == nil {
		t.Error("degenerate window accepted")
	}
	if _, err := FitPoly(p, Window{LatMin: 0, LatMax: 10, LonMin: 0, LonMax: 10}, 0, 8); err == nil {
		t.Error("degree 0 accepted")
	}
}

func TestFitPoly_SkipsDomainFailures(t *testing.T) {
	// An orthographic window straddling the horizon loses the far samples
	// but still fits from the visible ones.
	p, err := proj.New(proj.Params{Kind: proj.Orthographic, Lat0: 90, Lon0: 0})
	if err != nil {
		t.Fatal(err)
	}
	w := Window{LatMin: -20, LatMax: 80, LonMin: -40, LonMax: 40}
	m, err := FitPoly(p, w, 2, 10)
	if err != nil {
		t.Fatal(err)
	}
	// A degree-2 fit over the clipped lattice lands around 175 km RMS;
	// the bound catches a fit that degrades past that.
	if m.RMSX > 250 {
		t.Errorf("x residual %g km", m.RMSX)
	}

	// A window entirely beyond the horizon has no usable samples.
	far := Window{LatMin: -60, LatMax: -20, LonMin: -40, LonMax: 40}
	if _, err := FitPoly(p, far, 2, 10); err == nil {
		t.Error("fit over an invisible window accepted")
	}
}

func TestRowModel_AntimeridianSwath(t *testing.T) {
	cols := []float64{0, 10, 20, 30, 40}
	lats := [][]float64{
		{60, 60.5, 61, 61.5, 62},
		{61, 61.5, 62, 62.5, 63},
	}
	// Longitude sweeps eastward across the antimeridian.
	lons := [][]float64{
		{170, 175, -180, -175, -170},
		{171, 176, -179, -174, -169},
	}
	m, err := NewRowModel(cols, lats, lons)
	if err != nil {
		t.Fatal(err)
	}
	if m.Rows() != 2 {
		t.Fatalf("rows = %d", m.Rows())
	}

	lat, lon, err := m.Eval(0, 15)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(lat-60.75) > 1e-9 {
		t.Errorf("lat = %v, want 60.75", lat)
	}
	// Unwrapped, the sweep is linear: column 15 sits at 177.5 degrees.
	if math.Abs(lon-177.5) > 1e-9 {
		t.Errorf("lon = %v, want 177.5", lon)
	}

	// Midway across the seam the interpolated longitude re-wraps.
	_, lon, err = m.Eval(1, 25)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(lon-(-176.5)) > 1e-9 {
		t.Errorf("lon = %v, want -176.5", lon)
	}
}

func TestRowModel_Validation(t *testing.T) {
	cols := []float64{0, 10, 20}
	if _, err := NewRowModel(cols, [][]float64{{1, 2, 3}}, [][]float64{{1, 2}}); err == nil {
		t.Error("ragged tie points accepted")
	}
	m, err := NewRowModel(cols, [][]float64{{1, 2, 3}}, [][]float64{{4, 5, 6}})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := m.Eval(5, 0); err == nil {
		t.Error("out-of-range row accepted")
	}
}
