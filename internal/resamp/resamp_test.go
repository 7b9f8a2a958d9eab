package resamp

import (
	"errors"
	"math"
	"testing"

	"github.com/mvetter/swathgrid/internal/grid"
	"github.com/mvetter/swathgrid/internal/proj"
	"github.com/mvetter/swathgrid/internal/raster"
)

// testGrid is an 8x8 plate-carree grid of 100 km cells centered on (0, 0):
// pixel positions are linear in lat/lon, so PixelToGeo places test points
// exactly where we want them.
func testGrid(t *testing.T) *grid.Definition {
	t.Helper()
	p, err := proj.New(proj.Params{Kind: proj.CylindricalEquidistant})
	if err != nil {
		t.Fatal(err)
	}
	g, err := grid.NewStatic(p, 8, 8, 100, -100, -400, 400)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

// at returns the geographic location of a fractional pixel position.
func at(t *testing.T, g *grid.Definition, col, row float64) (lat, lon float64) {
	t.Helper()
	lat, lon, err := g.PixelToGeo(col, row)
	if err != nil {
		t.Fatal(err)
	}
	return lat, lon
}

func point(t *testing.T, g *grid.Definition, col, row, v float64) raster.Point {
	lat, lon := at(t, g, col, row)
	return raster.Point{Lat: lat, Lon: lon, Value: v}
}

func TestToGrid_BucketIdentity(t *testing.T) {
	g := testGrid(t)

	// One point per cell center reproduces each value exactly, with the
	// rest of the grid filled.
	pts := []raster.Point{
		point(t, g, 2.5, 3.5, 42),
		point(t, g, 5.5, 1.5, -7),
	}
	res, err := ToGrid(g, pts, Params{Algorithm: Bucket, Radius: 0.5, Fill: -999})
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Values.At(2, 3); got != 42 {
		t.Errorf("cell (2,3) = %v, want 42", got)
	}
	if got := res.Values.At(5, 1); got != -7 {
		t.Errorf("cell (5,1) = %v, want -7", got)
	}
	if got := res.Values.At(0, 0); got != -999 {
		t.Errorf("untouched cell = %v, want fill", got)
	}
	if res.Skipped != 0 {
		t.Errorf("skipped = %d", res.Skipped)
	}
	if got := res.Counts.At(2, 3); got != 1 {
		t.Errorf("count (2,3) = %v, want 1", got)
	}
}

func TestToGrid_RadiusZeroSingleCell(t *testing.T) {
	g := testGrid(t)

	// Two points in the same cell, radius 0: plain mean in the containing
	// cell, nothing anywhere else.
	pts := []raster.Point{
		point(t, g, 4.25, 4.25, 10),
		point(t, g, 4.75, 4.75, 30),
	}
	res, err := ToGrid(g, pts, Params{Algorithm: Bucket, Fill: math.NaN()})
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Values.At(4, 4); got != 20 {
		t.Errorf("cell (4,4) = %v, want 20", got)
	}
	if got := res.Values.At(4, 5); !math.IsNaN(got) {
		t.Errorf("neighbor cell = %v, want fill", got)
	}
}

func TestToGrid_NearestMinDistanceWins(t *testing.T) {
	g := testGrid(t)

	// The second point is nearer to cell (3,3)'s center; arrival order
	// must not matter.
	pts := []raster.Point{
		point(t, g, 3.9, 3.5, 1),
		point(t, g, 3.6, 3.5, 2),
	}
	res, err := ToGrid(g, pts, Params{Algorithm: Nearest, Radius: 1, Fill: -1})
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Values.At(3, 3); got != 2 {
		t.Errorf("cell (3,3) = %v, want the nearer value 2", got)
	}
	if got := res.Counts.At(3, 3); got != 2 {
		t.Errorf("count (3,3) = %v, want 2 candidates", got)
	}
}

func TestToGrid_CressmanBetweenTwoValues(t *testing.T) {
	g := testGrid(t)

	// Values 0 and 100 three cells apart: every cell between them gets a
	// weighted mean that increases monotonically toward the higher value,
	// and the endpoints stay closest to their own points.
	pts := []raster.Point{
		point(t, g, 2.5, 4.5, 0),
		point(t, g, 5.5, 4.5, 100),
	}
	res, err := ToGrid(g, pts, Params{Algorithm: Cressman, Radius: 4, Fill: -1})
	if err != nil {
		t.Fatal(err)
	}
	prev := -1.0
	for c := 2; c <= 5; c++ {
		v := res.Values.At(c, 4)
		if v < 0 || v > 100 {
			t.Fatalf("cell (%d,4) = %v outside [0, 100]", c, v)
		}
		if v <= prev {
			t.Errorf("cell (%d,4) = %v not increasing (prev %v)", c, v, prev)
		}
		prev = v
	}
	// The setup is symmetric, so the endpoint cells must mirror each
	// other around the midpoint value.
	if lo, hi := res.Values.At(2, 4), res.Values.At(5, 4); math.Abs(lo+hi-100) > 1e-9 {
		t.Errorf("endpoint cells %v and %v are not symmetric about 50", lo, hi)
	}
}

func TestToGrid_CressmanMinCount(t *testing.T) {
	g := testGrid(t)
	pts := []raster.Point{point(t, g, 3.5, 3.5, 5)}

	res, err := ToGrid(g, pts, Params{Algorithm: Cressman, Radius: 2, Fill: -1, MinCount: 2})
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Values.At(3, 3); got != -1 {
		t.Errorf("cell below min count = %v, want fill", got)
	}
}

func TestToGrid_SkipsBadPoints(t *testing.T) {
	g := testGrid(t)
	pts := []raster.Point{
		point(t, g, 3.5, 3.5, 5),
		{Lat: 60, Lon: 0, Value: 1},    // far off grid
		point(t, g, 2.5, 2.5, 1e6),     // outside valid range
	}
	res, err := ToGrid(g, pts, Params{
		Algorithm: Bucket, Radius: 1, Fill: -1,
		ValidRange: true, ValidMin: -100, ValidMax: 100,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Skipped != 2 {
		t.Errorf("skipped = %d, want 2", res.Skipped)
	}
	if got := res.Values.At(2, 2); got != -1 {
		t.Errorf("cell fed only by the rejected value = %v, want fill", got)
	}
}

func TestToGrid_InverseDistanceExactHit(t *testing.T) {
	g := testGrid(t)
	pts := []raster.Point{
		point(t, g, 3.5, 3.5, 77), // dead center of cell (3,3)
		point(t, g, 3.9, 3.5, 1),  // nearby, must not dilute the hit
	}
	res, err := ToGrid(g, pts, Params{Algorithm: InverseDistance, Radius: 2, Fill: -1})
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Values.At(3, 3); got != 77 {
		t.Errorf("cell (3,3) = %v, want the exact-hit value 77", got)
	}
}

func TestToGrid_WrongDirectionAlgorithm(t *testing.T) {
	g := testGrid(t)
	if _, err := ToGrid(g, nil, Params{Algorithm: Bilinear}); err == nil {
		t.Error("bilinear accepted for scattered-to-grid")
	}
}

func TestToGrid_UnresolvedGrid(t *testing.T) {
	p, err := proj.New(proj.Params{Kind: proj.CylindricalEquidistant})
	if err != nil {
		t.Fatal(err)
	}
	g, err := grid.NewDynamic(p, 100, -100)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ToGrid(g, nil, Params{Algorithm: Bucket}); !errors.Is(err, errUnresolvedGrid) {
		t.Errorf("err = %v, want errUnresolvedGrid", err)
	}
}

// ramp fills a float32 raster with value = col + 2*row.
func ramp(t *testing.T, w, h int) *raster.Raster {
	t.Helper()
	r, err := raster.New(raster.Float32, w, h)
	if err != nil {
		t.Fatal(err)
	}
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			r.Set(col, row, float64(col)+2*float64(row))
		}
	}
	return r
}

func TestFromGrid_NearestAtCenters(t *testing.T) {
	g := testGrid(t)
	r := ramp(t, 8, 8)

	pts := []raster.Point{point(t, g, 2.5, 6.5, 0), point(t, g, 7.5, 0.5, 0)}
	got, err := FromGrid(g, r, pts, Params{Algorithm: Nearest, Fill: -1})
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Value != 2+2*6 {
		t.Errorf("sample 0 = %v, want 14", got[0].Value)
	}
	if got[1].Value != 7 {
		t.Errorf("sample 1 = %v, want 7", got[1].Value)
	}
}

func TestFromGrid_BilinearReproducesLinearRamp(t *testing.T) {
	g := testGrid(t)
	r := ramp(t, 8, 8)

	// On a linear field, bilinear interpolation is exact at any interior
	// fractional position.
	samples := [][2]float64{{2.75, 3.25}, {4.5, 4.5}, {1.5, 6.1}}
	for _, s := range samples {
		pts := []raster.Point{point(t, g, s[0], s[1], 0)}
		got, err := FromGrid(g, r, pts, Params{Algorithm: Bilinear, Fill: -1})
		if err != nil {
			t.Fatal(err)
		}
		want := (s[0] - 0.5) + 2*(s[1]-0.5)
		if math.Abs(got[0].Value-want) > 1e-9 {
			t.Errorf("bilinear at (%v, %v) = %v, want %v", s[0], s[1], got[0].Value, want)
		}
	}
}

func TestFromGrid_CubicReproducesLinearRamp(t *testing.T) {
	g := testGrid(t)
	r := ramp(t, 8, 8)

	samples := [][2]float64{{3.5, 3.5}, {2.8, 4.2}, {4.25, 2.75}}
	for _, s := range samples {
		pts := []raster.Point{point(t, g, s[0], s[1], 0)}
		got, err := FromGrid(g, r, pts, Params{Algorithm: Cubic, Fill: -1})
		if err != nil {
			t.Fatal(err)
		}
		want := (s[0] - 0.5) + 2*(s[1]-0.5)
		if math.Abs(got[0].Value-want) > 1e-9 {
			t.Errorf("cubic at (%v, %v) = %v, want %v", s[0], s[1], got[0].Value, want)
		}
	}
}

func TestCatmullRomKernel(t *testing.T) {
	// At a knot the kernel picks out the second sample exactly.
	w := catmullRom(0)
	want := [4]float64{0, 1, 0, 0}
	for i := range w {
		if math.Abs(w[i]-want[i]) > 1e-15 {
			t.Fatalf("catmullRom(0) = %v, want %v", w, want)
		}
	}
	// Partition of unity everywhere.
	for _, f := range []float64{0.1, 0.25, 0.5, 0.9} {
		w := catmullRom(f)
		sum := w[0] + w[1] + w[2] + w[3]
		if math.Abs(sum-1) > 1e-12 {
			t.Errorf("catmullRom(%v) sums to %v", f, sum)
		}
	}
}

func TestFromGrid_FillCellsNeverContribute(t *testing.T) {
	g := testGrid(t)
	r := ramp(t, 8, 8)
	r.Set(3, 3, -1) // poison one cell with the fill value

	// Shell average around the poisoned cell skips it.
	pts := []raster.Point{point(t, g, 3.5, 3.5, 0)}
	got, err := FromGrid(g, r, pts, Params{Algorithm: ShellAverage, Radius: 1.5, Fill: -1})
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Value == -1 {
		t.Fatal("sample came back as fill despite valid neighbors")
	}

	// Bilinear with a fill cell in its 2x2 support yields fill.
	got, err = FromGrid(g, r, pts, Params{Algorithm: Bilinear, Fill: -1})
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Value != -1 {
		t.Errorf("bilinear over a fill cell = %v, want fill", got[0].Value)
	}
}

func TestFromGrid_InverseDistanceExactHit(t *testing.T) {
	g := testGrid(t)
	r := ramp(t, 8, 8)
	pts := []raster.Point{point(t, g, 5.5, 2.5, 0)}
	got, err := FromGrid(g, r, pts, Params{Algorithm: InverseDistance, Radius: 2, Fill: -1})
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Value != 5+2*2 {
		t.Errorf("exact hit = %v, want 9", got[0].Value)
	}
}

func TestFromGrid_OffGridYieldsFill(t *testing.T) {
	g := testGrid(t)
	r := ramp(t, 8, 8)
	pts := []raster.Point{{Lat: 60, Lon: 120, Value: 0}}
	got, err := FromGrid(g, r, pts, Params{Algorithm: Nearest, Fill: -1})
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Value != -1 {
		t.Errorf("off-grid sample = %v, want fill", got[0].Value)
	}
}

func TestFromGrid_RasterShapeMismatch(t *testing.T) {
	g := testGrid(t)
	r, err := raster.New(raster.Float32, 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := FromGrid(g, r, nil, Params{Algorithm: Nearest}); err == nil {
		t.Error("shape mismatch accepted")
	}
}

func TestNearestRegridIdempotence(t *testing.T) {
	g := testGrid(t)
	r := ramp(t, 8, 8)

	// Restate every cell as a point at its own center, then grid those
	// points back with nearest-neighbor: the raster must reproduce.
	pts, err := CellCenters(g, r, Params{})
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != 64 {
		t.Fatalf("cell centers = %d, want 64", len(pts))
	}
	res, err := ToGrid(g, pts, Params{Algorithm: Nearest, Radius: 0.5, Fill: -1})
	if err != nil {
		t.Fatal(err)
	}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if got, want := res.Values.At(col, row), r.Get(col, row); got != want {
				t.Fatalf("cell (%d,%d) = %v, want %v", col, row, got, want)
			}
		}
	}
}

func TestCellCenters_WindowAndFill(t *testing.T) {
	g := testGrid(t)
	r := ramp(t, 8, 8)
	r.Set(0, 0, -1)

	pts, err := CellCenters(g, r, Params{Fill: -1, SkipFill: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != 63 {
		t.Errorf("points = %d, want 63 with one fill cell skipped", len(pts))
	}

	// A window covering only the northern half of the grid.
	lat, _ := at(t, g, 4, 4) // grid vertical midpoint (lat 0)
	win := &Window{LatMin: lat, LatMax: 90, LonMin: -180, LonMax: 180}
	pts, err = CellCenters(g, r, Params{Window: win})
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != 32 {
		t.Errorf("windowed points = %d, want 32", len(pts))
	}
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		in   string
		want Algorithm
	}{
		{"nearest", Nearest},
		{"bucket", Bucket},
		{"cressman", Cressman},
		{"inverse-distance", InverseDistance},
		{"idw", InverseDistance},
		{"average", ShellAverage},
		{"shell", ShellAverage},
		{"bilinear", Bilinear},
		{"cubic", Cubic},
	}
	for _, tt := range tests {
		got, err := ParseAlgorithm(tt.in)
		if err != nil {
			t.Errorf("ParseAlgorithm(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAlgorithm(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseAlgorithm("kriging"); err == nil {
		t.Error("expected an error for an unknown algorithm")
	}
}

func TestWindowContains(t *testing.T) {
	w := Window{LatMin: -10, LatMax: 10, LonMin: 170, LonMax: -170}
	if !w.Contains(0, 175) || !w.Contains(0, -175) {
		t.Error("antimeridian window rejects points inside it")
	}
	if w.Contains(0, 0) || w.Contains(20, 175) {
		t.Error("antimeridian window accepts points outside it")
	}
}
