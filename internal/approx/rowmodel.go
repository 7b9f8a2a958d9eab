package approx

import (
	"fmt"

	"github.com/mvetter/swathgrid/internal/numeric"
)

// RowModel interpolates swath geolocation: each scan row carries sparse
// (column -> lat, lon) tie points, and the model fits one spline per row
// and channel. The longitude channel uses the circular spline so swaths
// crossing the antimeridian interpolate through the seam instead of
// sweeping the long way around.
type RowModel struct {
	cols []float64
	lat  []*numeric.Spline
	lon  []*numeric.Spline
}

// NewRowModel fits the per-row splines. cols holds the tie-point column
// positions, shared by every row; lats and lons hold one slice per scan
// row, each as long as cols.
func NewRowModel(cols []float64, lats, lons [][]float64) (*RowModel, error) {
	if len(lats) == 0 || len(lats) != len(lons) {
		return nil, fmt.Errorf("approx: %d lat rows vs %d lon rows", len(lats), len(lons))
	}
	m := &RowModel{
		cols: cols,
		lat:  make([]*numeric.Spline, len(lats)),
		lon:  make([]*numeric.Spline, len(lats)),
	}
	for i := range lats {
		if len(lats[i]) != len(cols) || len(lons[i]) != len(cols) {
			return nil, fmt.Errorf("approx: row %d has %d/%d tie points, want %d",
				i, len(lats[i]), len(lons[i]), len(cols))
		}
		var err error
		if m.lat[i], err = numeric.NewSpline(cols, lats[i]); err != nil {
			return nil, fmt.Errorf("approx: row %d latitude: %w", i, err)
		}
		if m.lon[i], err = numeric.NewCircularSpline(cols, lons[i]); err != nil {
			return nil, fmt.Errorf("approx: row %d longitude: %w", i, err)
		}
	}
	return m, nil
}

// Rows returns the scan-row count.
func (m *RowModel) Rows() int { return len(m.lat) }

// Eval interpolates the geolocation at a fractional column of one scan
// row. Columns outside the tie-point range clamp to the end points.
func (m *RowModel) Eval(row int, col float64) (lat, lon float64, err error) {
	if row < 0 || row >= len(m.lat) {
		return 0, 0, fmt.Errorf("approx: row %d outside 0..%d", row, len(m.lat)-1)
	}
	return m.lat[row].Eval(col), m.lon[row].Eval(col), nil
}
