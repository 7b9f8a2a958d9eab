// Package grid binds a projection to a pixel lattice and converts between
// fractional pixel (column, row) and geographic (lat, lon) coordinates.
//
// A Definition is static when rows, columns, and origin are all declared up
// front, and dynamic when some of them are left to be resolved from the data
// extent by Fit. Columns grow with +x; rows grow with the sign of CellHeight,
// which is negative for the usual top-down raster layout.
package grid

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/mvetter/swathgrid/internal/numeric"
	"github.com/mvetter/swathgrid/internal/proj"
)

// DefaultCellCap bounds Width*Height so a malformed definition fails before
// any allocation sized from it.
const DefaultCellCap = 1 << 28

var (
	// ErrOffGrid marks a point that projects outside [0,Width)x[0,Height).
	// GeoToPixel still returns the out-of-range coordinates with it.
	ErrOffGrid = errors.New("point off grid")

	// ErrUnresolved marks a pixel mapping attempted on a dynamic grid
	// before Fit has run.
	ErrUnresolved = errors.New("dynamic grid not resolved")
)

// Definition is a projection plus pixel geometry. Construct with NewStatic,
// NewDynamic, or Parse; the zero value is not usable.
type Definition struct {
	Projection *proj.Projection

	Width, Height int // cells

	CellWidth  float64 // projection units (km) per column step, > 0
	CellHeight float64 // km per row step, negative for top-down grids

	// Projection coordinates of the outer corner of cell (0, 0).
	OriginX, OriginY float64

	// CellCap overrides DefaultCellCap when > 0.
	CellCap int

	haveExtent bool // width and height are set
	haveOrigin bool
}

// NewStatic builds a fully specified grid.
func NewStatic(p *proj.Projection, width, height int, cellWidth, cellHeight, originX, originY float64) (*Definition, error) {
	d := &Definition{
		Projection: p,
		Width:      width, Height: height,
		CellWidth: cellWidth, CellHeight: cellHeight,
		OriginX: originX, OriginY: originY,
		haveExtent: true,
		haveOrigin: true,
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// NewDynamic builds a grid with declared resolution whose extent and origin
// are resolved later by Fit.
func NewDynamic(p *proj.Projection, cellWidth, cellHeight float64) (*Definition, error) {
	d := &Definition{
		Projection: p,
		CellWidth:  cellWidth, CellHeight: cellHeight,
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Definition) validate() error {
	if d.Projection == nil {
		return errors.New("grid: no projection")
	}
	if d.CellWidth <= 0 {
		return fmt.Errorf("grid: cell width %g must be positive", d.CellWidth)
	}
	if d.CellHeight == 0 {
		return errors.New("grid: cell height must be non-zero")
	}
	if d.haveExtent {
		if d.Width <= 0 || d.Height <= 0 {
			return fmt.Errorf("grid: extent %dx%d must be positive", d.Width, d.Height)
		}
		if limit := d.cellCap(); d.Width > limit/d.Height {
			return fmt.Errorf("grid: %dx%d exceeds the %d-cell cap", d.Width, d.Height, limit)
		}
	}
	return nil
}

func (d *Definition) cellCap() int {
	if d.CellCap > 0 {
		return d.CellCap
	}
	return DefaultCellCap
}

// Resolved reports whether pixel mapping is possible: every static grid is
// resolved, a dynamic one only after Fit.
func (d *Definition) Resolved() bool { return d.haveExtent && d.haveOrigin }

// Cells returns Width * Height.
func (d *Definition) Cells() int { return d.Width * d.Height }

// GeoToPixel maps a geographic point to fractional (column, row). The
// returned coordinates are valid even under ErrOffGrid, so callers that
// search a neighborhood around the point can still use them.
func (d *Definition) GeoToPixel(lat, lon float64) (col, row float64, err error) {
	if !d.Resolved() {
		return 0, 0, ErrUnresolved
	}
	x, y, err := d.Projection.Forward(lat, lon)
	if err != nil {
		return 0, 0, err
	}
	col = (x - d.OriginX) / d.CellWidth
	row = (y - d.OriginY) / d.CellHeight
	if col < 0 || col >= float64(d.Width) || row < 0 || row >= float64(d.Height) {
		return col, row, ErrOffGrid
	}
	return col, row, nil
}

// PixelToGeo maps a fractional (column, row) back to geographic degrees.
// It is defined for any finite pixel coordinate, on or off the grid.
func (d *Definition) PixelToGeo(col, row float64) (lat, lon float64, err error) {
	if !d.Resolved() {
		return 0, 0, ErrUnresolved
	}
	x := d.OriginX + col*d.CellWidth
	y := d.OriginY + row*d.CellHeight
	return d.Projection.Inverse(x, y)
}

// CellCenter returns the geographic coordinates of the center of cell
// (col, row).
func (d *Definition) CellCenter(col, row int) (lat, lon float64, err error) {
	return d.PixelToGeo(float64(col)+0.5, float64(row)+0.5)
}

// Fit resolves a dynamic grid from the projected extent of the given points
// so that every point whose forward transform succeeds lands inside
// [0,Width)x[0,Height) at the declared resolution. Points whose forward
// transform fails are skipped; a convergence-capped transform still
// contributes its best-estimate coordinates. Declared extent or origin
// fields are kept and only the missing ones derived. Fitting an already
// resolved grid is an error, as is a point set with no projectable points.
func (d *Definition) Fit(lats, lons []float64) error {
	if d.Resolved() {
		return errors.New("grid: already resolved")
	}
	if len(lats) != len(lons) {
		return fmt.Errorf("grid: %d latitudes vs %d longitudes", len(lats), len(lons))
	}

	xs := make([]float64, 0, len(lats))
	ys := make([]float64, 0, len(lats))
	for i := range lats {
		x, y, err := d.Projection.Forward(lats[i], lons[i])
		if err != nil {
			// An iteration-budget overrun still returns usable coordinates;
			// everything else (domain, accuracy) returns none.
			var ce *numeric.ConvergenceError
			if !errors.As(err, &ce) {
				continue
			}
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	if len(xs) == 0 {
		return errors.New("grid: no projectable points to fit")
	}

	minX, maxX := floats.Min(xs), floats.Max(xs)
	minY, maxY := floats.Min(ys), floats.Max(ys)

	if !d.haveOrigin {
		// The origin corner is the minimum along +x and, for top-down
		// grids, the maximum along y.
		d.OriginX = minX
		if d.CellHeight < 0 {
			d.OriginY = maxY
		} else {
			d.OriginY = minY
		}
		d.haveOrigin = true
	}
	if !d.haveExtent {
		d.Width = spanCells(d.OriginX, minX, maxX, d.CellWidth)
		d.Height = spanCells(d.OriginY, minY, maxY, d.CellHeight)
		d.haveExtent = true
	}
	return d.validate()
}

// spanCells returns the cell count needed to cover [min, max] from origin
// at the given (possibly negative) cell step.
func spanCells(origin, min, max, step float64) int {
	far := (max - origin) / step
	if step < 0 {
		far = (min - origin) / step
	}
	if far < 0 {
		far = 0
	}
	return int(far) + 1
}

func (d *Definition) String() string {
	if !d.Resolved() {
		return fmt.Sprintf("dynamic %s grid, %g x %g km cells",
			d.Projection.Kind(), d.CellWidth, d.CellHeight)
	}
	return fmt.Sprintf("%s grid, %d x %d cells of %g x %g km at (%g, %g)",
		d.Projection.Kind(), d.Width, d.Height,
		d.CellWidth, d.CellHeight, d.OriginX, d.OriginY)
}
