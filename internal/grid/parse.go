package grid

import (
	"fmt"

	"github.com/mvetter/swathgrid/internal/label"
	"github.com/mvetter/swathgrid/internal/proj"
)

// Label keywords for the pixel-geometry half of a grid definition; the
// projection half uses the "Map ..." keywords handled by proj.
const (
	keyWidth      = "Grid Width"
	keyHeight     = "Grid Height"
	keyCellWidth  = "Grid Cell Width"
	keyCellHeight = "Grid Cell Height"
	keyOriginX    = "Grid Map Origin X"
	keyOriginY    = "Grid Map Origin Y"
	keyCellCap    = "Grid Cell Cap"
)

// Parse builds a Definition from a combined projection+grid label block.
// The cell width is required; the cell height defaults to its negation
// (top-down rows). Width/height and the origin pair may each be omitted or
// left uninitialized ("?") to request a dynamic grid resolved by Fit.
func Parse(l *label.Label) (*Definition, error) {
	p, err := proj.FromLabel(l)
	if err != nil {
		return nil, err
	}

	if !l.Has(keyCellWidth) {
		return nil, fmt.Errorf("grid: missing %q", keyCellWidth)
	}
	d := &Definition{Projection: p}
	if d.CellWidth, err = l.Float(keyCellWidth, 0); err != nil {
		return nil, err
	}
	if d.CellHeight, err = l.Float(keyCellHeight, -d.CellWidth); err != nil {
		return nil, err
	}

	if l.Has(keyWidth) != l.Has(keyHeight) {
		return nil, fmt.Errorf("grid: %q and %q must be given together", keyWidth, keyHeight)
	}
	if l.Has(keyWidth) {
		if d.Width, err = l.Int(keyWidth, 0); err != nil {
			return nil, err
		}
		if d.Height, err = l.Int(keyHeight, 0); err != nil {
			return nil, err
		}
		d.haveExtent = true
	}

	if l.Has(keyOriginX) != l.Has(keyOriginY) {
		return nil, fmt.Errorf("grid: %q and %q must be given together", keyOriginX, keyOriginY)
	}
	if l.Has(keyOriginX) {
		if d.OriginX, err = l.Float(keyOriginX, 0); err != nil {
			return nil, err
		}
		if d.OriginY, err = l.Float(keyOriginY, 0); err != nil {
			return nil, err
		}
		d.haveOrigin = true
	}

	if d.CellCap, err = l.Int(keyCellCap, 0); err != nil {
		return nil, err
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// FromText decodes a grid definition text block and parses it.
func FromText(text string) (*Definition, error) {
	l, err := label.Decode(text)
	if err != nil {
		return nil, err
	}
	return Parse(l)
}
