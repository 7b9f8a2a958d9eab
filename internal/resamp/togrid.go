package resamp

import (
	"fmt"
	"math"

	"github.com/mvetter/swathgrid/internal/grid"
	"github.com/mvetter/swathgrid/internal/raster"
)

// ToGrid bins scattered observations onto the grid. All algorithms share
// the same two-phase shape: accumulate every point into the candidate cells
// within the shell radius of its fractional grid position, then normalize
// per cell, substituting the fill value where nothing contributed.
//
// Per-point projection failures never abort the pass; the point is counted
// in Result.Skipped and the scan continues.
func ToGrid(g *grid.Definition, points []raster.Point, params Params) (*Result, error) {
	if err := checkGrid(g); err != nil {
		return nil, err
	}
	params.defaults()
	if err := params.validate(); err != nil {
		return nil, err
	}
	switch params.Algorithm {
	case Nearest, Bucket, Cressman, InverseDistance:
	default:
		return nil, fmt.Errorf("resamp: %s cannot grid scattered points", params.Algorithm)
	}

	w, h := g.Width, g.Height
	acc := &accumulator{
		sum:    raster.NewPlane(w, h, 0),
		weight: raster.NewPlane(w, h, 0),
		counts: raster.NewPlane(w, h, 0),
	}
	if params.Algorithm == Nearest {
		// Best-distance plane starts impossibly far so any real point wins.
		acc.best = raster.NewPlane(w, h, math.Inf(1))
		acc.value = raster.NewPlane(w, h, params.Fill)
	}
	if params.Algorithm == InverseDistance {
		acc.exact = make([]bool, w*h)
	}

	res := &Result{Counts: acc.counts}
	for _, pt := range points {
		if params.rejects(pt.Value) {
			res.Skipped++
			continue
		}
		col, row, err := g.GeoToPixel(pt.Lat, pt.Lon)
		if err != nil {
			res.Skipped++
			continue
		}
		accumulate(acc, g, params, col, row, pt.Value)
	}

	res.Values = normalize(acc, g, params)
	return res, nil
}

type accumulator struct {
	sum    *raster.Plane
	weight *raster.Plane
	counts *raster.Plane

	// nearest-neighbor only
	best  *raster.Plane
	value *raster.Plane

	// inverse-distance exact-hit pins
	exact []bool
}

func accumulate(acc *accumulator, g *grid.Definition, params Params, col, row float64, v float64) {
	ci, ri := int(col), int(row)

	if params.Radius == 0 && params.Algorithm != Nearest {
		// Single-cell assignment into the containing cell, unweighted.
		acc.sum.Set(ci, ri, acc.sum.At(ci, ri)+v)
		acc.weight.Set(ci, ri, acc.weight.At(ci, ri)+1)
		acc.counts.Set(ci, ri, acc.counts.At(ci, ri)+1)
		return
	}

	reach := int(math.Ceil(params.Radius))
	c0, c1 := clip(ci-reach, g.Width), clip(ci+reach, g.Width)
	r0, r1 := clip(ri-reach, g.Height), clip(ri+reach, g.Height)

	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			d := cellDistance(col, row, c, r)
			if params.Radius > 0 && d > params.Radius {
				continue
			}
			switch params.Algorithm {
			case Nearest:
				if d < acc.best.At(c, r) {
					acc.best.Set(c, r, d)
					acc.value.Set(c, r, v)
				}
				acc.counts.Set(c, r, acc.counts.At(c, r)+1)
			case Bucket:
				acc.sum.Set(c, r, acc.sum.At(c, r)+v)
				acc.weight.Set(c, r, acc.weight.At(c, r)+1)
				acc.counts.Set(c, r, acc.counts.At(c, r)+1)
			case Cressman:
				r2 := params.Radius * params.Radius
				w := (r2 - d*d) / (r2 + d*d)
				acc.sum.Set(c, r, acc.sum.At(c, r)+w*v)
				acc.weight.Set(c, r, acc.weight.At(c, r)+w)
				acc.counts.Set(c, r, acc.counts.At(c, r)+1)
			case InverseDistance:
				i := r*g.Width + c
				if d < exactHitEps {
					// A direct hit pins the cell; distance weighting would
					// blow up, and no farther point may dilute it.
					if acc.exact[i] {
						acc.sum.Data[i] += v
						acc.weight.Data[i]++
					} else {
						acc.exact[i] = true
						acc.sum.Data[i] = v
						acc.weight.Data[i] = 1
					}
				} else if !acc.exact[i] {
					w := math.Pow(d, -params.Power)
					acc.sum.Data[i] += w * v
					acc.weight.Data[i] += w
				}
				acc.counts.Set(c, r, acc.counts.At(c, r)+1)
			}
		}
	}
}

func normalize(acc *accumulator, g *grid.Definition, params Params) *raster.Plane {
	out := raster.NewPlane(g.Width, g.Height, params.Fill)
	for i := range out.Data {
		switch params.Algorithm {
		case Nearest:
			out.Data[i] = acc.value.Data[i]
		case Cressman:
			if int(acc.counts.Data[i]) >= params.MinCount && acc.weight.Data[i] > 0 {
				out.Data[i] = acc.sum.Data[i] / acc.weight.Data[i]
			}
		default:
			if acc.weight.Data[i] > 0 {
				out.Data[i] = acc.sum.Data[i] / acc.weight.Data[i]
			}
		}
	}
	return out
}

func clip(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
