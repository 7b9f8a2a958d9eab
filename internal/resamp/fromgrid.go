package resamp

import (
	"fmt"
	"math"

	"github.com/mvetter/swathgrid/internal/grid"
	"github.com/mvetter/swathgrid/internal/raster"
)

// FromGrid samples the raster at each point's location and returns the
// points with their Value replaced by the interpolated result. A point the
// grid cannot resolve (off grid, outside the projection domain) or with no
// valid contributing cells comes back holding the fill value.
//
// Fill-valued cells and cells outside the valid range never contribute.
func FromGrid(g *grid.Definition, r *raster.Raster, points []raster.Point, params Params) ([]raster.Point, error) {
	if err := checkGrid(g); err != nil {
		return nil, err
	}
	if r.Width != g.Width || r.Height != g.Height {
		return nil, fmt.Errorf("resamp: raster %dx%d does not match grid %dx%d",
			r.Width, r.Height, g.Width, g.Height)
	}
	params.defaults()
	if err := params.validate(); err != nil {
		return nil, err
	}
	switch params.Algorithm {
	case Nearest, ShellAverage, Bilinear, Cubic, InverseDistance:
	default:
		return nil, fmt.Errorf("resamp: %s cannot extract from a grid", params.Algorithm)
	}

	out := make([]raster.Point, len(points))
	for i, pt := range points {
		out[i] = pt
		out[i].Value = params.Fill

		col, row, err := g.GeoToPixel(pt.Lat, pt.Lon)
		if err != nil {
			continue
		}
		if v, ok := sample(r, params, col, row); ok {
			out[i].Value = v
		}
	}
	return out, nil
}

// usable reports whether the cell value may contribute to a sample.
func usable(params Params, v float64) bool {
	return v != params.Fill && !params.rejects(v)
}

func sample(r *raster.Raster, params Params, col, row float64) (float64, bool) {
	switch params.Algorithm {
	case Nearest:
		v := r.Get(clip(int(col), r.Width), clip(int(row), r.Height))
		if !usable(params, v) {
			return 0, false
		}
		return v, true
	case ShellAverage:
		return shellAverage(r, params, col, row)
	case Bilinear:
		return bilinear(r, params, col, row)
	case Cubic:
		return cubic(r, params, col, row)
	case InverseDistance:
		return inverseDistance(r, params, col, row)
	}
	return 0, false
}

// shellAverage is the unweighted mean of usable cells within the shell
// radius; radius 0 degenerates to the containing cell.
func shellAverage(r *raster.Raster, params Params, col, row float64) (float64, bool) {
	ci, ri := int(col), int(row)
	if params.Radius == 0 {
		v := r.Get(ci, ri)
		if !usable(params, v) {
			return 0, false
		}
		return v, true
	}

	reach := int(math.Ceil(params.Radius))
	sum, n := 0.0, 0
	for rr := clip(ri-reach, r.Height); rr <= clip(ri+reach, r.Height); rr++ {
		for cc := clip(ci-reach, r.Width); cc <= clip(ci+reach, r.Width); cc++ {
			if cellDistance(col, row, cc, rr) > params.Radius {
				continue
			}
			if v := r.Get(cc, rr); usable(params, v) {
				sum += v
				n++
			}
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// bilinear interpolates the four cell centers around the sample position.
// All four must lie on the grid and be usable.
func bilinear(r *raster.Raster, params Params, col, row float64) (float64, bool) {
	u, v := col-0.5, row-0.5
	c0, r0 := int(math.Floor(u)), int(math.Floor(v))
	fu, fv := u-float64(c0), v-float64(r0)

	if c0 < 0 || c0+1 >= r.Width || r0 < 0 || r0+1 >= r.Height {
		return 0, false
	}
	v00, v10 := r.Get(c0, r0), r.Get(c0+1, r0)
	v01, v11 := r.Get(c0, r0+1), r.Get(c0+1, r0+1)
	for _, w := range []float64{v00, v10, v01, v11} {
		if !usable(params, w) {
			return 0, false
		}
	}
	top := v00*(1-fu) + v10*fu
	bot := v01*(1-fu) + v11*fu
	return top*(1-fv) + bot*fv, true
}

// catmullRom returns the four cubic-convolution kernel weights for a
// fractional offset f in [0, 1) from the second sample.
func catmullRom(f float64) [4]float64 {
	f2 := f * f
	f3 := f2 * f
	return [4]float64{
		0.5 * (-f3 + 2*f2 - f),
		0.5 * (3*f3 - 5*f2 + 2),
		0.5 * (-3*f3 + 4*f2 + f),
		0.5 * (f3 - f2),
	}
}

// cubic interpolates the sixteen cell centers around the sample position
// with the Catmull-Rom kernel. The full 4x4 neighborhood must lie on the
// grid and be usable.
func cubic(r *raster.Raster, params Params, col, row float64) (float64, bool) {
	u, v := col-0.5, row-0.5
	c0, r0 := int(math.Floor(u)), int(math.Floor(v))
	wu := catmullRom(u - float64(c0))
	wv := catmullRom(v - float64(r0))

	if c0-1 < 0 || c0+2 >= r.Width || r0-1 < 0 || r0+2 >= r.Height {
		return 0, false
	}
	var acc float64
	for j := 0; j < 4; j++ {
		for i := 0; i < 4; i++ {
			cell := r.Get(c0-1+i, r0-1+j)
			if !usable(params, cell) {
				return 0, false
			}
			acc += wu[i] * wv[j] * cell
		}
	}
	return acc, true
}

// inverseDistance weights usable cells within the radius by d^-p, with a
// direct hit on a cell center short-circuiting to that cell's value.
func inverseDistance(r *raster.Raster, params Params, col, row float64) (float64, bool) {
	ci, ri := int(col), int(row)
	radius := params.Radius
	if radius == 0 {
		v := r.Get(ci, ri)
		if !usable(params, v) {
			return 0, false
		}
		return v, true
	}

	reach := int(math.Ceil(radius))
	sum, wsum := 0.0, 0.0
	for rr := clip(ri-reach, r.Height); rr <= clip(ri+reach, r.Height); rr++ {
		for cc := clip(ci-reach, r.Width); cc <= clip(ci+reach, r.Width); cc++ {
			d := cellDistance(col, row, cc, rr)
			if d > radius {
				continue
			}
			v := r.Get(cc, rr)
			if !usable(params, v) {
				continue
			}
			if d < exactHitEps {
				return v, true
			}
			w := math.Pow(d, -params.Power)
			sum += w * v
			wsum += w
		}
	}
	if wsum == 0 {
		return 0, false
	}
	return sum / wsum, true
}

// CellCenters restates the raster as one point per cell center, optionally
// clipped to a geographic window and optionally suppressing fill cells.
func CellCenters(g *grid.Definition, r *raster.Raster, params Params) ([]raster.Point, error) {
	if err := checkGrid(g); err != nil {
		return nil, err
	}
	if r.Width != g.Width || r.Height != g.Height {
		return nil, fmt.Errorf("resamp: raster %dx%d does not match grid %dx%d",
			r.Width, r.Height, g.Width, g.Height)
	}

	var pts []raster.Point
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			v := r.Get(col, row)
			if params.SkipFill && v == params.Fill {
				continue
			}
			lat, lon, err := g.CellCenter(col, row)
			if err != nil {
				continue
			}
			if params.Window != nil && !params.Window.Contains(lat, lon) {
				continue
			}
			pts = append(pts, raster.Point{Lat: lat, Lon: lon, Value: v})
		}
	}
	return pts, nil
}
