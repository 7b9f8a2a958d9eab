package main

import (
	"fmt"
	"os"

	"github.com/mvetter/swathgrid/internal/grid"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: gridinfo <file.gpd>\n")
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	g, err := grid.FromText(string(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("File: %s\n", os.Args[1])
	fmt.Printf("Projection: %s\n", g.Projection.Kind())
	p := g.Projection.Params()
	fmt.Printf("Reference: lat=%g lon=%g\n", p.Lat0, p.Lon0)
	if p.Lat1 != 0 || p.Lon1 != 0 {
		fmt.Printf("Second reference: lat=%g lon=%g\n", p.Lat1, p.Lon1)
	}
	if p.Kind.Ellipsoidal() {
		fmt.Printf("Ellipsoid: a=%g km, e=%g\n", p.EquatorialRadius, p.Eccentricity)
	} else {
		fmt.Printf("Sphere: R=%g km\n", p.EquatorialRadius)
	}
	if p.Rotation != 0 {
		fmt.Printf("Rotation: %g deg\n", p.Rotation)
	}
	if p.FalseEasting != 0 || p.FalseNorthing != 0 {
		fmt.Printf("False origin: %g, %g km\n", p.FalseEasting, p.FalseNorthing)
	}

	if !g.Resolved() {
		fmt.Printf("Geometry: dynamic, %g x %g km cells (extent from data)\n",
			g.CellWidth, g.CellHeight)
		return
	}

	fmt.Printf("Geometry: %d x %d cells of %g x %g km\n",
		g.Width, g.Height, g.CellWidth, g.CellHeight)
	fmt.Printf("Map origin: %g, %g km\n", g.OriginX, g.OriginY)

	// Corner and center coordinates, clockwise from the grid origin.
	corners := []struct {
		name     string
		col, row float64
	}{
		{"upper left ", 0, 0},
		{"upper right", float64(g.Width), 0},
		{"lower right", float64(g.Width), float64(g.Height)},
		{"lower left ", 0, float64(g.Height)},
		{"center     ", float64(g.Width) / 2, float64(g.Height) / 2},
	}
	fmt.Println("Corners:")
	for _, c := range corners {
		lat, lon, err := g.PixelToGeo(c.col, c.row)
		if err != nil {
			fmt.Printf("  %s: %v\n", c.name, err)
			continue
		}
		fmt.Printf("  %s: lat=%9.4f lon=%9.4f\n", c.name, lat, lon)
	}
}
