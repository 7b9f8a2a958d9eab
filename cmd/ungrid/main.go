package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/mvetter/swathgrid/internal/grid"
	"github.com/mvetter/swathgrid/internal/raster"
	"github.com/mvetter/swathgrid/internal/resamp"
)

func main() {
	var (
		gridPath   string
		rasterPath string
		inType     string
		algorithm  string
		radius     float64
		power      float64
		fill       float64
		validMin   float64
		validMax   float64
		cells      bool
		window     string
		skipFill   bool
		format     string
		fields     int
	)

	flag.StringVar(&gridPath, "grid", "", "Grid definition file (required)")
	flag.StringVar(&rasterPath, "raster", "", "Gridded raster file (required)")
	flag.StringVar(&inType, "type", "float32", "Raster element type")
	flag.StringVar(&algorithm, "algorithm", "bilinear", "Interpolation: nearest, average, bilinear, cubic, inverse-distance")
	flag.Float64Var(&radius, "radius", 1, "Shell radius in grid cells (average, inverse-distance)")
	flag.Float64Var(&power, "power", 2, "Inverse-distance exponent")
	flag.Float64Var(&fill, "fill", 0, "Fill value marking invalid cells and failed samples")
	flag.Float64Var(&validMin, "valid-min", 0, "Ignore cell values below this (with -valid-max)")
	flag.Float64Var(&validMax, "valid-max", 0, "Ignore cell values above this (with -valid-min)")
	flag.BoolVar(&cells, "cells", false, "Emit every cell center instead of sampling at input points")
	flag.StringVar(&window, "window", "", "Clip -cells output to latmin,latmax,lonmin,lonmax")
	flag.BoolVar(&skipFill, "skip-fill", false, "Suppress fill-valued cells in -cells output")
	flag.StringVar(&format, "format", "text", "Point stream encoding: text, binary")
	flag.IntVar(&fields, "fields", 3, "Fields per point record: 3 or 4")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ungrid -grid <file.gpd> -raster <file> [flags] [<points-in>] <points-out>\n\n")
		fmt.Fprintf(os.Stderr, "Sample a gridded raster at arbitrary points, or restate it as a\n")
		fmt.Fprintf(os.Stderr, "point list with -cells. Use \"-\" for stdin/stdout.\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	wantArgs := 2
	if cells {
		wantArgs = 1
	}
	if gridPath == "" || rasterPath == "" || flag.NArg() != wantArgs {
		flag.Usage()
		os.Exit(1)
	}

	data, err := os.ReadFile(gridPath)
	if err != nil {
		log.Fatalf("Reading grid definition: %v", err)
	}
	g, err := grid.FromText(string(data))
	if err != nil {
		log.Fatalf("Parsing grid definition: %v", err)
	}
	if !g.Resolved() {
		log.Fatal("ungrid needs a fully specified (static) grid")
	}

	typ, err := raster.ParseType(inType)
	if err != nil {
		log.Fatal(err)
	}
	rf, err := os.Open(rasterPath)
	if err != nil {
		log.Fatalf("Opening raster: %v", err)
	}
	r, err := raster.Read(typ, g.Width, g.Height, rf)
	rf.Close()
	if err != nil {
		log.Fatalf("Reading raster: %v", err)
	}

	params := resamp.Params{
		Radius:   radius,
		Power:    power,
		Fill:     fill,
		SkipFill: skipFill,
	}
	if validMin != 0 || validMax != 0 {
		params.ValidRange = true
		params.ValidMin, params.ValidMax = validMin, validMax
	}

	var out []raster.Point
	if cells {
		if window != "" {
			w, err := parseWindow(window)
			if err != nil {
				log.Fatal(err)
			}
			params.Window = w
		}
		out, err = resamp.CellCenters(g, r, params)
		if err != nil {
			log.Fatalf("Emitting cell centers: %v", err)
		}
	} else {
		params.Algorithm, err = resamp.ParseAlgorithm(algorithm)
		if err != nil {
			log.Fatal(err)
		}
		pf, err := raster.ParseFormat(format)
		if err != nil {
			log.Fatal(err)
		}
		in, err := openArg(flag.Arg(0))
		if err != nil {
			log.Fatalf("Opening point stream: %v", err)
		}
		points, err := raster.ReadPoints(in, pf, fields)
		in.Close()
		if err != nil {
			log.Fatalf("Reading point stream: %v", err)
		}
		out, err = resamp.FromGrid(g, r, points, params)
		if err != nil {
			log.Fatalf("Sampling: %v", err)
		}
	}

	pf, err := raster.ParseFormat(format)
	if err != nil {
		log.Fatal(err)
	}
	dst := os.Stdout
	outPath := flag.Arg(wantArgs - 1)
	if outPath != "-" {
		f, err := os.Create(outPath)
		if err != nil {
			log.Fatalf("Creating output: %v", err)
		}
		defer f.Close()
		dst = f
	}
	pw := raster.NewPointWriter(dst, pf, 3)
	for _, p := range out {
		if err := pw.Write(p); err != nil {
			log.Fatalf("Writing points: %v", err)
		}
	}
	if err := pw.Flush(); err != nil {
		log.Fatalf("Writing points: %v", err)
	}
}

func parseWindow(s string) (*resamp.Window, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("window %q: want latmin,latmax,lonmin,lonmax", s)
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("window %q: %v", s, err)
		}
		vals[i] = v
	}
	return &resamp.Window{
		LatMin: vals[0], LatMax: vals[1],
		LonMin: vals[2], LonMax: vals[3],
	}, nil
}

func openArg(path string) (*os.File, error) {
	if path == "-" {
		return os.Stdin, nil
	}
	return os.Open(path)
}
