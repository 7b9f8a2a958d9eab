package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mvetter/swathgrid/internal/grid"
	"github.com/mvetter/swathgrid/internal/raster"
	"github.com/mvetter/swathgrid/internal/resamp"
)

func main() {
	var (
		gridPath   string
		algorithm  string
		radius     float64
		power      float64
		fill       float64
		validMin   float64
		validMax   float64
		minCount   int
		format     string
		fields     int
		outType    string
		countsPath string
		verbose    bool
	)

	flag.StringVar(&gridPath, "grid", "", "Grid definition file (required)")
	flag.StringVar(&algorithm, "algorithm", "cressman", "Weighting: nearest, bucket, cressman, inverse-distance")
	flag.Float64Var(&radius, "radius", 1, "Search/shell radius in grid cells")
	flag.Float64Var(&power, "power", 2, "Inverse-distance exponent")
	flag.Float64Var(&fill, "fill", 0, "Fill value for cells with no contribution")
	flag.Float64Var(&validMin, "valid-min", 0, "Reject input values below this (with -valid-max)")
	flag.Float64Var(&validMax, "valid-max", 0, "Reject input values above this (with -valid-min)")
	flag.IntVar(&minCount, "min-count", 1, "Cressman minimum contributing points per cell")
	flag.StringVar(&format, "format", "text", "Point stream encoding: text, binary")
	flag.IntVar(&fields, "fields", 3, "Fields per input record: 3 (lat lon value) or 4 (+magnitude)")
	flag.StringVar(&outType, "type", "float32", "Output raster element type")
	flag.StringVar(&countsPath, "counts", "", "Also write the per-cell contribution counts (uint32)")
	flag.BoolVar(&verbose, "verbose", false, "Report point and cell statistics")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: irregrid -grid <file.gpd> [flags] <points-in> <raster-out>\n\n")
		fmt.Fprintf(os.Stderr, "Resample scattered lat/lon/value observations onto a map grid.\n")
		fmt.Fprintf(os.Stderr, "Use \"-\" for stdin/stdout.\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if gridPath == "" || flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}

	g, err := loadGrid(gridPath)
	if err != nil {
		log.Fatalf("Reading grid definition: %v", err)
	}
	alg, err := resamp.ParseAlgorithm(algorithm)
	if err != nil {
		log.Fatal(err)
	}
	typ, err := raster.ParseType(outType)
	if err != nil {
		log.Fatal(err)
	}
	pf, err := raster.ParseFormat(format)
	if err != nil {
		log.Fatal(err)
	}

	in, err := open(flag.Arg(0))
	if err != nil {
		log.Fatalf("Opening point stream: %v", err)
	}
	points, err := raster.ReadPoints(in, pf, fields)
	in.Close()
	if err != nil {
		log.Fatalf("Reading point stream: %v", err)
	}
	if verbose {
		log.Printf("Read %d points", len(points))
	}

	if !g.Resolved() {
		lats := make([]float64, len(points))
		lons := make([]float64, len(points))
		for i, p := range points {
			lats[i], lons[i] = p.Lat, p.Lon
		}
		if err := g.Fit(lats, lons); err != nil {
			log.Fatalf("Fitting dynamic grid: %v", err)
		}
		if verbose {
			log.Printf("Fitted grid: %s", g)
		}
	}

	params := resamp.Params{
		Algorithm: alg,
		Radius:    radius,
		Power:     power,
		Fill:      fill,
		MinCount:  minCount,
	}
	if validMin != 0 || validMax != 0 {
		params.ValidRange = true
		params.ValidMin, params.ValidMax = validMin, validMax
	}

	res, err := resamp.ToGrid(g, points, params)
	if err != nil {
		log.Fatalf("Resampling: %v", err)
	}
	if verbose {
		log.Printf("Skipped %d of %d points", res.Skipped, len(points))
	}

	out, err := res.Values.Quantize(typ)
	if err != nil {
		log.Fatal(err)
	}
	if err := writeRaster(flag.Arg(1), out); err != nil {
		log.Fatalf("Writing raster: %v", err)
	}

	if countsPath != "" {
		counts, err := res.Counts.Quantize(raster.UInt32)
		if err != nil {
			log.Fatal(err)
		}
		if err := writeRaster(countsPath, counts); err != nil {
			log.Fatalf("Writing counts raster: %v", err)
		}
	}
}

func loadGrid(path string) (*grid.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return grid.FromText(string(data))
}

func open(path string) (*os.File, error) {
	if path == "-" {
		return os.Stdin, nil
	}
	return os.Open(path)
}

func writeRaster(path string, r *raster.Raster) error {
	if path == "-" {
		return r.Write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
