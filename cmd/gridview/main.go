package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"math"
	"os"

	"github.com/gen2brain/webp"

	"github.com/mvetter/swathgrid/internal/grid"
	"github.com/mvetter/swathgrid/internal/raster"
)

// gridview renders a gridded raster as a grayscale WebP image for a quick
// visual check: fill cells come out black, valid values stretch linearly
// over 1..255.
func main() {
	var (
		gridPath string
		inType   string
		fill     float64
		lo, hi   float64
		quality  int
	)

	flag.StringVar(&gridPath, "grid", "", "Grid definition file (required)")
	flag.StringVar(&inType, "type", "float32", "Raster element type")
	flag.Float64Var(&fill, "fill", 0, "Fill value rendered as black")
	flag.Float64Var(&lo, "min", math.NaN(), "Stretch minimum (default: data minimum)")
	flag.Float64Var(&hi, "max", math.NaN(), "Stretch maximum (default: data maximum)")
	flag.IntVar(&quality, "quality", 90, "WebP quality 1-100")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: gridview -grid <file.gpd> [flags] <raster-in> <image-out.webp>\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if gridPath == "" || flag.NArg() != 2 {
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
		log.Fatal("gridview needs a fully specified (static) grid")
	}

	typ, err := raster.ParseType(inType)
	if err != nil {
		log.Fatal(err)
	}
	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("Opening raster: %v", err)
	}
	r, err := raster.Read(typ, g.Width, g.Height, f)
	f.Close()
	if err != nil {
		log.Fatalf("Reading raster: %v", err)
	}

	if math.IsNaN(lo) || math.IsNaN(hi) {
		dmin, dmax, ok := dataRange(r, fill)
		if !ok {
			log.Fatal("Raster holds only fill values")
		}
		if math.IsNaN(lo) {
			lo = dmin
		}
		if math.IsNaN(hi) {
			hi = dmax
		}
	}
	if hi <= lo {
		hi = lo + 1
	}

	img := image.NewGray(image.Rect(0, 0, r.Width, r.Height))
	for row := 0; row < r.Height; row++ {
		for col := 0; col < r.Width; col++ {
			v := r.Get(col, row)
			if v == fill {
				continue // black
			}
			s := (v - lo) / (hi - lo)
			if s < 0 {
				s = 0
			}
			if s > 1 {
				s = 1
			}
			img.Pix[row*img.Stride+col] = uint8(1 + s*254)
		}
	}

	out, err := os.Create(flag.Arg(1))
	if err != nil {
		log.Fatalf("Creating image: %v", err)
	}
	if err := webp.Encode(out, img, webp.Options{Quality: quality}); err != nil {
		out.Close()
		log.Fatalf("Encoding WebP: %v", err)
	}
	if err := out.Close(); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s (%dx%d, stretch [%g, %g])", flag.Arg(1), r.Width, r.Height, lo, hi)
}

func dataRange(r *raster.Raster, fill float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for row := 0; row < r.Height; row++ {
		for col := 0; col < r.Width; col++ {
			v := r.Get(col, row)
			if v == fill {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
			ok = true
		}
	}
	return lo, hi, ok
}
