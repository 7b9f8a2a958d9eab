// Package raster holds the flat row-major exchange buffers produced and
// consumed by the resampling components, and the point-stream readers and
// writers for scattered observations.
package raster

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

// maxCells bounds allocations sized from externally supplied dimensions.
const maxCells = 1 << 28

// Type is the element type of a raster's on-disk form.
type Type int

const (
	Int8 Type = iota
	UInt8
	Int16
	UInt16
	Int32
	UInt32
	Float32
)

var typeNames = map[Type]string{
	Int8:    "int8",
	UInt8:   "uint8",
	Int16:   "int16",
	UInt16:  "uint16",
	Int32:   "int32",
	UInt32:  "uint32",
	Float32: "float32",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Size returns the element width in bytes.
func (t Type) Size() int {
	switch t {
	case Int8, UInt8:
		return 1
	case Int16, UInt16:
		return 2
	}
	return 4
}

// ParseType resolves an element type name such as "uint16" or "Float32".
func ParseType(name string) (Type, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for t, n := range typeNames {
		if n == want {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown raster type %q", name)
}

// bounds returns the saturation range for integral types.
func (t Type) bounds() (lo, hi float64) {
	switch t {
	case Int8:
		return math.MinInt8, math.MaxInt8
	case UInt8:
		return 0, math.MaxUint8
	case Int16:
		return math.MinInt16, math.MaxInt16
	case UInt16:
		return 0, math.MaxUint16
	case Int32:
		return math.MinInt32, math.MaxInt32
	case UInt32:
		return 0, math.MaxUint32
	}
	return math.Inf(-1), math.Inf(1)
}

// Raster is a row-major grid of values carried as float64 in memory and
// quantized to Type on Set, so Get always returns exactly what Write will
// serialize.
type Raster struct {
	Width, Height int
	Type          Type

	data []float64
}

// New allocates a zero-filled raster. Dimensions are validated against the
// cell cap before allocation.
func New(t Type, width, height int) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("raster: extent %dx%d must be positive", width, height)
	}
	if width > maxCells/height {
		return nil, fmt.Errorf("raster: %dx%d exceeds the %d-cell cap", width, height, maxCells)
	}
	return &Raster{
		Width: width, Height: height, Type: t,
		data: make([]float64, width*height),
	}, nil
}

// Get returns the value at (col, row). Out-of-range indices panic, as with
// a slice.
func (r *Raster) Get(col, row int) float64 {
	return r.data[row*r.Width+col]
}

// Set stores v at (col, row), rounded and saturated to the raster's type.
// NaN quantizes to zero for integral types.
func (r *Raster) Set(col, row int, v float64) {
	r.data[row*r.Width+col] = r.quantize(v)
}

// Fill sets every cell to v.
func (r *Raster) Fill(v float64) {
	q := r.quantize(v)
	for i := range r.data {
		r.data[i] = q
	}
}

func (r *Raster) quantize(v float64) float64 {
	if r.Type == Float32 {
		return float64(float32(v))
	}
	if math.IsNaN(v) {
		return 0
	}
	lo, hi := r.Type.bounds()
	v = math.Round(v)
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Write serializes the raster as flat row-major little-endian elements.
func (r *Raster) Write(w io.Writer) error {
	buf := make([]byte, r.Type.Size()*r.Width)
	for row := 0; row < r.Height; row++ {
		b := buf[:0]
		for col := 0; col < r.Width; col++ {
			b = appendElement(b, r.Type, r.Get(col, row))
		}
		if _, err := w.Write(b); err != nil {
			return fmt.Errorf("raster: write row %d: %w", row, err)
		}
	}
	return nil
}

func appendElement(b []byte, t Type, v float64) []byte {
	switch t {
	case Int8:
		return append(b, byte(int8(v)))
	case UInt8:
		return append(b, uint8(v))
	case Int16:
		return binary.LittleEndian.AppendUint16(b, uint16(int16(v)))
	case UInt16:
		return binary.LittleEndian.AppendUint16(b, uint16(v))
	case Int32:
		return binary.LittleEndian.AppendUint32(b, uint32(int32(v)))
	case UInt32:
		return binary.LittleEndian.AppendUint32(b, uint32(v))
	}
	return binary.LittleEndian.AppendUint32(b, math.Float32bits(float32(v)))
}

// Read deserializes a raster of known shape from its flat binary form.
func Read(t Type, width, height int, src io.Reader) (*Raster, error) {
	r, err := New(t, width, height)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, t.Size()*width)
	for row := 0; row < height; row++ {
		if _, err := io.ReadFull(src, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("raster: short input at row %d", row)
			}
			return nil, fmt.Errorf("raster: read row %d: %w", row, err)
		}
		for col := 0; col < width; col++ {
			r.data[row*width+col] = element(t, buf[col*t.Size():])
		}
	}
	return r, nil
}

func element(t Type, b []byte) float64 {
	switch t {
	case Int8:
		return float64(int8(b[0]))
	case UInt8:
		return float64(b[0])
	case Int16:
		return float64(int16(binary.LittleEndian.Uint16(b)))
	case UInt16:
		return float64(binary.LittleEndian.Uint16(b))
	case Int32:
		return float64(int32(binary.LittleEndian.Uint32(b)))
	case UInt32:
		return float64(binary.LittleEndian.Uint32(b))
	}
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
}

// Plane is a float64 working buffer with the same layout as a Raster,
// used for resampling accumulators where quantization would lose weight
// precision.
type Plane struct {
	Width, Height int
	Data          []float64
}

// NewPlane allocates a plane with every cell set to v.
func NewPlane(width, height int, v float64) *Plane {
	p := &Plane{Width: width, Height: height, Data: make([]float64, width*height)}
	if v != 0 {
		for i := range p.Data {
			p.Data[i] = v
		}
	}
	return p
}

func (p *Plane) At(col, row int) float64     { return p.Data[row*p.Width+col] }
func (p *Plane) Set(col, row int, v float64) { p.Data[row*p.Width+col] = v }

// Quantize converts the plane to a raster of the given type.
func (p *Plane) Quantize(t Type) (*Raster, error) {
	r, err := New(t, p.Width, p.Height)
	if err != nil {
		return nil, err
	}
	for i, v := range p.Data {
		r.data[i] = r.quantize(v)
	}
	return r, nil
}

// Plane copies the raster into a fresh float64 working plane.
func (r *Raster) Plane() *Plane {
	p := &Plane{Width: r.Width, Height: r.Height, Data: make([]float64, len(r.data))}
	copy(p.Data, r.data)
	return p
}
