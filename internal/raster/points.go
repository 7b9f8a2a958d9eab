package raster

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Point is one scattered observation: a geographic location, a value, and
// an optional magnitude channel (vector data carries speed alongside the
// primary value).
type Point struct {
	Lat, Lon float64
	Value    float64
	Mag      float64
}

// Format selects the point-stream encoding.
type Format int

const (
	// Text is whitespace-separated decimal fields, any line structure.
	Text Format = iota
	// Binary is fixed-width little-endian float32 records.
	Binary
)

// ParseFormat resolves a format name.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "text":
		return Text, nil
	case "binary":
		return Binary, nil
	}
	return 0, fmt.Errorf("unknown point format %q", name)
}

// PointReader streams (lat, lon, value[, magnitude]) records. Fields is 3
// or 4; with 4 the trailing field fills Point.Mag.
type PointReader struct {
	format Format
	fields int
	scan   *bufio.Scanner // text
	r      io.Reader      // binary
}

// NewPointReader wraps src. Fields outside {3, 4} is a configuration error
// surfaced on the first Read.
func NewPointReader(src io.Reader, format Format, fields int) *PointReader {
	pr := &PointReader{format: format, fields: fields}
	if format == Text {
		pr.scan = bufio.NewScanner(src)
		pr.scan.Split(bufio.ScanWords)
	} else {
		pr.r = bufio.NewReader(src)
	}
	return pr
}

// Read returns the next record, or io.EOF at a clean end of stream. A
// stream ending mid-record is an error, not EOF.
func (pr *PointReader) Read() (Point, error) {
	if pr.fields != 3 && pr.fields != 4 {
		return Point{}, fmt.Errorf("point stream: %d fields per record, want 3 or 4", pr.fields)
	}
	if pr.format == Binary {
		return pr.readBinary()
	}
	return pr.readText()
}

func (pr *PointReader) readText() (Point, error) {
	vals := make([]float64, pr.fields)
	for i := range vals {
		if !pr.scan.Scan() {
			if err := pr.scan.Err(); err != nil {
				return Point{}, err
			}
			if i == 0 {
				return Point{}, io.EOF
			}
			return Point{}, fmt.Errorf("point stream: truncated record (%d of %d fields)", i, pr.fields)
		}
		v, err := strconv.ParseFloat(pr.scan.Text(), 64)
		if err != nil {
			return Point{}, fmt.Errorf("point stream: field %d: %w", i+1, err)
		}
		vals[i] = v
	}
	return pack(vals), nil
}

func (pr *PointReader) readBinary() (Point, error) {
	buf := make([]byte, 4*pr.fields)
	if _, err := io.ReadFull(pr.r, buf); err != nil {
		if errors.Is(err, io.EOF) {
			return Point{}, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Point{}, errors.New("point stream: truncated record")
		}
		return Point{}, err
	}
	vals := make([]float64, pr.fields)
	for i := range vals {
		vals[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:])))
	}
	return pack(vals), nil
}

func pack(vals []float64) Point {
	p := Point{Lat: vals[0], Lon: vals[1], Value: vals[2]}
	if len(vals) == 4 {
		p.Mag = vals[3]
	}
	return p
}

// ReadPoints drains the stream into a slice.
func ReadPoints(src io.Reader, format Format, fields int) ([]Point, error) {
	pr := NewPointReader(src, format, fields)
	var pts []Point
	for {
		p, err := pr.Read()
		if errors.Is(err, io.EOF) {
			return pts, nil
		}
		if err != nil {
			return nil, err
		}
		pts = append(pts, p)
	}
}

// PointWriter mirrors PointReader: one record per Write, one line per
// record in text form. Flush must be called before the underlying writer
// is closed.
type PointWriter struct {
	format Format
	fields int
	w      *bufio.Writer
}

func NewPointWriter(dst io.Writer, format Format, fields int) *PointWriter {
	return &PointWriter{format: format, fields: fields, w: bufio.NewWriter(dst)}
}

func (pw *PointWriter) Write(p Point) error {
	if pw.fields != 3 && pw.fields != 4 {
		return fmt.Errorf("point stream: %d fields per record, want 3 or 4", pw.fields)
	}
	vals := []float64{p.Lat, p.Lon, p.Value, p.Mag}[:pw.fields]
	if pw.format == Binary {
		buf := make([]byte, 0, 4*pw.fields)
		for _, v := range vals {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(v)))
		}
		_, err := pw.w.Write(buf)
		return err
	}
	for i, v := range vals {
		if i > 0 {
			if err := pw.w.WriteByte(' '); err != nil {
				return err
			}
		}
		if _, err := pw.w.WriteString(strconv.FormatFloat(v, 'g', -1, 64)); err != nil {
			return err
		}
	}
	return pw.w.WriteByte('\n')
}

func (pw *PointWriter) Flush() error { return pw.w.Flush() }
