// Package label decodes the flat "Keyword: value" parameter blocks used to
// configure projections and grids. Lines hold one keyword each, `#` and `;`
// start comments running to end of line, and keyword matching ignores case
// and interior whitespace. A literal `?` (or empty) value is the
// "uninitialized" sentinel and reads the same as an absent key.
package label

import (
	"fmt"
	"strconv"
	"strings"
)

// Label is a decoded keyword/value block. Later duplicates of a keyword
// replace earlier ones.
type Label struct {
	values map[string]string
	order  []string
}

// Decode tokenizes a parameter text block into a Label.
func Decode(text string) (*Label, error) {
	l := &Label{values: make(map[string]string)}
	for i, line := range strings.Split(text, "\n") {
		if idx := strings.IndexAny(line, "#;"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("label line %d: missing ':' in %q", i+1, line)
		}
		k := canonical(key)
		if k == "" {
			return nil, fmt.Errorf("label line %d: empty keyword", i+1)
		}
		if _, seen := l.values[k]; !seen {
			l.order = append(l.order, k)
		}
		l.values[k] = strings.TrimSpace(value)
	}
	return l, nil
}

// canonical lower-cases a keyword and collapses interior whitespace so that
// "Map  Reference Latitude" and "map reference latitude" match.
func canonical(key string) string {
	return strings.ToLower(strings.Join(strings.Fields(key), " "))
}

// Has reports whether key is present with an initialized value.
func (l *Label) Has(key string) bool {
	v, ok := l.values[canonical(key)]
	return ok && v != "" && v != "?"
}

// Keys returns the decoded keywords in first-appearance order.
func (l *Label) Keys() []string { return append([]string(nil), l.order...) }

func (l *Label) lookup(key string) (string, bool) {
	v, ok := l.values[canonical(key)]
	if !ok || v == "" || v == "?" {
		return "", false
	}
	return v, true
}

// String returns the value for key, or def when absent or uninitialized.
func (l *Label) String(key, def string) string {
	if v, ok := l.lookup(key); ok {
		return v
	}
	return def
}

// Float returns the numeric value for key, or def when absent.
func (l *Label) Float(key string, def float64) (float64, error) {
	v, ok := l.lookup(key)
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("label %q: bad numeric value %q", key, v)
	}
	return f, nil
}

// Int returns the integer value for key, or def when absent.
func (l *Label) Int(key string, def int) (int, error) {
	v, ok := l.lookup(key)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("label %q: bad integer value %q", key, v)
	}
	return n, nil
}

// Bool returns the boolean value for key, or def when absent. Accepted
// spellings: yes/no, true/false, 1/0 (case-insensitive).
func (l *Label) Bool(key string, def bool) (bool, error) {
	v, ok := l.lookup(key)
	if !ok {
		return def, nil
	}
	switch strings.ToLower(v) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	}
	return def, fmt.Errorf("label %q: bad boolean value %q", key, v)
}

// Lat returns the latitude value for key in degrees, or def when absent.
// A trailing N or S hemisphere suffix overrides the numeric sign, so both
// "45.0S" and "-45.0" read as -45. Values outside [-90, 90] are rejected.
func (l *Label) Lat(key string, def float64) (float64, error) {
	v, ok := l.lookup(key)
	if !ok {
		return def, nil
	}
	deg, err := parseHemisphere(v, "N", "S")
	if err != nil {
		return def, fmt.Errorf("label %q: %v", key, err)
	}
	if deg < -90 || deg > 90 {
		return def, fmt.Errorf("label %q: latitude %g outside [-90, 90]", key, deg)
	}
	return deg, nil
}

// Lon returns the longitude value for key in degrees, or def when absent.
// A trailing E or W suffix overrides the numeric sign. Values outside
// [-180, 360] are rejected; wraparound normalization is left to the caller.
func (l *Label) Lon(key string, def float64) (float64, error) {
	v, ok := l.lookup(key)
	if !ok {
		return def, nil
	}
	deg, err := parseHemisphere(v, "E", "W")
	if err != nil {
		return def, fmt.Errorf("label %q: %v", key, err)
	}
	if deg < -180 || deg > 360 {
		return def, fmt.Errorf("label %q: longitude %g outside [-180, 360]", key, deg)
	}
	return deg, nil
}

func parseHemisphere(v, pos, neg string) (float64, error) {
	sign := 1.0
	upper := strings.ToUpper(v)
	switch {
	case strings.HasSuffix(upper, pos):
		v = strings.TrimSpace(v[:len(v)-1])
	case strings.HasSuffix(upper, neg):
		sign = -1.0
		v = strings.TrimSpace(v[:len(v)-1])
	}
	deg, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("bad angle value %q", v)
	}
	// The suffix names the hemisphere outright; -45S would be ambiguous.
	if sign < 0 {
		deg = -deg
	}
	return deg, nil
}
