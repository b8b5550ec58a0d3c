package features

import (
	"fmt"
	"strconv"
)

// Feature is one footprint with its attributes. The core reads it and never
// keeps it across calls.
type Feature struct {
	FID        int64
	Geometry   *Geometry
	Attributes map[string]any
}

func NewFeature(fid int64, geom *Geometry) *Feature {
	return &Feature{
		FID:        fid,
		Geometry:   geom,
		Attributes: make(map[string]any),
	}
}

func (f *Feature) Set(name string, value any) {
	if f.Attributes == nil {
		f.Attributes = make(map[string]any)
	}
	f.Attributes[name] = value
}

func (f *Feature) Attribute(name string) (any, bool) {
	v, ok := f.Attributes[name]
	return v, ok
}

// Double returns a numeric attribute, parsing strings, or def when missing
// or not numeric.
func (f *Feature) Double(name string, def float64) float64 {
	v, ok := f.Attributes[name]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		if d, err := strconv.ParseFloat(n, 64); err == nil {
			return d
		}
	}
	return def
}

func (f *Feature) Text(name string) string {
	v, ok := f.Attributes[name]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
