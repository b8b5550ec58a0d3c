package geo

import (
	"fmt"
	m "math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/spaghettifunk/extruder/engine/core"
)

// SpatialReference describes the coordinate frame footprint points live in.
// Implementations must be immutable and safe for concurrent use.
type SpatialReference interface {
	Name() string
	IsGeographic() bool
	// ToGeodetic converts a point of this frame to (lon, lat, height).
	ToGeodetic(p mgl64.Vec3) (mgl64.Vec3, error)
	// FromGeodetic converts (lon, lat, height) to this frame.
	FromGeodetic(p mgl64.Vec3) (mgl64.Vec3, error)
	// Transform converts a point of this frame into target.
	Transform(p mgl64.Vec3, target SpatialReference) (mgl64.Vec3, error)
	// CreateUTMFromLongitude returns the UTM zone containing lon.
	CreateUTMFromLongitude(lon float64) (SpatialReference, error)
}

func transform(src SpatialReference, p mgl64.Vec3, target SpatialReference) (mgl64.Vec3, error) {
	if target == nil {
		return p, fmt.Errorf("transform %s: nil target: %w", src.Name(), core.ErrInvalidSRS)
	}
	if src.Name() == target.Name() {
		return p, nil
	}
	g, err := src.ToGeodetic(p)
	if err != nil {
		return p, err
	}
	return target.FromGeodetic(g)
}

// TransformPoints converts every point in place. On failure the slice is
// left partially converted and the error is returned.
func TransformPoints(src, target SpatialReference, points []mgl64.Vec3) error {
	for i, p := range points {
		out, err := src.Transform(p, target)
		if err != nil {
			return err
		}
		points[i] = out
	}
	return nil
}

type geographic struct{}

// WGS84 is the geographic (longitude, latitude, height) frame.
var WGS84 SpatialReference = geographic{}

func (geographic) Name() string       { return "wgs84" }
func (geographic) IsGeographic() bool { return true }

func (geographic) ToGeodetic(p mgl64.Vec3) (mgl64.Vec3, error)   { return p, nil }
func (geographic) FromGeodetic(p mgl64.Vec3) (mgl64.Vec3, error) { return p, nil }

func (g geographic) Transform(p mgl64.Vec3, target SpatialReference) (mgl64.Vec3, error) {
	return transform(g, p, target)
}

func (geographic) CreateUTMFromLongitude(lon float64) (SpatialReference, error) {
	return UTMFromLongitude(lon)
}

type local struct {
	name string
}

// NewLocal returns a flat frame with no known relation to the globe. It
// can only be transformed into itself.
func NewLocal(name string) SpatialReference {
	if name == "" {
		name = "local"
	}
	return local{name: name}
}

func (l local) Name() string     { return l.name }
func (local) IsGeographic() bool { return false }

func (l local) ToGeodetic(p mgl64.Vec3) (mgl64.Vec3, error) {
	return p, fmt.Errorf("%s to geodetic: %w", l.name, core.ErrUnsupportedTransform)
}

func (l local) FromGeodetic(p mgl64.Vec3) (mgl64.Vec3, error) {
	return p, fmt.Errorf("geodetic to %s: %w", l.name, core.ErrUnsupportedTransform)
}

func (l local) Transform(p mgl64.Vec3, target SpatialReference) (mgl64.Vec3, error) {
	return transform(l, p, target)
}

func (l local) CreateUTMFromLongitude(lon float64) (SpatialReference, error) {
	return nil, fmt.Errorf("utm from %s: %w", l.name, core.ErrUnsupportedTransform)
}

// ParseSRS understands "wgs84" (or "epsg:4326"), "utm:<zone><n|s>" and
// "local[:name]".
func ParseSRS(s string) (SpatialReference, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "wgs84" || v == "epsg:4326" || v == "geographic":
		return WGS84, nil
	case v == "local" || v == "":
		return NewLocal("local"), nil
	case strings.HasPrefix(v, "local:"):
		return NewLocal(strings.TrimPrefix(v, "local:")), nil
	case strings.HasPrefix(v, "utm:"):
		spec := strings.TrimPrefix(v, "utm:")
		north := true
		switch {
		case strings.HasSuffix(spec, "n"):
			spec = strings.TrimSuffix(spec, "n")
		case strings.HasSuffix(spec, "s"):
			spec = strings.TrimSuffix(spec, "s")
			north = false
		}
		zone, err := strconv.Atoi(spec)
		if err != nil {
			return nil, fmt.Errorf("parse srs %q: %w", s, core.ErrInvalidSRS)
		}
		return NewUTM(zone, north)
	}
	return nil, fmt.Errorf("parse srs %q: %w", s, core.ErrInvalidSRS)
}

// Extent is an axis aligned box in a spatial reference.
type Extent struct {
	SRS  SpatialReference
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

func NewExtent(srs SpatialReference) Extent {
	return Extent{
		SRS:  srs,
		MinX: m.MaxFloat64,
		MinY: m.MaxFloat64,
		MaxX: -m.MaxFloat64,
		MaxY: -m.MaxFloat64,
	}
}

func (e Extent) Valid() bool {
	return e.SRS != nil && e.MinX <= e.MaxX && e.MinY <= e.MaxY
}

func (e *Extent) Expand(x, y float64) {
	e.MinX = m.Min(e.MinX, x)
	e.MinY = m.Min(e.MinY, y)
	e.MaxX = m.Max(e.MaxX, x)
	e.MaxY = m.Max(e.MaxY, y)
}

func (e Extent) Center() mgl64.Vec2 {
	return mgl64.Vec2{(e.MinX + e.MaxX) * 0.5, (e.MinY + e.MaxY) * 0.5}
}
