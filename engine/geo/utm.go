package geo

import (
	"fmt"
	m "math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/wroge/wgs84"

	"github.com/spaghettifunk/extruder/engine/core"
)

// Fixed point steps applied to the inverse projection series.
const utmInverseSteps = 3

type utm struct {
	zone  int
	north bool
	crs   wgs84.ProjectedReferenceSystem
}

// NewUTM returns the transverse mercator frame of a UTM zone (1..60).
func NewUTM(zone int, north bool) (SpatialReference, error) {
	if zone < 1 || zone > 60 {
		return nil, fmt.Errorf("utm zone %d: %w", zone, core.ErrInvalidSRS)
	}
	return utm{zone: zone, north: north, crs: wgs84.UTM(float64(zone), north)}, nil
}

// UTMFromLongitude returns the northern UTM zone containing lon.
func UTMFromLongitude(lon float64) (SpatialReference, error) {
	if m.IsNaN(lon) || m.IsInf(lon, 0) {
		return nil, fmt.Errorf("utm from longitude %v: %w", lon, core.ErrInvalidSRS)
	}
	// normalize to [-180, 180)
	lon = m.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	zone := int(m.Floor(lon/6)) + 1
	if zone > 60 {
		zone = 60
	}
	return NewUTM(zone, true)
}

func (u utm) Name() string {
	hemi := "n"
	if !u.north {
		hemi = "s"
	}
	return fmt.Sprintf("utm:%d%s", u.zone, hemi)
}

func (utm) IsGeographic() bool { return false }

func (u utm) Zone() int { return u.zone }

func (u utm) project(lon, lat float64) (float64, float64) {
	return u.crs.Projection.FromLonLat(lon, lat, u.crs.Datum)
}

func (u utm) unproject(east, north float64) (float64, float64) {
	return u.crs.Projection.ToLonLat(east, north, u.crs.Datum)
}

func (u utm) FromGeodetic(p mgl64.Vec3) (mgl64.Vec3, error) {
	if m.Abs(p[1]) > 84.5 {
		return p, fmt.Errorf("latitude %.6f outside utm coverage: %w", p[1], core.ErrReprojection)
	}
	x, y := u.project(p[0], p[1])
	if m.IsNaN(x) || m.IsNaN(y) {
		return p, fmt.Errorf("geodetic to %s: %w", u.Name(), core.ErrReprojection)
	}
	return mgl64.Vec3{x, y, p[2]}, nil
}

func (u utm) ToGeodetic(p mgl64.Vec3) (mgl64.Vec3, error) {
	lon0, lat0 := u.unproject(p[0], p[1])
	lon, lat := lon0, lat0
	// Refine so the result projects back onto p.
	for i := 0; i < utmInverseSteps; i++ {
		x, y := u.project(lon, lat)
		lonR, latR := u.unproject(x, y)
		lon += lon0 - lonR
		lat += lat0 - latR
	}
	if m.IsNaN(lon) || m.IsNaN(lat) {
		return p, fmt.Errorf("%s to geodetic: %w", u.Name(), core.ErrReprojection)
	}
	return mgl64.Vec3{lon, lat, p[2]}, nil
}

func (u utm) Transform(p mgl64.Vec3, target SpatialReference) (mgl64.Vec3, error) {
	return transform(u, p, target)
}

func (u utm) CreateUTMFromLongitude(lon float64) (SpatialReference, error) {
	return UTMFromLongitude(lon)
}
