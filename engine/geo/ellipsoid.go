package geo

import (
	m "math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/wroge/wgs84"
)

// WGS84 ellipsoid.
const (
	SemiMajorAxis float64 = wgs84.A
	Flattening    float64 = 1.0 / wgs84.Fi
)

var semiMinorAxis = SemiMajorAxis * (1 - Flattening)

var (
	lonLatToXYZ = wgs84.LonLat().To(wgs84.XYZ())
	xyzToLonLat = wgs84.XYZ().To(wgs84.LonLat())
)

// GeodeticToECEF converts (longitude, latitude, height) in degrees and
// meters to earth-centered earth-fixed coordinates.
func GeodeticToECEF(p mgl64.Vec3) mgl64.Vec3 {
	x, y, z := lonLatToXYZ(p[0], p[1], p[2])
	return mgl64.Vec3{x, y, z}
}

// ECEFToGeodetic is the inverse of GeodeticToECEF.
func ECEFToGeodetic(p mgl64.Vec3) mgl64.Vec3 {
	// on the polar axis the height is measured along z
	if m.Hypot(p[0], p[1]) < 1e-9 {
		return mgl64.Vec3{0, m.Copysign(90, p[2]), m.Abs(p[2]) - semiMinorAxis}
	}
	lon, lat, h := xyzToLonLat(p[0], p[1], p[2])
	return mgl64.Vec3{lon, lat, h}
}

// LocalToWorldAt returns the east-north-up frame anchored at the geodetic
// point, expressed in ECEF.
func LocalToWorldAt(geodetic mgl64.Vec3) mgl64.Mat4 {
	origin := GeodeticToECEF(geodetic)
	sinLat, cosLat := m.Sincos(mgl64.DegToRad(geodetic[1]))
	sinLon, cosLon := m.Sincos(mgl64.DegToRad(geodetic[0]))

	east := mgl64.Vec3{-sinLon, cosLon, 0}
	north := mgl64.Vec3{-sinLat * cosLon, -sinLat * sinLon, cosLat}
	up := mgl64.Vec3{cosLat * cosLon, cosLat * sinLon, sinLat}

	return mgl64.Mat4FromCols(
		east.Vec4(0),
		north.Vec4(0),
		up.Vec4(0),
		origin.Vec4(1),
	)
}
