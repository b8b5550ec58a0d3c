package math

import (
	m "math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	/** @brief A multiplier used to convert degrees to radians. */
	K_DEG2RAD_MULTIPLIER float64 = m.Pi / 180.0
	/** @brief A multiplier used to convert radians to degrees. */
	K_RAD2DEG_MULTIPLIER float64 = 180.0 / m.Pi
	/** @brief Smallest difference considered meaningful for positions. */
	K_FLOAT_EPSILON float64 = 1e-9
)

func DegToRad(degrees float64) float64 {
	return degrees * K_DEG2RAD_MULTIPLIER
}

func RadToDeg(radians float64) float64 {
	return radians * K_RAD2DEG_MULTIPLIER
}

// NewExtents2D returns empty extents that any point will expand.
func NewExtents2D() Extents2D {
	return Extents2D{
		Min: mgl64.Vec2{m.MaxFloat64, m.MaxFloat64},
		Max: mgl64.Vec2{-m.MaxFloat64, -m.MaxFloat64},
	}
}

func (e Extents2D) Valid() bool {
	return e.Min[0] <= e.Max[0] && e.Min[1] <= e.Max[1]
}

func (e *Extents2D) Expand(x, y float64) {
	e.Min[0] = m.Min(e.Min[0], x)
	e.Min[1] = m.Min(e.Min[1], y)
	e.Max[0] = m.Max(e.Max[0], x)
	e.Max[1] = m.Max(e.Max[1], y)
}

func (e Extents2D) Center() mgl64.Vec2 {
	return e.Min.Add(e.Max).Mul(0.5)
}

func (e Extents2D) Width() float64 {
	return e.Max[0] - e.Min[0]
}

func (e Extents2D) Height() float64 {
	return e.Max[1] - e.Min[1]
}

// NewExtents3D returns empty extents that any point will expand.
func NewExtents3D() Extents3D {
	return Extents3D{
		Min: mgl64.Vec3{m.MaxFloat64, m.MaxFloat64, m.MaxFloat64},
		Max: mgl64.Vec3{-m.MaxFloat64, -m.MaxFloat64, -m.MaxFloat64},
	}
}

func (e Extents3D) Valid() bool {
	return e.Min[0] <= e.Max[0] && e.Min[1] <= e.Max[1] && e.Min[2] <= e.Max[2]
}

func (e *Extents3D) Expand(p mgl64.Vec3) {
	for i := 0; i < 3; i++ {
		e.Min[i] = m.Min(e.Min[i], p[i])
		e.Max[i] = m.Max(e.Max[i], p[i])
	}
}

func (e Extents3D) Center() mgl64.Vec3 {
	return e.Min.Add(e.Max).Mul(0.5)
}

// XY drops the vertical axis.
func (e Extents3D) XY() Extents2D {
	return Extents2D{
		Min: mgl64.Vec2{e.Min[0], e.Min[1]},
		Max: mgl64.Vec2{e.Max[0], e.Max[1]},
	}
}

/**
 * @brief Compares all elements of a and b and ensures the difference is less than tolerance.
 */
func Vec3Compare(a, b mgl64.Vec3, tolerance float64) bool {
	for i := 0; i < 3; i++ {
		if m.Abs(a[i]-b[i]) > tolerance {
			return false
		}
	}
	return true
}
