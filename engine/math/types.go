package math

import "github.com/go-gl/mathgl/mgl64"

/**
 * @brief Represents the extents of a 2d object.
 */
type Extents2D struct {
	/** @brief The minimum extents of the object. */
	Min mgl64.Vec2
	/** @brief The maximum extents of the object. */
	Max mgl64.Vec2
}

/**
 * @brief Represents the extents of a 3d object.
 */
type Extents3D struct {
	/** @brief The minimum extents of the object. */
	Min mgl64.Vec3
	/** @brief The maximum extents of the object. */
	Max mgl64.Vec3
}
