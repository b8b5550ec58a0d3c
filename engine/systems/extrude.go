package systems

import (
	m "math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/spaghettifunk/extruder/engine/core"
	"github.com/spaghettifunk/extruder/engine/features"
	"github.com/spaghettifunk/extruder/engine/geo"
	"github.com/spaghettifunk/extruder/engine/math"
	"github.com/spaghettifunk/extruder/engine/metadata"
	"github.com/spaghettifunk/extruder/engine/style"
)

/** @brief Roof texture span in world units when a skin gives no usable size. */
const DefaultRoofTextureSpan float64 = 10.0

/**
 * @brief The elevations an extrusion is measured against, gathered over
 * every point of a feature before any height offset is applied.
 */
type Levels struct {
	/** @brief The lowest base elevation. */
	MinZ float64
	/** @brief The highest z + |height| over all points. */
	TargetLevel float64
}

// ComputeLevels runs the extent pass over every ring of g.
func ComputeLevels(g *features.Geometry, height float64) Levels {
	absHeight := m.Abs(height)
	lv := Levels{MinZ: m.MaxFloat64, TargetLevel: -m.MaxFloat64}
	for _, ring := range g.Rings() {
		for _, p := range ring.Points {
			lv.TargetLevel = m.Max(lv.TargetLevel, p[2]+absHeight)
			lv.MinZ = m.Min(lv.MinZ, p[2])
		}
	}
	return lv
}

/**
 * @brief Everything the extrusion of one geometry depends on.
 */
type ExtrudeOptions struct {
	/** @brief Extrusion height. Negative heights extrude downward. */
	Height float64
	/** @brief Subtracted from the height and the target level. */
	HeightOffset float64
	/** @brief Put every roof point on the feature's target level. */
	Flatten      bool
	WantRoof     bool
	WantBase     bool
	WantOutline  bool
	WallColor    mgl64.Vec4
	RoofColor    mgl64.Vec4
	OutlineColor mgl64.Vec4
	WallSkin     *style.SkinResource
	RoofSkin     *style.SkinResource
	/** @brief Feature wide levels. Computed from the input when nil. */
	Levels *Levels
	/** @brief Receives non-fatal failures. Optional. */
	Diagnostics *core.Diagnostics
}

/**
 * @brief The raw buffers produced by an extrusion. Roof, Base and Outline
 * are nil unless requested.
 */
type ExtrusionResult struct {
	Walls   *metadata.Geometry
	Roof    *metadata.Geometry
	Base    *metadata.Geometry
	Outline *metadata.Geometry
}

// roofTexturing holds what is needed to place roof texture coordinates.
type roofTexturing struct {
	cosR, sinR   float64
	spanX, spanY float64
	minX, minY   float64
	// projected holds the input reprojected for texturing, ring by ring. It
	// is nil when points are textured in their own frame.
	projected [][]mgl64.Vec3
}

func (rt *roofTexturing) texCoord(ring, idx int, roofPt mgl64.Vec3) mgl64.Vec2 {
	x, y := roofPt[0], roofPt[1]
	if rt.projected != nil {
		x, y = rt.projected[ring][idx][0], rt.projected[ring][idx][1]
	}
	xr := x - rt.minX
	yr := y - rt.minY
	return mgl64.Vec2{
		(rt.cosR*xr - rt.sinR*yr) / rt.spanX,
		(rt.sinR*xr + rt.cosR*yr) / rt.spanY,
	}
}

func roofTextureSpan(primary, secondary *float64) float64 {
	span := DefaultRoofTextureSpan
	if primary != nil {
		span = *primary
	} else if secondary != nil {
		span = *secondary
	}
	if span <= 0 {
		span = DefaultRoofTextureSpan
	}
	return span
}

func newRoofTexturing(input *features.Geometry, skin *style.SkinResource, srs geo.SpatialReference, diags *core.Diagnostics) *roofTexturing {
	rt := &roofTexturing{
		spanX: roofTextureSpan(skin.ImageWidth, skin.ImageHeight),
		spanY: roofTextureSpan(skin.ImageHeight, skin.ImageWidth),
	}

	frame := input
	if srs.IsGeographic() {
		projected, err := projectForTexturing(input, srs)
		if err == nil {
			frame = projected
			for _, ring := range projected.Rings() {
				rt.projected = append(rt.projected, ring.Points)
			}
		} else if diags != nil {
			diags.Warn("extrude", err, "roof texture coordinates fall back to the source frame")
		}
	}

	bounds := frame.Bounds()
	rt.minX, rt.minY = bounds.Min[0], bounds.Min[1]

	if rt.projected == nil && srs.IsGeographic() {
		// Reprojection failed: texture un-rotated.
		rt.cosR, rt.sinR = 1, 0
		return rt
	}

	rotation := features.ApparentRotation(frame)
	rt.sinR, rt.cosR = m.Sincos(rotation)
	return rt
}

// projectForTexturing reprojects a clone of input into the UTM zone of its
// centre longitude.
func projectForTexturing(input *features.Geometry, srs geo.SpatialReference) (*features.Geometry, error) {
	center := input.Bounds().Center()
	proj, err := srs.CreateUTMFromLongitude(center[0])
	if err != nil {
		return nil, err
	}
	clone := input.Clone()
	for _, ring := range clone.Rings() {
		if err := geo.TransformPoints(srs, proj, ring.Points); err != nil {
			return nil, err
		}
	}
	return clone, nil
}

/**
 * @brief Extrudes every ring of input into walls and, on request, roof,
 * base and outline buffers.
 *
 * @param input The footprint. Rings with fewer than two points make no faces.
 * @param opts The extrusion inputs.
 * @param srs The frame the input points are expressed in.
 * @param loc Moves generated points into the local frame when active.
 * @return The buffers, and whether any wall face was emitted.
 */
func ExtrudeGeometry(input *features.Geometry, opts ExtrudeOptions, srs geo.SpatialReference, loc geo.Localizer) (*ExtrusionResult, bool) {
	wallSkin := opts.WallSkin
	roofSkin := opts.RoofSkin

	texWidth, texHeight, texRepeatsY := 1.0, 1.0, false
	if wallSkin != nil {
		texWidth = wallSkin.Width()
		texHeight = wallSkin.Height()
		texRepeatsY = wallSkin.Tiled
	}
	useColor := wallSkin == nil || !wallSkin.IsDecal()

	pointCount := input.TotalPointCount()
	result := &ExtrusionResult{Walls: metadata.NewGeometry()}
	walls := result.Walls
	walls.Vertices = make([]mgl64.Vec3, 0, 2*pointCount)
	if wallSkin != nil {
		walls.TexCoords = make([]mgl64.Vec2, 0, 2*pointCount)
	}
	if useColor {
		walls.Colors = make([]mgl64.Vec4, 0, 2*pointCount)
	}

	var roof, base, outline *metadata.Geometry
	var roofTex *roofTexturing
	if opts.WantRoof {
		roof = metadata.NewGeometry()
		roof.Vertices = make([]mgl64.Vec3, 0, pointCount)
		roof.Colors = make([]mgl64.Vec4, 0, pointCount)
		if roofSkin != nil {
			roof.TexCoords = make([]mgl64.Vec2, 0, pointCount)
			roofTex = newRoofTexturing(input, roofSkin, srs, opts.Diagnostics)
		}
		result.Roof = roof
	}
	if opts.WantBase {
		base = metadata.NewGeometry()
		base.Vertices = make([]mgl64.Vec3, 0, pointCount)
		result.Base = base
	}
	if opts.WantOutline {
		outline = metadata.NewGeometry()
		result.Outline = outline
	}

	levels := opts.Levels
	if levels == nil {
		lv := ComputeLevels(input, opts.Height)
		levels = &lv
	}
	height := opts.Height - opts.HeightOffset
	targetLevel := levels.TargetLevel - opts.HeightOffset

	// The vertical tile is stretched so a whole number of tiles spans the
	// tallest wall of the feature.
	maxHeight := targetLevel - levels.MinZ
	div := m.Round(maxHeight / texHeight)
	if div < 1 {
		div = 1
	}
	texHeightAdj := maxHeight / div
	if texHeightAdj <= math.K_FLOAT_EPSILON {
		texHeightAdj = texHeight
	}

	localize := func(p mgl64.Vec3) mgl64.Vec3 {
		out, err := loc.TransformAndLocalize(p, srs)
		if err != nil {
			if opts.Diagnostics != nil {
				opts.Diagnostics.Warn("extrude", err, "point left unlocalized")
			}
			return p
		}
		return out
	}

	madeGeom := false
	for ri, ring := range input.Rings() {
		closed := ring.IsClosed()
		n := len(ring.Points)
		wallPart := uint32(len(walls.Vertices))
		roofPart := uint32(0)
		if roof != nil {
			roofPart = uint32(len(roof.Vertices))
		}
		basePart := 0
		if base != nil {
			basePart = len(base.Vertices)
		}
		partLen := 0.0
		var indices []uint32

		for i, basePt := range ring.Points {
			var roofPt mgl64.Vec3
			if height >= 0 {
				if opts.Flatten {
					roofPt = mgl64.Vec3{basePt[0], basePt[1], targetLevel}
				} else {
					roofPt = mgl64.Vec3{basePt[0], basePt[1], basePt[2] + height}
				}
			} else {
				roofPt = basePt
				basePt[2] += height
			}

			if roofTex != nil {
				roof.TexCoords = append(roof.TexCoords, roofTex.texCoord(ri, i, roofPt))
			}

			if loc.Active {
				basePt = localize(basePt)
				roofPt = localize(roofPt)
			}

			if base != nil {
				base.Vertices = append(base.Vertices, basePt)
			}
			if roof != nil {
				roof.Vertices = append(roof.Vertices, roofPt)
				roof.Colors = append(roof.Colors, opts.RoofColor)
			}

			p := uint32(len(walls.Vertices))
			if p > wallPart {
				partLen += roofPt.Sub(walls.Vertices[p-2]).Len()
			}
			walls.Vertices = append(walls.Vertices, roofPt, basePt)
			if useColor {
				walls.Colors = append(walls.Colors, opts.WallColor, opts.WallColor)
			}

			if wallSkin != nil {
				h := -texHeightAdj
				if texRepeatsY {
					h = -roofPt.Sub(basePt).Len()
				}
				u := partLen / texWidth
				walls.TexCoords = append(walls.TexCoords, mgl64.Vec2{u, 0}, mgl64.Vec2{u, h / texHeightAdj})
			}

			if n < 2 {
				continue
			}
			if i == n-1 {
				if closed {
					indices = append(indices,
						p, p+1, wallPart,
						p+1, wallPart+1, wallPart)
					madeGeom = true
				}
			} else {
				indices = append(indices,
					p, p+1, p+2,
					p+1, p+3, p+2)
				madeGeom = true
			}
		}

		if len(indices) > 0 {
			walls.AddPrimitiveSet(metadata.NewDrawElements(metadata.PrimitiveModeTriangles, indices...))
		}

		if roof != nil && n > 0 {
			roof.AddPrimitiveSet(metadata.NewDrawArrays(metadata.PrimitiveModeLineLoop, roofPart, uint32(n)))
		}
		if base != nil && n > 0 {
			seg := base.Vertices[basePart:]
			for a, b := 0, len(seg)-1; a < b; a, b = a+1, b-1 {
				seg[a], seg[b] = seg[b], seg[a]
			}
			base.AddPrimitiveSet(metadata.NewDrawArrays(metadata.PrimitiveModeLineLoop, uint32(basePart), uint32(n)))
		}
		if outline != nil && n > 0 {
			appendOutline(outline, walls.Vertices[wallPart:], closed, opts.OutlineColor)
		}
	}

	return result, madeGeom
}

// appendOutline adds the roof edges and one vertical edge per point of a
// ring, given the ring's interleaved (roof, base) wall vertices.
func appendOutline(outline *metadata.Geometry, pairs []mgl64.Vec3, closed bool, color mgl64.Vec4) {
	first := uint32(len(outline.Vertices))
	n := uint32(len(pairs) / 2)
	outline.Vertices = append(outline.Vertices, pairs...)
	for range pairs {
		outline.Colors = append(outline.Colors, color)
	}

	var indices []uint32
	for i := uint32(0); i < n; i++ {
		roofIdx := first + 2*i
		indices = append(indices, roofIdx, roofIdx+1)
		if i+1 < n {
			indices = append(indices, roofIdx, roofIdx+2)
		} else if closed && n > 2 {
			indices = append(indices, roofIdx, first)
		}
	}
	outline.AddPrimitiveSet(metadata.NewDrawElements(metadata.PrimitiveModeLines, indices...))
}
