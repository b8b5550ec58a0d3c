package metadata

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/spaghettifunk/extruder/engine/math"
)

/** @brief The name given to geometry that has no feature name. */
const DefaultGeometryName string = "default"

type PrimitiveMode uint8

const (
	PrimitiveModeTriangles PrimitiveMode = iota
	PrimitiveModeLines
	PrimitiveModeLineLoop
)

func (m PrimitiveMode) String() string {
	switch m {
	case PrimitiveModeTriangles:
		return "triangles"
	case PrimitiveModeLines:
		return "lines"
	case PrimitiveModeLineLoop:
		return "line_loop"
	}
	return "unknown"
}

/**
 * @brief A batch of primitives. Indexed sets list their vertices in Indices;
 * array sets draw Count vertices starting at First.
 */
type PrimitiveSet struct {
	Mode    PrimitiveMode
	Indices []uint32
	First   uint32
	Count   uint32
}

func NewDrawElements(mode PrimitiveMode, indices ...uint32) *PrimitiveSet {
	return &PrimitiveSet{Mode: mode, Indices: indices}
}

func NewDrawArrays(mode PrimitiveMode, first, count uint32) *PrimitiveSet {
	return &PrimitiveSet{Mode: mode, First: first, Count: count}
}

func (p *PrimitiveSet) Indexed() bool {
	return p.Indices != nil
}

// Elements returns the vertex indices the set draws, in order.
func (p *PrimitiveSet) Elements() []uint32 {
	if p.Indexed() {
		return p.Indices
	}
	out := make([]uint32, p.Count)
	for i := range out {
		out[i] = p.First + uint32(i)
	}
	return out
}

func (p *PrimitiveSet) TriangleCount() int {
	if p.Mode != PrimitiveModeTriangles {
		return 0
	}
	return len(p.Elements()) / 3
}

// LineSegments returns the set as independent line segments (pairs of
// indices). Triangle sets yield nothing.
func (p *PrimitiveSet) LineSegments() []uint32 {
	e := p.Elements()
	switch p.Mode {
	case PrimitiveModeLines:
		return e[:len(e)-len(e)%2]
	case PrimitiveModeLineLoop:
		if len(e) < 2 {
			return nil
		}
		out := make([]uint32, 0, 2*len(e))
		for i := range e {
			out = append(out, e[i], e[(i+1)%len(e)])
		}
		return out
	}
	return nil
}

/**
 * @brief A drawable mesh buffer. Normals, texture coordinates and colours
 * are optional; when present they hold one entry per vertex.
 */
type Geometry struct {
	/** @brief The geometry name. */
	Name       string
	Vertices   []mgl64.Vec3
	Normals    []mgl64.Vec3
	TexCoords  []mgl64.Vec2
	Colors     []mgl64.Vec4
	Primitives []*PrimitiveSet
	/** @brief Dynamic geometry is left alone by the merge optimizer. */
	Dynamic bool
}

func NewGeometry() *Geometry {
	return &Geometry{}
}

func (g *Geometry) VertexCount() int {
	return len(g.Vertices)
}

func (g *Geometry) AddPrimitiveSet(p *PrimitiveSet) {
	g.Primitives = append(g.Primitives, p)
}

func (g *Geometry) TriangleCount() int {
	n := 0
	for _, p := range g.Primitives {
		n += p.TriangleCount()
	}
	return n
}

// TriangleIndices gathers every triangle of every set into one list.
func (g *Geometry) TriangleIndices() []uint32 {
	var out []uint32
	for _, p := range g.Primitives {
		if p.Mode == PrimitiveModeTriangles {
			e := p.Elements()
			out = append(out, e[:len(e)-len(e)%3]...)
		}
	}
	return out
}

// LineIndices gathers every line and line loop as independent segments.
func (g *Geometry) LineIndices() []uint32 {
	var out []uint32
	for _, p := range g.Primitives {
		out = append(out, p.LineSegments()...)
	}
	return out
}

func (g *Geometry) Extents() math.Extents3D {
	e := math.NewExtents3D()
	for _, v := range g.Vertices {
		e.Expand(v)
	}
	return e
}

// SmoothNormals computes per vertex normals for the triangles of g. Faces
// meeting at an angle larger than creaseAngle (radians) do not share
// normals; vertices on such creases are duplicated along with their
// attributes.
func (g *Geometry) SmoothNormals(creaseAngle float64) {
	indices := g.TriangleIndices()
	if len(indices) == 0 {
		return
	}
	res := math.GeometrySmoothNormals(g.Vertices, indices, creaseAngle)

	if len(res.Origins) > len(g.Vertices) {
		g.Vertices = remapVec3(g.Vertices, res.Origins)
		if len(g.TexCoords) > 0 {
			g.TexCoords = remapVec2(g.TexCoords, res.Origins)
		}
		if len(g.Colors) > 0 {
			g.Colors = remapVec4(g.Colors, res.Origins)
		}
	}
	g.Normals = res.Normals

	var rest []*PrimitiveSet
	for _, p := range g.Primitives {
		if p.Mode != PrimitiveModeTriangles {
			rest = append(rest, p)
		}
	}
	g.Primitives = append([]*PrimitiveSet{NewDrawElements(PrimitiveModeTriangles, res.Indices...)}, rest...)
}

func remapVec2(src []mgl64.Vec2, origins []int) []mgl64.Vec2 {
	out := make([]mgl64.Vec2, len(origins))
	for i, o := range origins {
		out[i] = src[o]
	}
	return out
}

func remapVec3(src []mgl64.Vec3, origins []int) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(origins))
	for i, o := range origins {
		out[i] = src[o]
	}
	return out
}

func remapVec4(src []mgl64.Vec4, origins []int) []mgl64.Vec4 {
	out := make([]mgl64.Vec4, len(origins))
	for i, o := range origins {
		out[i] = src[o]
	}
	return out
}

// Consolidate rewrites the primitive sets into at most one indexed triangle
// set followed by one indexed line set. What is drawn does not change.
func (g *Geometry) Consolidate() {
	tris := g.TriangleIndices()
	lines := g.LineIndices()
	g.Primitives = g.Primitives[:0]
	if len(tris) > 0 {
		g.AddPrimitiveSet(NewDrawElements(PrimitiveModeTriangles, tris...))
	}
	if len(lines) > 0 {
		g.AddPrimitiveSet(NewDrawElements(PrimitiveModeLines, lines...))
	}
}

// Compatible reports whether other can be appended to g without losing or
// inventing vertex attributes.
func (g *Geometry) Compatible(other *Geometry) bool {
	if g.Name != other.Name {
		return false
	}
	return (len(g.Normals) > 0) == (len(other.Normals) > 0) &&
		(len(g.TexCoords) > 0) == (len(other.TexCoords) > 0) &&
		(len(g.Colors) > 0) == (len(other.Colors) > 0)
}

// Append concatenates the vertex data of other onto g and offsets its
// primitive sets accordingly.
func (g *Geometry) Append(other *Geometry) {
	base := uint32(len(g.Vertices))
	g.Dynamic = g.Dynamic || other.Dynamic
	g.Vertices = append(g.Vertices, other.Vertices...)
	g.Normals = append(g.Normals, other.Normals...)
	g.TexCoords = append(g.TexCoords, other.TexCoords...)
	g.Colors = append(g.Colors, other.Colors...)
	for _, p := range other.Primitives {
		c := &PrimitiveSet{Mode: p.Mode, First: p.First + base, Count: p.Count}
		if p.Indexed() {
			c.Indices = make([]uint32, len(p.Indices))
			for i, idx := range p.Indices {
				c.Indices[i] = idx + base
			}
		}
		g.AddPrimitiveSet(c)
	}
}
