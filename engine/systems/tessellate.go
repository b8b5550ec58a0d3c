package systems

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/go-libtess2"

	"github.com/spaghettifunk/extruder/engine/core"
	"github.com/spaghettifunk/extruder/engine/metadata"
)

var (
	FacingUp   = mgl64.Vec3{0, 0, 1}
	FacingDown = mgl64.Vec3{0, 0, -1}
)

// TessellatePolygons replaces the line loops of g with triangles filling
// them under the odd winding rule, so holes stay open and self
// intersections resolve. The triangles are wound to face toward facing.
// Other primitive sets are dropped.
// Vertices the tessellator creates at intersections take the attributes of
// the nearest original vertex.
func TessellatePolygons(g *metadata.Geometry, facing mgl64.Vec3) error {
	if len(g.Vertices) == 0 {
		return nil
	}

	// Coordinates are shifted next to the origin before narrowing to float32.
	origin := g.Vertices[0]

	var contours []libtess2.Contour
	var loops []*metadata.PrimitiveSet
	for _, p := range g.Primitives {
		if p.Mode != metadata.PrimitiveModeLineLoop {
			continue
		}
		loops = append(loops, p)
		elems := p.Elements()
		if len(elems) < 3 {
			continue
		}
		c := make(libtess2.Contour, len(elems))
		for i, idx := range elems {
			v := g.Vertices[idx].Sub(origin)
			c[i] = libtess2.Vertex{X: float32(v[0]), Y: float32(v[1]), Z: float32(v[2])}
		}
		contours = append(contours, c)
	}
	if len(loops) == 0 {
		return nil
	}

	var elements []int
	var tessVerts []libtess2.Vertex
	if len(contours) > 0 {
		var err error
		elements, tessVerts, err = libtess2.Tesselate(contours, libtess2.WindingRuleOdd)
		if err != nil {
			return fmt.Errorf("tessellate %d contours: %v: %w", len(contours), err, core.ErrTessellation)
		}
	}

	out := metadata.NewGeometry()
	out.Name = g.Name
	out.Dynamic = g.Dynamic

	remap := make([]uint32, len(tessVerts))
	for i, tv := range tessVerts {
		pos := mgl64.Vec3{float64(tv.X), float64(tv.Y), float64(tv.Z)}.Add(origin)
		src, exact := nearestVertex(g.Vertices, pos)
		if exact {
			pos = g.Vertices[src]
		}
		remap[i] = uint32(len(out.Vertices))
		out.Vertices = append(out.Vertices, pos)
		if len(g.TexCoords) > 0 {
			out.TexCoords = append(out.TexCoords, g.TexCoords[src])
		}
		if len(g.Colors) > 0 {
			out.Colors = append(out.Colors, g.Colors[src])
		}
	}

	var indices []uint32
	var sum mgl64.Vec3
	for t := 0; t+2 < len(elements); t += 3 {
		a, b, c := elements[t], elements[t+1], elements[t+2]
		if a < 0 || b < 0 || c < 0 {
			continue
		}
		ia, ib, ic := remap[a], remap[b], remap[c]
		indices = append(indices, ia, ib, ic)
		e1 := out.Vertices[ib].Sub(out.Vertices[ia])
		e2 := out.Vertices[ic].Sub(out.Vertices[ia])
		sum = sum.Add(e1.Cross(e2))
	}
	if sum.Dot(facing) < 0 {
		for t := 0; t+2 < len(indices); t += 3 {
			indices[t+1], indices[t+2] = indices[t+2], indices[t+1]
		}
	}

	if len(indices) > 0 {
		out.AddPrimitiveSet(metadata.NewDrawElements(metadata.PrimitiveModeTriangles, indices...))
	}

	*g = *out
	return nil
}

// nearestVertex finds the vertex closest to p. exact reports whether p is
// the float32 rounding of that vertex.
func nearestVertex(vertices []mgl64.Vec3, p mgl64.Vec3) (int, bool) {
	best, bestDist := 0, -1.0
	for i, v := range vertices {
		d := v.Sub(p).LenSqr()
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	scale := 1.0 + vertices[best].Sub(vertices[0]).Len()
	return best, bestDist <= (1e-5*scale)*(1e-5*scale)
}
