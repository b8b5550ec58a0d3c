package systems

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/extruder/engine/metadata"
)

func loopGeometry(rings ...[]mgl64.Vec3) *metadata.Geometry {
	g := metadata.NewGeometry()
	for _, ring := range rings {
		first := uint32(len(g.Vertices))
		for i, v := range ring {
			g.Vertices = append(g.Vertices, v)
			g.TexCoords = append(g.TexCoords, mgl64.Vec2{float64(len(g.Vertices)), float64(i)})
		}
		g.AddPrimitiveSet(metadata.NewDrawArrays(metadata.PrimitiveModeLineLoop, first, uint32(len(ring))))
	}
	return g
}

func assertFacing(t *testing.T, g *metadata.Geometry, facing mgl64.Vec3) {
	t.Helper()
	tris := g.TriangleIndices()
	for i := 0; i < len(tris); i += 3 {
		a, b, c := g.Vertices[tris[i]], g.Vertices[tris[i+1]], g.Vertices[tris[i+2]]
		n := b.Sub(a).Cross(c.Sub(a))
		assert.Greater(t, n.Dot(facing), 0.0)
	}
}

func TestTessellateSquareFacesUp(t *testing.T) {
	g := loopGeometry(square(5))
	require.NoError(t, TessellatePolygons(g, FacingUp))
	assert.Equal(t, 2, g.TriangleCount())
	assert.Equal(t, 4, g.VertexCount())
	assertFacing(t, g, FacingUp)

	// Positions and attributes survive the round trip exactly.
	assert.Len(t, g.TexCoords, 4)
	for i, v := range g.Vertices {
		assert.Contains(t, square(5), v, "vertex %d", i)
	}
}

func TestTessellateFacesDown(t *testing.T) {
	g := loopGeometry(square(0))
	require.NoError(t, TessellatePolygons(g, FacingDown))
	assertFacing(t, g, FacingDown)
}

func TestTessellateKeepsHolesOpen(t *testing.T) {
	hole := []mgl64.Vec3{{4, 4, 0}, {6, 4, 0}, {6, 6, 0}, {4, 6, 0}}
	g := loopGeometry(square(0), hole)
	require.NoError(t, TessellatePolygons(g, FacingUp))
	assert.Equal(t, 8, g.TriangleCount())
	assertFacing(t, g, FacingUp)

	area := 0.0
	tris := g.TriangleIndices()
	for i := 0; i < len(tris); i += 3 {
		a, b, c := g.Vertices[tris[i]], g.Vertices[tris[i+1]], g.Vertices[tris[i+2]]
		area += b.Sub(a).Cross(c.Sub(a)).Len() / 2
	}
	assert.InDelta(t, 96.0, area, 1e-3)
}

func TestTessellateConcave(t *testing.T) {
	l := []mgl64.Vec3{{0, 0, 0}, {10, 0, 0}, {10, 4, 0}, {4, 4, 0}, {4, 10, 0}, {0, 10, 0}}
	g := loopGeometry(l)
	require.NoError(t, TessellatePolygons(g, FacingUp))
	assert.Equal(t, 4, g.TriangleCount())
}

func TestTessellateSelfIntersection(t *testing.T) {
	bowtie := []mgl64.Vec3{{0, 0, 0}, {10, 10, 0}, {10, 0, 0}, {0, 10, 0}}
	g := loopGeometry(bowtie)
	require.NoError(t, TessellatePolygons(g, FacingUp))
	assert.Equal(t, 2, g.TriangleCount())
	assert.Len(t, g.TexCoords, g.VertexCount())

	found := false
	for _, v := range g.Vertices {
		if v.Sub(mgl64.Vec3{5, 5, 0}).Len() < 1e-3 {
			found = true
		}
	}
	assert.True(t, found, "the crossing becomes a vertex")
}

func TestTessellateFarFromOrigin(t *testing.T) {
	// UTM sized coordinates would lose precision as float32.
	offset := mgl64.Vec3{500123.25, 5000456.75, 0}
	var pts []mgl64.Vec3
	for _, p := range square(0) {
		pts = append(pts, p.Add(offset))
	}
	g := loopGeometry(pts)
	require.NoError(t, TessellatePolygons(g, FacingUp))
	for _, v := range g.Vertices {
		assert.Contains(t, pts, v)
	}
}

func TestTessellateEmpty(t *testing.T) {
	g := metadata.NewGeometry()
	require.NoError(t, TessellatePolygons(g, FacingUp))
	assert.Equal(t, 0, g.TriangleCount())
}
