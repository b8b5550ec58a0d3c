package math

import (
	m "math"

	"github.com/go-gl/mathgl/mgl64"
)

// GeometryGenerateFaceNormals returns one unnormalized normal per triangle.
// The length of each normal is twice the triangle area, so summing them
// weights by area.
func GeometryGenerateFaceNormals(vertices []mgl64.Vec3, indices []uint32) []mgl64.Vec3 {
	normals := make([]mgl64.Vec3, len(indices)/3)
	for t := range normals {
		i0 := indices[t*3+0]
		i1 := indices[t*3+1]
		i2 := indices[t*3+2]

		edge1 := vertices[i1].Sub(vertices[i0])
		edge2 := vertices[i2].Sub(vertices[i0])
		normals[t] = edge1.Cross(edge2)
	}
	return normals
}

// SmoothResult is the output of GeometrySmoothNormals.
type SmoothResult struct {
	// Normals has one entry per output vertex.
	Normals []mgl64.Vec3
	// Origins maps every output vertex to the input vertex it was copied from.
	// The first len(input) entries are the identity.
	Origins []int
	// Indices are the rewritten triangle indices.
	Indices []uint32
}

type normalCluster struct {
	vertex uint32
	seed   mgl64.Vec3
	sum    mgl64.Vec3
}

// GeometrySmoothNormals averages face normals per vertex. Triangles sharing a
// vertex whose normals differ by more than creaseAngle (radians) are split
// onto a copy of that vertex, so the edge between them stays hard.
func GeometrySmoothNormals(vertices []mgl64.Vec3, indices []uint32, creaseAngle float64) SmoothResult {
	faces := GeometryGenerateFaceNormals(vertices, indices)
	cosCrease := m.Cos(Clamp(creaseAngle, 0, m.Pi))

	incident := make([][]int, len(vertices))
	for c, idx := range indices {
		incident[idx] = append(incident[idx], c)
	}

	out := SmoothResult{
		Origins: make([]int, len(vertices), len(vertices)+len(indices)/3),
		Indices: append([]uint32(nil), indices...),
	}
	for i := range out.Origins {
		out.Origins[i] = i
	}

	var resolved []*normalCluster
	var clusters []*normalCluster
	for v, corners := range incident {
		clusters = clusters[:0]
		for _, c := range corners {
			face := faces[c/3]
			unit := normalizeOrZero(face)

			var target *normalCluster
			for _, cl := range clusters {
				// Degenerate faces join whichever cluster comes first.
				if unit.Len() == 0 || cl.seed.Len() == 0 || cl.seed.Dot(unit) >= cosCrease {
					target = cl
					break
				}
			}
			if target == nil {
				target = &normalCluster{seed: unit}
				if len(clusters) == 0 {
					target.vertex = uint32(v)
				} else {
					target.vertex = uint32(len(out.Origins))
					out.Origins = append(out.Origins, v)
				}
				clusters = append(clusters, target)
			}
			if target.seed.Len() == 0 {
				target.seed = unit
			}
			target.sum = target.sum.Add(face)
			out.Indices[c] = target.vertex
		}
		resolved = append(resolved, clusters...)
	}

	// Vertices no triangle references point up.
	out.Normals = make([]mgl64.Vec3, len(out.Origins))
	for i := range out.Normals {
		out.Normals[i] = mgl64.Vec3{0, 0, 1}
	}
	for _, cl := range resolved {
		out.Normals[cl.vertex] = normalizeOrUp(cl.sum)
	}
	return out
}

func normalizeOrZero(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < K_FLOAT_EPSILON {
		return mgl64.Vec3{}
	}
	return v.Mul(1.0 / l)
}

func normalizeOrUp(v mgl64.Vec3) mgl64.Vec3 {
	n := normalizeOrZero(v)
	if n.Len() == 0 {
		return mgl64.Vec3{0, 0, 1}
	}
	return n
}
