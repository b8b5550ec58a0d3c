package features

import (
	m "math"
)

// ApparentRotation returns the angle of the longest edge of the geometry,
// as atan2(dx, dy) with the edge pointing toward increasing X. It is used
// to align rooftop textures with the dominant wall of a building. The first
// edge of maximal length wins ties.
func ApparentRotation(g *Geometry) float64 {
	var longest Segment
	maxLen2 := 0.0
	for _, s := range g.Segments() {
		len2 := s.Second.Sub(s.First).LenSqr()
		if len2 > maxLen2 {
			maxLen2 = len2
			longest = s
		}
	}

	p1, p2 := longest.First, longest.Second
	if p1[0] >= p2[0] {
		p1, p2 = p2, p1
	}
	return m.Atan2(p2[0]-p1[0], p2[1]-p1[1])
}
