package features

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/spaghettifunk/extruder/engine/math"
)

type PartType uint8

const (
	// PartTypeLine is an open polyline.
	PartTypeLine PartType = iota
	// PartTypeRing is a closed boundary without holes.
	PartTypeRing
	// PartTypePolygon is a closed outer boundary owning hole rings.
	PartTypePolygon
)

func (t PartType) String() string {
	switch t {
	case PartTypeLine:
		return "line"
	case PartTypeRing:
		return "ring"
	case PartTypePolygon:
		return "polygon"
	}
	return "unknown"
}

// Part is one contiguous footprint boundary. Z is the base elevation.
type Part struct {
	Type   PartType
	Points []mgl64.Vec3
	Holes  []*Part
}

func NewLine(points ...mgl64.Vec3) *Part {
	return &Part{Type: PartTypeLine, Points: points}
}

func NewRing(points ...mgl64.Vec3) *Part {
	return &Part{Type: PartTypeRing, Points: points}
}

func NewPolygon(outer []mgl64.Vec3, holes ...[]mgl64.Vec3) *Part {
	p := &Part{Type: PartTypePolygon, Points: outer}
	for _, h := range holes {
		p.Holes = append(p.Holes, NewRing(h...))
	}
	return p
}

func (p *Part) IsClosed() bool {
	return p.Type != PartTypeLine
}

// Rings returns the part followed by its holes.
func (p *Part) Rings() []*Part {
	rings := make([]*Part, 0, 1+len(p.Holes))
	rings = append(rings, p)
	return append(rings, p.Holes...)
}

// Open removes a trailing point that repeats the first one, on the part and
// its holes. Closed parts are closed implicitly.
func (p *Part) Open() {
	if p.IsClosed() && len(p.Points) > 1 && p.Points[0] == p.Points[len(p.Points)-1] {
		p.Points = p.Points[:len(p.Points)-1]
	}
	for _, h := range p.Holes {
		h.Open()
	}
}

// PointCount counts the points of the part and its holes.
func (p *Part) PointCount() int {
	n := len(p.Points)
	for _, h := range p.Holes {
		n += h.PointCount()
	}
	return n
}

func (p *Part) Clone() *Part {
	c := &Part{
		Type:   p.Type,
		Points: append([]mgl64.Vec3(nil), p.Points...),
	}
	for _, h := range p.Holes {
		c.Holes = append(c.Holes, h.Clone())
	}
	return c
}

// Geometry is the multi-part geometry of a feature.
type Geometry struct {
	Parts []*Part
}

func NewGeometry(parts ...*Part) *Geometry {
	return &Geometry{Parts: parts}
}

// Rings returns every ring of every part, outer boundaries before their holes.
func (g *Geometry) Rings() []*Part {
	var rings []*Part
	for _, p := range g.Parts {
		rings = append(rings, p.Rings()...)
	}
	return rings
}

func (g *Geometry) TotalPointCount() int {
	n := 0
	for _, p := range g.Parts {
		n += p.PointCount()
	}
	return n
}

func (g *Geometry) Bounds() math.Extents3D {
	e := math.NewExtents3D()
	for _, r := range g.Rings() {
		for _, pt := range r.Points {
			e.Expand(pt)
		}
	}
	return e
}

func (g *Geometry) Clone() *Geometry {
	c := &Geometry{}
	for _, p := range g.Parts {
		c.Parts = append(c.Parts, p.Clone())
	}
	return c
}

// Segment is one edge of a ring or line.
type Segment struct {
	First  mgl64.Vec3
	Second mgl64.Vec3
}

// Segments lists all edges, including the closing edge of closed rings.
func (g *Geometry) Segments() []Segment {
	var segs []Segment
	for _, r := range g.Rings() {
		n := len(r.Points)
		for i := 0; i+1 < n; i++ {
			segs = append(segs, Segment{r.Points[i], r.Points[i+1]})
		}
		if r.IsClosed() && n > 2 {
			segs = append(segs, Segment{r.Points[n-1], r.Points[0]})
		}
	}
	return segs
}
