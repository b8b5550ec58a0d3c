package metadata

import (
	"github.com/go-gl/mathgl/mgl64"
)

/**
 * @brief Identifies the rendering state a drawable needs. The zero value
 * is the "no state" key shared by all untextured output.
 */
type StateKey struct {
	/** @brief The texture image, usually a skin URL. */
	Texture string
	/** @brief How the texture combines with vertex colours. */
	TexEnvMode string
}

func (k StateKey) IsZero() bool {
	return k == StateKey{}
}

// Less orders keys with the zero key first, then by texture and mode.
func (k StateKey) Less(other StateKey) bool {
	if k.IsZero() != other.IsZero() {
		return k.IsZero()
	}
	if k.Texture != other.Texture {
		return k.Texture < other.Texture
	}
	return k.TexEnvMode < other.TexEnvMode
}

/**
 * @brief A set of drawables sharing one rendering state.
 */
type Geode struct {
	Name      string
	State     StateKey
	Drawables []*Geometry
}

func NewGeode(state StateKey) *Geode {
	return &Geode{State: state}
}

func (g *Geode) AddDrawable(d *Geometry) {
	g.Drawables = append(g.Drawables, d)
}

func (g *Geode) TriangleCount() int {
	n := 0
	for _, d := range g.Drawables {
		n += d.TriangleCount()
	}
	return n
}

/**
 * @brief A node of the output graph. A group with a matrix places its
 * children with that local-to-world transform.
 */
type Group struct {
	Name   string
	Matrix *mgl64.Mat4
	Geodes []*Geode
	Groups []*Group
}

func NewGroup() *Group {
	return &Group{}
}

func (g *Group) AddGeode(geode *Geode) {
	g.Geodes = append(g.Geodes, geode)
}

func (g *Group) AddGroup(child *Group) {
	g.Groups = append(g.Groups, child)
}

// NumChildren counts direct children.
func (g *Group) NumChildren() int {
	return len(g.Geodes) + len(g.Groups)
}

// Walk visits every geode depth first with its accumulated local-to-world
// matrix.
func (g *Group) Walk(visit func(geode *Geode, world mgl64.Mat4)) {
	g.walk(mgl64.Ident4(), visit)
}

func (g *Group) walk(parent mgl64.Mat4, visit func(*Geode, mgl64.Mat4)) {
	world := parent
	if g.Matrix != nil {
		world = parent.Mul4(*g.Matrix)
	}
	for _, geode := range g.Geodes {
		visit(geode, world)
	}
	for _, child := range g.Groups {
		child.walk(world, visit)
	}
}

func (g *Group) TriangleCount() int {
	n := 0
	g.Walk(func(geode *Geode, _ mgl64.Mat4) {
		n += geode.TriangleCount()
	})
	return n
}

func (g *Group) DrawableCount() int {
	n := 0
	g.Walk(func(geode *Geode, _ mgl64.Mat4) {
		n += len(geode.Drawables)
	})
	return n
}
