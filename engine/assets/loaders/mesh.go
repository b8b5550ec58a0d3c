package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/spaghettifunk/extruder/engine/metadata"
)

// MeshLoader reads Wavefront OBJ files back into a scene graph: one geode
// per `g` statement, each holding a single drawable in world coordinates.
// Polygonal faces are fanned into triangles. Vertex colours written after
// the position (`v x y z r g b`) are kept.
type MeshLoader struct{}

func (ml *MeshLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	group, err := DecodeOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("mesh %s: %w", path, err)
	}

	var size uint64
	if s, err := f.Stat(); err == nil {
		size = uint64(s.Size())
	}
	return &metadata.Resource{
		Type:     metadata.ResourceTypeMesh,
		Name:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		FullPath: path,
		DataSize: size,
		Data:     group,
	}, nil
}

func (ml *MeshLoader) Unload(r *metadata.Resource) error {
	r.Data = nil
	return nil
}

type objReader struct {
	positions []mgl64.Vec3
	colors    []mgl64.Vec4
	texcoords []mgl64.Vec2
	normals   []mgl64.Vec3

	group   *metadata.Group
	geode   *metadata.Geode
	current *metadata.Geometry
	// (v, vt, vn) triple to index in current
	lookup map[[3]int]uint32
}

func DecodeOBJ(r io.Reader) (*metadata.Group, error) {
	or := &objReader{group: metadata.NewGroup()}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if err := or.parse(fields); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// Attributes only some face vertices referenced are dropped.
	for _, geode := range or.group.Geodes {
		for _, d := range geode.Drawables {
			if len(d.Colors) != len(d.Vertices) {
				d.Colors = nil
			}
			if len(d.TexCoords) != len(d.Vertices) {
				d.TexCoords = nil
			}
			if len(d.Normals) != len(d.Vertices) {
				d.Normals = nil
			}
		}
	}
	return or.group, nil
}

func (or *objReader) parse(fields []string) error {
	switch fields[0] {
	case "v":
		vals, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		or.positions = append(or.positions, mgl64.Vec3{vals[0], vals[1], vals[2]})
		if len(vals) >= 6 {
			or.colors = append(or.colors, mgl64.Vec4{vals[3], vals[4], vals[5], 1})
		} else {
			or.colors = append(or.colors, mgl64.Vec4{})
		}
	case "vt":
		vals, err := parseFloats(fields[1:], 2)
		if err != nil {
			return err
		}
		or.texcoords = append(or.texcoords, mgl64.Vec2{vals[0], vals[1]})
	case "vn":
		vals, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		or.normals = append(or.normals, mgl64.Vec3{vals[0], vals[1], vals[2]})
	case "g", "o":
		name := ""
		if len(fields) > 1 {
			name = strings.Join(fields[1:], " ")
		}
		or.begin(name)
	case "usemtl":
		if len(fields) > 1 {
			or.ensure().State.Texture = fields[1]
		}
	case "f":
		if len(fields) < 4 {
			return fmt.Errorf("face with %d vertices", len(fields)-1)
		}
		idx, err := or.resolve(fields[1:])
		if err != nil {
			return err
		}
		tris := make([]uint32, 0, 3*(len(idx)-2))
		for i := 1; i+1 < len(idx); i++ {
			tris = append(tris, idx[0], idx[i], idx[i+1])
		}
		or.current.AddPrimitiveSet(metadata.NewDrawElements(metadata.PrimitiveModeTriangles, tris...))
	case "l":
		if len(fields) < 3 {
			return fmt.Errorf("line with %d vertices", len(fields)-1)
		}
		idx, err := or.resolve(fields[1:])
		if err != nil {
			return err
		}
		segs := make([]uint32, 0, 2*(len(idx)-1))
		for i := 0; i+1 < len(idx); i++ {
			segs = append(segs, idx[i], idx[i+1])
		}
		or.current.AddPrimitiveSet(metadata.NewDrawElements(metadata.PrimitiveModeLines, segs...))
	}
	return nil
}

func (or *objReader) begin(name string) {
	or.geode = metadata.NewGeode(metadata.StateKey{})
	or.geode.Name = name
	or.current = metadata.NewGeometry()
	or.current.Name = name
	or.geode.AddDrawable(or.current)
	or.group.AddGeode(or.geode)
	or.lookup = make(map[[3]int]uint32)
}

func (or *objReader) ensure() *metadata.Geode {
	if or.geode == nil {
		or.begin("")
	}
	return or.geode
}

func (or *objReader) resolve(refs []string) ([]uint32, error) {
	or.ensure()
	out := make([]uint32, 0, len(refs))
	for _, ref := range refs {
		key, err := or.reference(ref)
		if err != nil {
			return nil, err
		}
		if idx, ok := or.lookup[key]; ok {
			out = append(out, idx)
			continue
		}

		g := or.current
		idx := uint32(len(g.Vertices))
		g.Vertices = append(g.Vertices, or.positions[key[0]])
		if c := or.colors[key[0]]; c[3] > 0 {
			g.Colors = append(g.Colors, c)
		}
		if key[1] >= 0 {
			g.TexCoords = append(g.TexCoords, or.texcoords[key[1]])
		}
		if key[2] >= 0 {
			g.Normals = append(g.Normals, or.normals[key[2]])
		}
		or.lookup[key] = idx
		out = append(out, idx)
	}
	return out, nil
}

// reference parses "v", "v/vt", "v//vn" or "v/vt/vn" into zero-based
// indices, -1 marking an absent attribute.
func (or *objReader) reference(ref string) ([3]int, error) {
	key := [3]int{-1, -1, -1}
	counts := [3]int{len(or.positions), len(or.texcoords), len(or.normals)}
	for i, s := range strings.SplitN(ref, "/", 3) {
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return key, fmt.Errorf("bad index %q", ref)
		}
		if n < 0 {
			n = counts[i] + n
		} else {
			n--
		}
		if n < 0 || n >= counts[i] {
			return key, fmt.Errorf("index %q out of range", ref)
		}
		key[i] = n
	}
	if key[0] < 0 {
		return key, fmt.Errorf("face vertex %q has no position", ref)
	}
	return key, nil
}

func parseFloats(fields []string, min int) ([]float64, error) {
	if len(fields) < min {
		return nil, fmt.Errorf("expected %d values, got %d", min, len(fields))
	}
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
