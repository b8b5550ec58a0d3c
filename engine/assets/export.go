package assets

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/spaghettifunk/extruder/engine/metadata"
)

/**
 * @brief Writes the scene graph as Wavefront OBJ. Each geode becomes a `g`
 * group. Vertices are transformed by the accumulated group matrices, so
 * localized output is written in world coordinates. Vertex colours follow
 * the position (`v x y z r g b`).
 * @param w The destination.
 * @param group The graph to write.
 * @param mtllib Optional material library name; textured geodes reference
 * their texture through `usemtl` either way.
 */
func WriteOBJ(w io.Writer, group *metadata.Group, mtllib string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# extruder: %d drawables, %d triangles\n", group.DrawableCount(), group.TriangleCount())
	if mtllib != "" {
		fmt.Fprintf(bw, "mtllib %s\n", mtllib)
	}

	// OBJ indices are one based and global across the file.
	var vBase, vtBase, vnBase int
	group.Walk(func(geode *metadata.Geode, world mgl64.Mat4) {
		fmt.Fprintf(bw, "g %s\n", objName(geode.Name))
		if geode.State.Texture != "" {
			fmt.Fprintf(bw, "usemtl %s\n", materialName(geode.State))
		}
		for _, d := range geode.Drawables {
			writeDrawable(bw, d, world, vBase, vtBase, vnBase)
			vBase += len(d.Vertices)
			vtBase += len(d.TexCoords)
			vnBase += len(d.Normals)
		}
	})
	return bw.Flush()
}

func writeDrawable(w io.Writer, d *metadata.Geometry, world mgl64.Mat4, vBase, vtBase, vnBase int) {
	hasColors := len(d.Colors) == len(d.Vertices)
	for i, v := range d.Vertices {
		p := mgl64.TransformCoordinate(v, world)
		if hasColors {
			c := d.Colors[i]
			fmt.Fprintf(w, "v %.6f %.6f %.6f %.4f %.4f %.4f\n", p[0], p[1], p[2], c[0], c[1], c[2])
		} else {
			fmt.Fprintf(w, "v %.6f %.6f %.6f\n", p[0], p[1], p[2])
		}
	}
	hasTex := len(d.TexCoords) == len(d.Vertices)
	if hasTex {
		for _, t := range d.TexCoords {
			fmt.Fprintf(w, "vt %.6f %.6f\n", t[0], t[1])
		}
	}
	hasNormals := len(d.Normals) == len(d.Vertices)
	if hasNormals {
		for _, n := range d.Normals {
			tn := mgl64.TransformNormal(n, world).Normalize()
			fmt.Fprintf(w, "vn %.6f %.6f %.6f\n", tn[0], tn[1], tn[2])
		}
	}

	ref := func(i uint32) string {
		v := vBase + int(i) + 1
		switch {
		case hasTex && hasNormals:
			return fmt.Sprintf("%d/%d/%d", v, vtBase+int(i)+1, vnBase+int(i)+1)
		case hasTex:
			return fmt.Sprintf("%d/%d", v, vtBase+int(i)+1)
		case hasNormals:
			return fmt.Sprintf("%d//%d", v, vnBase+int(i)+1)
		}
		return fmt.Sprintf("%d", v)
	}

	tris := d.TriangleIndices()
	for i := 0; i+2 < len(tris); i += 3 {
		fmt.Fprintf(w, "f %s %s %s\n", ref(tris[i]), ref(tris[i+1]), ref(tris[i+2]))
	}
	lines := d.LineIndices()
	for i := 0; i+1 < len(lines); i += 2 {
		fmt.Fprintf(w, "l %d %d\n", vBase+int(lines[i])+1, vBase+int(lines[i+1])+1)
	}
}

// WriteMTL writes one material per distinct texture in the graph.
func WriteMTL(w io.Writer, group *metadata.Group) error {
	bw := bufio.NewWriter(w)
	seen := make(map[metadata.StateKey]bool)
	group.Walk(func(geode *metadata.Geode, _ mgl64.Mat4) {
		key := geode.State
		if key.Texture == "" || seen[key] {
			return
		}
		seen[key] = true
		fmt.Fprintf(bw, "newmtl %s\nKd 1.0 1.0 1.0\nmap_Kd %s\n\n", materialName(key), key.Texture)
	})
	return bw.Flush()
}

/**
 * @brief Saves the graph to path as OBJ. When any geode is textured a
 * material library is written next to it, named after path with a .mtl
 * extension.
 */
func SaveOBJ(path string, group *metadata.Group) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	mtllib := ""
	textured := false
	group.Walk(func(geode *metadata.Geode, _ mgl64.Mat4) {
		textured = textured || geode.State.Texture != ""
	})
	if textured {
		mtlPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".mtl"
		mtllib = filepath.Base(mtlPath)
		if err := writeFile(mtlPath, func(w io.Writer) error { return WriteMTL(w, group) }); err != nil {
			return err
		}
	}
	return writeFile(path, func(w io.Writer) error { return WriteOBJ(w, group, mtllib) })
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func materialName(key metadata.StateKey) string {
	name := strings.TrimSuffix(filepath.Base(key.Texture), filepath.Ext(key.Texture))
	if key.TexEnvMode != "" {
		name += "_" + key.TexEnvMode
	}
	return objName(name)
}

func objName(name string) string {
	if name == "" {
		return "default"
	}
	return strings.Join(strings.Fields(name), "_")
}
