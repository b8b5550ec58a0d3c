package loaders

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/extruder/engine/features"
	"github.com/spaghettifunk/extruder/engine/metadata"
	"github.com/spaghettifunk/extruder/engine/style"
)

const styleSheetTOML = `
[styles.buildings.extrusion]
height_expr = "[height]"
wall_style = "walls"
flatten = false

[styles.buildings.skin]
library = "city"
tags = ["roof"]

[styles.buildings.polygon]
fill = "#ff0000"

[styles.walls.skin]
library = "city"
tags = ["wall"]

[[libraries.city.skins]]
name = "brick"
url = "brick.png"
image_width = 4.0
image_height = 3.0
max_object_height = 40.0
tags = ["wall"]
tiled = true

[[libraries.city.skins]]
name = "shingle"
url = "shingle.png"
tags = ["roof"]
tex_env_mode = "decal"
`

func TestDecodeStyleSheet(t *testing.T) {
	sheet, err := DecodeStyleSheet([]byte(styleSheetTOML))
	require.NoError(t, err)
	assert.Equal(t, []string{"buildings", "walls"}, sheet.StyleNames())

	buildings, ok := sheet.Style("buildings")
	require.True(t, ok)
	assert.Equal(t, "buildings", buildings.Name)
	require.NotNil(t, buildings.Extrusion)
	assert.Equal(t, "[height]", buildings.Extrusion.HeightExpression)
	assert.False(t, buildings.Extrusion.FlattenValue())
	require.NotNil(t, buildings.Polygon.Fill)
	assert.Equal(t, style.Color{1, 0, 0, 1}, *buildings.Polygon.Fill)

	lib, ok := sheet.ResourceLibrary("city")
	require.True(t, ok)
	assert.Equal(t, "city", lib.Name)
	require.Len(t, lib.Skins, 2)
	assert.Equal(t, 4.0, lib.Skins[0].Width())
	assert.True(t, lib.Skins[0].Tiled)
	assert.True(t, lib.Skins[1].IsDecal())
	assert.Equal(t, 3.0, lib.Skins[1].Height())

	resolved := style.Resolve(*buildings, sheet)
	require.NotNil(t, resolved.WallSkin)
	assert.Equal(t, []string{"wall"}, resolved.WallSkin.Tags)
}

func TestDecodeStyleSheetRejectsBadColor(t *testing.T) {
	_, err := DecodeStyleSheet([]byte("[styles.a.polygon]\nfill = \"red\"\n"))
	assert.Error(t, err)
}

func TestDecodeStyleSheetTransparentColors(t *testing.T) {
	sheet, err := DecodeStyleSheet([]byte("[styles.a.extrusion]\nflatten = true\n[styles.a.polygon]\nfill = \"#00000000\"\n[styles.a.line]\nwidth = 2.0\n"))
	require.NoError(t, err)

	a, ok := sheet.Style("a")
	require.True(t, ok)
	require.NotNil(t, a.Polygon.Fill)
	assert.Nil(t, a.Line.Stroke)

	r := style.Resolve(*a, sheet)
	assert.Equal(t, style.Color{}, r.WallColor())
	assert.Equal(t, style.White, r.OutlineColor())
}

const featureCollection = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": 7, "properties": {"height": 12, "name": "hall"},
     "geometry": {"type": "Polygon", "coordinates": [
       [[0,0],[10,0],[10,10],[0,10],[0,0]],
       [[2,2],[4,2],[4,4],[2,2]]]}},
    {"type": "Feature", "properties": {"ref": "42"},
     "geometry": {"type": "MultiPolygon", "coordinates": [
       [[[0,0,5],[1,0,5],[1,1,5],[0,0,5]]],
       [[[5,5],[6,5],[6,6],[5,5]]]]}},
    {"type": "Feature", "properties": {},
     "geometry": {"type": "LineString", "coordinates": [[0,0],[3,4]]}},
    {"type": "Feature", "properties": {},
     "geometry": {"type": "Point", "coordinates": [1,2]}},
    {"type": "Feature", "properties": {}, "geometry": null}
  ]
}`

func TestDecodeFeatures(t *testing.T) {
	feats, err := DecodeFeatures([]byte(featureCollection), nil)
	require.NoError(t, err)
	require.Len(t, feats, 3)

	hall := feats[0]
	assert.Equal(t, int64(7), hall.FID)
	assert.Equal(t, 12.0, hall.Double("height", 0))
	assert.Equal(t, "hall", hall.Text("name"))
	require.Len(t, hall.Geometry.Parts, 1)
	assert.Equal(t, features.PartTypePolygon, hall.Geometry.Parts[0].Type)
	assert.Len(t, hall.Geometry.Parts[0].Points, 5)
	require.Len(t, hall.Geometry.Parts[0].Holes, 1)

	multi := feats[1]
	assert.Equal(t, int64(1), multi.FID, "falls back to the feature index")
	require.Len(t, multi.Geometry.Parts, 2)
	assert.Equal(t, mgl64.Vec3{1, 0, 5}, multi.Geometry.Parts[0].Points[1])
	assert.Equal(t, 0.0, multi.Geometry.Parts[1].Points[0][2])

	line := feats[2]
	assert.Equal(t, features.PartTypeLine, line.Geometry.Parts[0].Type)
}

func TestDecodeFeaturesIDAttribute(t *testing.T) {
	feats, err := DecodeFeatures([]byte(featureCollection), &metadata.FeatureResourceParams{IDAttribute: "ref"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), feats[0].FID)
	assert.Equal(t, int64(42), feats[1].FID)
}

func TestDecodeFeaturesErrors(t *testing.T) {
	_, err := DecodeFeatures([]byte("not json"), nil)
	assert.Error(t, err)

	bad := `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},
	  "geometry":{"type":"LineString","coordinates":[[1],[2]]}}]}`
	_, err = DecodeFeatures([]byte(bad), nil)
	assert.ErrorContains(t, err, "feature 0")
}

const objFile = `# test
v 0 0 0 1 0 0
v 1 0 0 1 0 0
v 1 1 0 1 0 0
v 0 1 0 1 0 0
vn 0 0 1
g roof
usemtl shingle
f 1//1 2//1 3//1 4//1
g edges
l 1 2
l -1 -2
`

func TestDecodeOBJ(t *testing.T) {
	group, err := DecodeOBJ(strings.NewReader(objFile))
	require.NoError(t, err)
	require.Len(t, group.Geodes, 2)

	roof := group.Geodes[0]
	assert.Equal(t, "roof", roof.Name)
	assert.Equal(t, "shingle", roof.State.Texture)
	d := roof.Drawables[0]
	assert.Equal(t, 2, d.TriangleCount())
	assert.Equal(t, 4, d.VertexCount())
	assert.Len(t, d.Normals, 4)
	assert.Equal(t, mgl64.Vec4{1, 0, 0, 1}, d.Colors[2])

	edges := group.Geodes[1].Drawables[0]
	assert.Equal(t, 0, edges.TriangleCount())
	assert.Len(t, edges.LineIndices(), 4)
	assert.Equal(t, 4, edges.VertexCount())
}

func TestDecodeOBJErrors(t *testing.T) {
	_, err := DecodeOBJ(strings.NewReader("v 0 0 0\nf 1 2 3\n"))
	assert.ErrorContains(t, err, "line 2")
	_, err = DecodeOBJ(strings.NewReader("v 0 zero 0\n"))
	assert.Error(t, err)
}

func TestLoadersReadFiles(t *testing.T) {
	dir := t.TempDir()
	stylePath := filepath.Join(dir, "city.toml")
	featPath := filepath.Join(dir, "blocks.geojson")
	require.NoError(t, os.WriteFile(stylePath, []byte(styleSheetTOML), 0o644))
	require.NoError(t, os.WriteFile(featPath, []byte(featureCollection), 0o644))

	res, err := (&StyleLoader{}).Load(stylePath, metadata.ResourceTypeStyleSheet, nil)
	require.NoError(t, err)
	assert.Equal(t, "city", res.Name)
	assert.IsType(t, &style.StyleSheet{}, res.Data)

	res, err = (&FeatureLoader{}).Load(featPath, metadata.ResourceTypeFeatures, nil)
	require.NoError(t, err)
	assert.Equal(t, metadata.ResourceTypeFeatures, res.Type)
	assert.Len(t, res.Data, 3)
	require.NoError(t, (&FeatureLoader{}).Unload(res))
	assert.Nil(t, res.Data)

	_, err = (&StyleLoader{}).Load(filepath.Join(dir, "missing.toml"), metadata.ResourceTypeStyleSheet, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
