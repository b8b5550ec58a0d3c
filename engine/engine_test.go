package engine

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/extruder/engine/core"
	"github.com/spaghettifunk/extruder/engine/features"
	"github.com/spaghettifunk/extruder/engine/geo"
	"github.com/spaghettifunk/extruder/engine/metadata"
	"github.com/spaghettifunk/extruder/engine/style"
)

const configTOML = `
name = "blocks"
log_level = "debug"

[input]
features = "blocks.geojson"
styles = "city.toml"
style = "buildings"
srs = "utm:32N"

[output]
path = "out/blocks.obj"

[filter]
merge = false
base = true
feature_name = "[name]"

[jobs]
workers = 2
batch_size = 10
`

func TestDecodeApplicationConfig(t *testing.T) {
	c, err := DecodeApplicationConfig([]byte(configTOML))
	require.NoError(t, err)
	assert.Equal(t, "blocks", c.Name)
	assert.Equal(t, "utm:32N", c.Input.SRS)
	assert.Equal(t, "buildings", c.Input.Style)
	assert.False(t, *c.Filter.Merge)
	assert.True(t, c.Filter.Base)
	assert.Equal(t, 60.0, c.Filter.WallAngleThreshold)
	assert.Equal(t, 2, c.Jobs.Workers)
	assert.Equal(t, 10, c.Jobs.BatchSize)
	assert.Equal(t, core.DefaultDiagnosticsCapacity, c.Diagnostics)
	assert.Len(t, c.FilterOptions(), 4)
}

func TestDefaultApplicationConfig(t *testing.T) {
	c := DefaultApplicationConfig()
	assert.Equal(t, "extruder", c.Name)
	assert.Equal(t, "wgs84", c.Input.SRS)
	assert.True(t, *c.Filter.Merge)
	assert.Equal(t, 4, c.Jobs.Workers)
}

func TestDecodeApplicationConfigRejects(t *testing.T) {
	_, err := DecodeApplicationConfig([]byte("[jobs]\nqueue_size = -1\n"))
	assert.Error(t, err)
	_, err = DecodeApplicationConfig([]byte("[filter]\nwall_angle_threshold = 200.0\n"))
	assert.Error(t, err)
	_, err = DecodeApplicationConfig([]byte("name = \n"))
	assert.Error(t, err)
}

func TestSelectStyle(t *testing.T) {
	sheet := style.NewStyleSheet()
	s, err := selectStyle(sheet, "")
	require.NoError(t, err)
	assert.Nil(t, s.Extrusion)

	sheet.AddStyle(&style.Style{Name: "a", Extrusion: &style.ExtrusionSymbol{}})
	s, err = selectStyle(sheet, "")
	require.NoError(t, err)
	assert.Equal(t, "a", s.Name)

	sheet.AddStyle(&style.Style{Name: "b"})
	_, err = selectStyle(sheet, "")
	assert.Error(t, err)
	s, err = selectStyle(sheet, "b")
	require.NoError(t, err)
	assert.Equal(t, "b", s.Name)
	_, err = selectStyle(sheet, "c")
	assert.ErrorContains(t, err, `"c"`)
}

func block(fid int64, x float64) *features.Feature {
	f := features.NewFeature(fid, features.NewGeometry(features.NewPolygon(
		[]mgl64.Vec3{{x, 0, 0}, {x + 10, 0, 0}, {x + 10, 10, 0}, {x, 10, 0}},
	)))
	f.Set("height", 6.0+float64(fid))
	return f
}

func newTestEngine(t *testing.T, config *ApplicationConfig) (*Engine, *Application) {
	t.Helper()
	app := NewApplication(config)
	app.FnLoadFeatures = func() ([]*features.Feature, geo.SpatialReference, error) {
		return []*features.Feature{block(1, 0), block(2, 20), block(3, 40)}, geo.NewLocal("site"), nil
	}
	app.FnLoadStyles = func() (*style.StyleSheet, error) {
		sheet := style.NewStyleSheet()
		sheet.AddStyle(&style.Style{Name: "buildings", Extrusion: &style.ExtrusionSymbol{HeightExpression: "[height]"}})
		return sheet, nil
	}

	e, err := New(app)
	require.NoError(t, err)
	e.report = io.Discard
	require.NoError(t, e.Initialize())
	t.Cleanup(func() { e.Shutdown() })
	return e, app
}

func TestRunPassWritesOutput(t *testing.T) {
	config := DefaultApplicationConfig()
	config.Jobs.BatchSize = 2
	config.Output.Path = filepath.Join(t.TempDir(), "site.obj")
	e, app := newTestEngine(t, config)

	var seen core.PassStats
	app.FnOnPass = func(result *metadata.Group, stats core.PassStats) error {
		seen = stats
		return nil
	}

	require.NoError(t, e.Run())
	assert.Equal(t, 3, seen.Features)
	assert.Equal(t, 30, seen.Triangles)
	assert.Greater(t, e.metrics.PassTime(), 0.0)

	obj, err := os.ReadFile(config.Output.Path)
	require.NoError(t, err)
	assert.Equal(t, 30, strings.Count(string(obj), "\nf "))

	group, stats, err := e.RunPass()
	require.NoError(t, err)
	assert.Equal(t, seen.Triangles, stats.Triangles)
	assert.Equal(t, seen.Drawables, stats.Drawables)
	assert.Len(t, group.Groups, 2)
	lo, hi := 0.0, 0.0
	group.Walk(func(geode *metadata.Geode, _ mgl64.Mat4) {
		for _, d := range geode.Drawables {
			for _, v := range d.Vertices {
				lo, hi = min(lo, v[2]), max(hi, v[2])
			}
		}
	})
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 9.0, hi)
}

func TestRunPassSkipsFeaturesWithoutGeometry(t *testing.T) {
	e, app := newTestEngine(t, DefaultApplicationConfig())
	app.FnLoadFeatures = func() ([]*features.Feature, geo.SpatialReference, error) {
		return []*features.Feature{
			block(1, 0),
			{FID: 2},
			nil,
			features.NewFeature(4, features.NewGeometry()),
		}, geo.NewLocal("site"), nil
	}

	group, stats, err := e.RunPass()
	require.NoError(t, err)
	require.NotNil(t, group)
	assert.Equal(t, 10, stats.Triangles)
}

func TestRunRequiresInitialize(t *testing.T) {
	e, err := New(NewApplication(nil))
	require.NoError(t, err)
	assert.ErrorIs(t, e.Run(), ErrNotInitialized)
	require.NoError(t, e.Shutdown())
	require.NoError(t, e.Shutdown())
}

func TestRunPassFromFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "city.toml"), []byte(`
[styles.buildings.extrusion]
height = 4.0
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blocks.geojson"), []byte(`{"type":"FeatureCollection","features":[
  {"type":"Feature","id":1,"properties":{},"geometry":{"type":"Polygon","coordinates":[[[0,0],[8,0],[8,8],[0,8],[0,0]]]}}]}`), 0o644))

	config := DefaultApplicationConfig()
	config.Input.Styles = filepath.Join(dir, "city.toml")
	config.Input.Features = filepath.Join(dir, "blocks.geojson")
	config.Input.SRS = "local"

	app := NewApplication(config)
	e, err := New(app)
	require.NoError(t, err)
	e.report = io.Discard
	require.NoError(t, e.Initialize())
	defer e.Shutdown()

	_, stats, err := e.RunPass()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Features)
	assert.Equal(t, 10, stats.Triangles)
}

func TestQuitEventStopsWatching(t *testing.T) {
	dir := t.TempDir()
	stylePath := filepath.Join(dir, "city.toml")
	require.NoError(t, os.WriteFile(stylePath, []byte("[styles.a.extrusion]\n"), 0o644))

	config := DefaultApplicationConfig()
	config.Watch = true
	config.Input.Styles = stylePath
	e, _ := newTestEngine(t, config)

	done := make(chan error, 1)
	go func() { done <- e.Run() }()

	core.EventFire(core.EVENT_CODE_APPLICATION_QUIT, nil, core.EventContext{})
	require.NoError(t, <-done)
}

func TestRenderPassReport(t *testing.T) {
	diags := core.NewDiagnostics(4)
	diags.Warn("extrude", core.ErrMissingExtrusionSymbol, "style %q", "a")
	out := RenderPassReport("site", core.PassStats{Features: 3, Triangles: 30}, diags, "site.obj")
	assert.Contains(t, out, "site")
	assert.Contains(t, out, "30")
	assert.Contains(t, out, "site.obj")
	assert.Contains(t, out, "1 diagnostics")
}
