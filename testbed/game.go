package testbed

import (
	"fmt"
	m "math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/spaghettifunk/extruder/engine"
	"github.com/spaghettifunk/extruder/engine/core"
	"github.com/spaghettifunk/extruder/engine/features"
	"github.com/spaghettifunk/extruder/engine/geo"
	"github.com/spaghettifunk/extruder/engine/metadata"
	"github.com/spaghettifunk/extruder/engine/style"
)

// A block of procedural footprints placed around a geographic origin and
// extruded into geocentric output.
type TestCity struct {
	*engine.Application
}

type cityState struct {
	origin   mgl64.Vec2
	rows     int
	cols     int
	spacingM float64
	passes   int
}

// Degrees per meter near the origin, good enough for a few blocks.
func (s *cityState) offset(dx, dy float64) mgl64.Vec3 {
	lat := s.origin[1] + dy/111320.0
	lon := s.origin[0] + dx/(111320.0*m.Cos(s.origin[1]*m.Pi/180.0))
	return mgl64.Vec3{lon, lat, 0}
}

func NewTestCity() *TestCity {
	config := engine.DefaultApplicationConfig()
	config.Name = "Extruder testbed"
	config.LogLevel = "debug"
	config.Input.Style = "blocks"
	config.Output.Path = "testbed/out/city.obj"
	config.Filter.Geocentric = true
	config.Filter.Base = true
	config.Filter.FeatureName = "[name]"
	merge := false
	config.Filter.Merge = &merge
	config.Jobs.BatchSize = 8

	tc := &TestCity{Application: engine.NewApplication(config)}
	tc.State = &cityState{
		origin:   mgl64.Vec2{11.5755, 48.1374},
		rows:     4,
		cols:     5,
		spacingM: 40,
	}

	tc.FnInitialize = tc.Initialize
	tc.FnLoadStyles = tc.LoadStyles
	tc.FnLoadFeatures = tc.LoadFeatures
	tc.FnOnPass = tc.OnPass
	tc.FnShutdown = tc.Shutdown
	return tc
}

func (tc *TestCity) Initialize() error {
	core.LogDebug("TestCity Initialize fn....")
	return nil
}

func (tc *TestCity) LoadStyles() (*style.StyleSheet, error) {
	height := 12.0
	sheet := style.NewStyleSheet()
	sheet.AddLibrary(&style.ResourceLibrary{
		Name: "city",
		Skins: []*style.SkinResource{
			{Name: "brick", URL: "textures/brick.png", ImageWidth: ptr(4.0), ImageHeight: ptr(3.0), Tiled: true, Tags: []string{"wall"}},
			{Name: "glass", URL: "textures/glass.png", ImageWidth: ptr(6.0), ImageHeight: ptr(4.0), MinObjectHeight: ptr(20.0), Tags: []string{"wall"}},
			{Name: "tar", URL: "textures/tar.png", Tags: []string{"roof"}, TexEnvMode: style.TexEnvDecal},
		},
	})
	sheet.AddStyle(&style.Style{
		Name:    "roofs",
		Skin:    &style.SkinSymbol{Library: "city", Tags: []string{"roof"}},
		Polygon: &style.PolygonSymbol{Fill: &style.Color{0.4, 0.4, 0.45, 1}},
	})
	sheet.AddStyle(&style.Style{
		Name: "blocks",
		Extrusion: &style.ExtrusionSymbol{
			Height:           &height,
			HeightExpression: "[levels] * 3.2",
			RoofStyle:        "roofs",
		},
		Skin: &style.SkinSymbol{Library: "city", Tags: []string{"wall"}},
		Line: &style.LineSymbol{Stroke: &style.Color{0, 0, 0, 1}, Width: 1},
	})
	return sheet, nil
}

func (tc *TestCity) LoadFeatures() ([]*features.Feature, geo.SpatialReference, error) {
	state := tc.State.(*cityState)
	var feats []*features.Feature
	fid := int64(0)
	for r := 0; r < state.rows; r++ {
		for c := 0; c < state.cols; c++ {
			x, y := float64(c)*state.spacingM, float64(r)*state.spacingM
			var part *features.Part
			switch (r + c) % 3 {
			case 0:
				part = features.NewPolygon(state.ring(x, y, [][2]float64{{0, 0}, {24, 0}, {24, 16}, {0, 16}}))
			case 1:
				part = features.NewPolygon(state.ring(x, y, [][2]float64{{0, 0}, {26, 0}, {26, 10}, {10, 10}, {10, 26}, {0, 26}}))
			default:
				part = features.NewPolygon(
					state.ring(x, y, [][2]float64{{0, 0}, {30, 0}, {30, 30}, {0, 30}}),
					state.ring(x, y, [][2]float64{{10, 10}, {20, 10}, {20, 20}, {10, 20}}),
				)
			}
			f := features.NewFeature(fid, features.NewGeometry(part))
			f.Set("levels", float64(2+(r*state.cols+c)%7))
			f.Set("name", fmt.Sprintf("block-%d-%d", r, c))
			feats = append(feats, f)
			fid++
		}
	}
	return feats, geo.WGS84, nil
}

func (s *cityState) ring(x, y float64, pts [][2]float64) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(pts))
	for i, p := range pts {
		out[i] = s.offset(x+p[0], y+p[1])
	}
	return out
}

func (tc *TestCity) OnPass(result *metadata.Group, stats core.PassStats) error {
	state := tc.State.(*cityState)
	state.passes++
	if stats.Triangles == 0 {
		return fmt.Errorf("pass %d produced no triangles", state.passes)
	}
	core.LogInfo("pass %d: %d geodes in %d batches", state.passes, countGeodes(result), len(result.Groups))
	return nil
}

func (tc *TestCity) Shutdown() error {
	core.LogDebug("TestCity Shutdown fn....")
	return nil
}

func countGeodes(g *metadata.Group) int {
	n := 0
	g.Walk(func(*metadata.Geode, mgl64.Mat4) { n++ })
	return n
}

func ptr(v float64) *float64 { return &v }
