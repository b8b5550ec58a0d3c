package testbed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/extruder/engine/core"
	"github.com/spaghettifunk/extruder/engine/geo"
	"github.com/spaghettifunk/extruder/engine/style"
	"github.com/spaghettifunk/extruder/engine/systems"
)

func TestCityExtrudes(t *testing.T) {
	tc := NewTestCity()
	sheet, err := tc.LoadStyles()
	require.NoError(t, err)
	feats, srs, err := tc.LoadFeatures()
	require.NoError(t, err)
	require.Len(t, feats, 20)
	assert.True(t, srs.IsGeographic())

	blocks, ok := sheet.Style("blocks")
	require.True(t, ok)
	resolved := style.Resolve(*blocks, sheet)
	require.NotNil(t, resolved.RoofSkin)

	cx := &systems.FilterContext{
		Extent:      geo.NewExtent(srs),
		Geocentric:  true,
		Styles:      sheet,
		Diagnostics: core.NewDiagnostics(64),
	}
	for _, f := range feats {
		b := f.Geometry.Bounds()
		cx.Extent.Expand(b.Min[0], b.Min[1])
		cx.Extent.Expand(b.Max[0], b.Max[1])
	}
	group, err := systems.NewExtrudeGeometryFilter(*blocks, tc.ApplicationConfig.FilterOptions()...).Push(feats, cx)
	require.NoError(t, err)
	assert.NotNil(t, group.Matrix, "geocentric output is localized")
	assert.Greater(t, group.TriangleCount(), 0)
	assert.Zero(t, cx.Diagnostics.Count(), "%v", cx.Diagnostics.Entries())
}
