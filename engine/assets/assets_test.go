package assets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/extruder/engine/core"
	"github.com/spaghettifunk/extruder/engine/features"
	"github.com/spaghettifunk/extruder/engine/metadata"
	"github.com/spaghettifunk/extruder/engine/style"
)

const sheet = `
[styles.default.extrusion]
height = 12.0
`

const collection = `{"type":"FeatureCollection","features":[
  {"type":"Feature","id":3,"properties":{},
   "geometry":{"type":"Polygon","coordinates":[[[0,0],[4,0],[4,4],[0,0]]]}}]}`

func newManager(t *testing.T) *AssetManager {
	t.Helper()
	am, err := NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize())
	t.Cleanup(func() { am.Shutdown() })
	return am
}

func TestDetermineAssetType(t *testing.T) {
	assert.Equal(t, metadata.ResourceTypeStyleSheet, determineAssetType("a/city.TOML"))
	assert.Equal(t, metadata.ResourceTypeFeatures, determineAssetType("blocks.geojson"))
	assert.Equal(t, metadata.ResourceTypeFeatures, determineAssetType("blocks.json"))
	assert.Equal(t, metadata.ResourceTypeMesh, determineAssetType("out.obj"))
	assert.Equal(t, metadata.ResourceTypeNone, determineAssetType("brick.png"))
}

func TestLoadAssetByExtension(t *testing.T) {
	dir := t.TempDir()
	stylePath := filepath.Join(dir, "city.toml")
	featPath := filepath.Join(dir, "blocks.geojson")
	require.NoError(t, os.WriteFile(stylePath, []byte(sheet), 0o644))
	require.NoError(t, os.WriteFile(featPath, []byte(collection), 0o644))

	am := newManager(t)

	res, err := am.LoadAsset(stylePath, metadata.ResourceTypeNone, nil)
	require.NoError(t, err)
	ss := res.Data.(*style.StyleSheet)
	st, ok := ss.Style("default")
	require.True(t, ok)
	assert.Equal(t, 12.0, st.Extrusion.HeightValue())

	res, err = am.LoadAsset(featPath, metadata.ResourceTypeFeatures, &metadata.FeatureResourceParams{})
	require.NoError(t, err)
	feats := res.Data.([]*features.Feature)
	require.Len(t, feats, 1)
	assert.Equal(t, int64(3), feats[0].FID)
	require.NoError(t, am.UnloadAsset(res))

	_, err = am.LoadAsset(filepath.Join(dir, "brick.png"), metadata.ResourceTypeNone, nil)
	assert.ErrorContains(t, err, "no loader")
}

func TestWatchIndexesAssets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "city.toml"), []byte(sheet), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0o644))

	am := newManager(t)
	require.NoError(t, am.Watch(dir))

	infos := am.Assets()
	require.Len(t, infos, 1)
	assert.Equal(t, filepath.Join(dir, "city.toml"), infos[0].Path)
	assert.Equal(t, metadata.ResourceTypeStyleSheet, infos[0].Type)

	require.NoError(t, am.Unwatch(dir))
	assert.Empty(t, am.Assets())
}

func TestWatchFiresAssetsChanged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "city.toml")
	require.NoError(t, os.WriteFile(path, []byte(sheet), 0o644))

	core.EventInitialize()
	changed := make(chan string, 8)
	listener := &struct{ name string }{"watch-test"}
	require.True(t, core.EventRegister(core.EVENT_CODE_ASSETS_CHANGED, listener,
		func(code core.SystemEventCode, sender interface{}, listenerInst interface{}, data core.EventContext) bool {
			select {
			case changed <- data.Data.C[0]:
			default:
			}
			return false
		}))
	defer core.EventUnregister(core.EVENT_CODE_ASSETS_CHANGED, listener)

	am := newManager(t)
	require.NoError(t, am.Watch(path))

	// Files next to the watched one are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte(sheet), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(sheet+"\n"), 0o644))

	select {
	case name := <-changed:
		assert.Equal(t, path, name)
	case <-time.After(5 * time.Second):
		t.Fatal("no change event")
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	am, err := NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Shutdown())
	require.NoError(t, am.Shutdown())
	assert.ErrorIs(t, am.Watch(t.TempDir()), ErrManagerClosed)
}
