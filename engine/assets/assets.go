package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/extruder/engine/assets/loaders"
	"github.com/spaghettifunk/extruder/engine/core"
	"github.com/spaghettifunk/extruder/engine/metadata"
)

var ErrManagerClosed = errors.New("asset manager already closed")

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

// AssetManager loads style sheets, feature collections and meshes through
// typed loaders. Watched assets fire EVENT_CODE_ASSETS_CHANGED when they
// are written, created or removed.
type AssetManager struct {
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader
	watched map[string]bool

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	started  bool
	isClosed bool
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[metadata.ResourceType]Loader),
		watched:  make(map[string]bool),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}, nil
}

func (am *AssetManager) Initialize() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return ErrManagerClosed
	}
	if !am.started {
		am.started = true
		go am.start()
	}
	am.mutex.Unlock()

	// Register loaders
	am.registerLoader(metadata.ResourceTypeText, &loaders.TextLoader{})
	am.registerLoader(metadata.ResourceTypeStyleSheet, &loaders.StyleLoader{})
	am.registerLoader(metadata.ResourceTypeFeatures, &loaders.FeatureLoader{})
	am.registerLoader(metadata.ResourceTypeMesh, &loaders.MeshLoader{})

	return nil
}

// Watch starts tracking the named file, or every asset below the named
// directory. Files are watched through their parent directory so editors
// that replace the file on save keep being followed.
func (am *AssetManager) Watch(name string) error {
	am.mutex.Lock()
	closed := am.isClosed
	am.mutex.Unlock()
	if closed {
		return ErrManagerClosed
	}

	s, err := os.Stat(name)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return am.watchRecursive(name, false)
	}

	am.mutex.Lock()
	am.watched[filepath.Clean(name)] = true
	am.mutex.Unlock()
	am.handleFileEvent(filepath.Clean(name))
	return am.fsnotify.Add(filepath.Dir(name))
}

// Unwatch stops tracking the named file or directory.
func (am *AssetManager) Unwatch(name string) error {
	s, err := os.Stat(name)
	if err == nil && s.IsDir() {
		return am.watchRecursive(name, true)
	}
	am.mutex.Lock()
	delete(am.watched, filepath.Clean(name))
	am.mutex.Unlock()
	am.removeAsset(filepath.Clean(name))
	return nil
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// LoadAsset loads path with the loader registered for resourceType. A
// ResourceTypeNone request picks the type from the file extension.
func (am *AssetManager) LoadAsset(path string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	if resourceType == metadata.ResourceTypeNone {
		resourceType = determineAssetType(path)
	}

	loader, loaderExists := am.loaders[resourceType]
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %s", resourceType)
	}

	res, err := loader.Load(path, resourceType, params)
	if err != nil {
		return nil, err
	}

	key := filepath.Clean(path)
	am.mutex.Lock()
	if asset, exists := am.assets[key]; exists {
		// Update the loaded time
		asset.LastLoaded = time.Now()
		am.assets[key] = asset
	}
	am.mutex.Unlock()

	core.LogDebug("loaded %s asset %s (%d bytes)", resourceType, path, res.DataSize)
	return res, nil
}

func (am *AssetManager) UnloadAsset(asset *metadata.Resource) error {
	if asset == nil {
		return nil
	}
	loader, exists := am.loaders[asset.Type]
	if !exists {
		return fmt.Errorf("no loader registered for asset type: %s", asset.Type)
	}
	return loader.Unload(asset)
}

// Assets lists the tracked assets sorted by path.
func (am *AssetManager) Assets() []AssetInfo {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	out := make([]AssetInfo, 0, len(am.assets))
	for _, a := range am.assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	started := am.started
	am.mutex.Unlock()

	if !started {
		return am.fsnotify.Close()
	}
	close(am.done)
	<-am.stopped
	return nil
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {

		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			name := filepath.Clean(e.Name)
			s, err := os.Stat(name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					am.watchRecursive(name, false)
				}
				continue
			}
			if !am.tracked(name) {
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				am.handleFileEvent(name)
			}
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				am.removeAsset(name)
			}
			if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				ctx := core.EventContext{}
				ctx.Data.C[0] = name
				core.EventFire(core.EVENT_CODE_ASSETS_CHANGED, am, ctx)
			}

		case e, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(e.Error())

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

// tracked reports whether name is a watched file or a known asset below a
// watched directory.
func (am *AssetManager) tracked(name string) bool {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	if am.watched[name] {
		return true
	}
	for w := range am.watched {
		if strings.HasPrefix(name, w+string(filepath.Separator)) {
			return determineAssetType(name) != metadata.ResourceTypeNone
		}
	}
	return false
}

// watchRecursive adds all directories under the given one to the watch list.
// this is probably a very racey process. What if a file is added to a folder before we get the watch added?
func (am *AssetManager) watchRecursive(path string, unWatch bool) error {
	path = filepath.Clean(path)
	am.mutex.Lock()
	if unWatch {
		delete(am.watched, path)
	} else {
		am.watched[path] = true
	}
	am.mutex.Unlock()

	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if unWatch {
				return am.fsnotify.Remove(walkPath)
			}
			return am.fsnotify.Add(walkPath)
		}
		if unWatch {
			am.removeAsset(walkPath)
		} else {
			am.handleFileEvent(walkPath)
		}
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	assetType := determineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return
	}
	am.assets[path] = AssetInfo{
		Path:       path,
		Type:       assetType,
		LastLoaded: time.Now(),
	}
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
}

func determineAssetType(path string) metadata.ResourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return metadata.ResourceTypeStyleSheet
	case ".geojson", ".json":
		return metadata.ResourceTypeFeatures
	case ".obj":
		return metadata.ResourceTypeMesh
	case ".txt":
		return metadata.ResourceTypeText
	default:
		return metadata.ResourceTypeNone
	}
}
