package assets

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/glint3d/glint/engine/core"
)

// AssetType classifies a watched file by extension.
type AssetType uint8

const (
	AssetTypeNone AssetType = iota
	// AssetTypeShader is a compiled SPIR-V binary.
	AssetTypeShader
	AssetTypeImage
	AssetTypeModel
)

type AssetInfo struct {
	Path       string
	Type       AssetType
	LastLoaded time.Time
}

// AssetManager indexes the asset directory and watches it for changes. Every
// create or write of a recognized asset fires EVENT_CODE_ASSET_CHANGED so
// interested systems (the shader hot-reload path in particular) can react.
type AssetManager struct {
	root   string
	assets map[string]AssetInfo

	mutex sync.RWMutex

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &AssetManager{
		assets:   make(map[string]AssetInfo),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
	}, nil
}

// Initialize indexes the asset root and, when watch is set, starts the
// background watcher goroutine.
func (am *AssetManager) Initialize(root string, watch bool) error {
	am.root = root
	if err := am.addRecursive(root); err != nil {
		return err
	}
	if watch {
		go am.start()
	}
	core.LogInfo("Asset manager initialized with root %s (%d assets).", root, len(am.assets))
	return nil
}

func (am *AssetManager) Shutdown() error {
	if am.isClosed {
		return nil
	}
	am.isClosed = true
	close(am.done)
	return nil
}

// Lookup returns the indexed info for a path relative to the asset root.
func (am *AssetManager) Lookup(relPath string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	info, ok := am.assets[filepath.Join(am.root, relPath)]
	return info, ok
}

// ResolvePath turns a root-relative asset path into one usable with the
// loaders.
func (am *AssetManager) ResolvePath(relPath string) string {
	return filepath.Join(am.root, relPath)
}

// addRecursive indexes the directory tree and adds every directory to the
// watch list.
func (am *AssetManager) addRecursive(name string) error {
	if am.isClosed {
		return errors.New("asset manager already closed")
	}
	return filepath.Walk(name, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return am.fsnotify.Add(walkPath)
		}
		am.indexFile(walkPath)
		return nil
	})
}

func (am *AssetManager) start() {
	for {
		select {
		case e := <-am.fsnotify.Events:
			if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := am.addRecursive(e.Name); err != nil {
						core.LogWarn("failed to watch new directory %s: %s", e.Name, err)
					}
				}
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				if assetType := DetermineAssetType(e.Name); assetType != AssetTypeNone {
					am.indexFile(e.Name)
					core.EventFire(core.EventContext{
						Type: core.EVENT_CODE_ASSET_CHANGED,
						Data: &core.SystemEvent{AssetPath: e.Name},
					})
				}
			}
			if e.Op&fsnotify.Remove != 0 {
				am.removeAsset(e.Name)
				am.fsnotify.Remove(e.Name)
			}

		case e := <-am.fsnotify.Errors:
			core.LogError("asset watcher: %s", e.Error())

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

func (am *AssetManager) indexFile(path string) {
	assetType := DetermineAssetType(path)
	if assetType == AssetTypeNone {
		return
	}
	am.mutex.Lock()
	am.assets[path] = AssetInfo{
		Path:       path,
		Type:       assetType,
		LastLoaded: time.Now(),
	}
	am.mutex.Unlock()
}

func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	delete(am.assets, path)
	am.mutex.Unlock()
}

func DetermineAssetType(path string) AssetType {
	switch filepath.Ext(path) {
	case ".spv":
		return AssetTypeShader
	case ".png", ".jpg", ".jpeg":
		return AssetTypeImage
	case ".gltf", ".glb":
		return AssetTypeModel
	default:
		return AssetTypeNone
	}
}
