package assets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glint3d/glint/engine/core"
)

func TestDetermineAssetType(t *testing.T) {
	cases := []struct {
		path string
		want AssetType
	}{
		{"shaders/phong.vert.spv", AssetTypeShader},
		{"textures/crate.png", AssetTypeImage},
		{"textures/photo.jpeg", AssetTypeImage},
		{"models/helmet.glb", AssetTypeModel},
		{"models/scene.gltf", AssetTypeModel},
		{"notes/readme.txt", AssetTypeNone},
		{"shaders/phong.vert", AssetTypeNone},
	}
	for _, c := range cases {
		if got := DetermineAssetType(c.path); got != c.want {
			t.Errorf("DetermineAssetType(%q) = %d, want %d", c.path, got, c.want)
		}
	}
}

func TestInitializeIndexesExistingAssets(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "shaders")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	mustWrite(t, filepath.Join(sub, "phong.vert.spv"))
	mustWrite(t, filepath.Join(root, "ignored.txt"))

	am, err := NewAssetManager()
	if err != nil {
		t.Fatal(err)
	}
	defer am.Shutdown()

	if err := am.Initialize(root, false); err != nil {
		t.Fatal(err)
	}

	info, ok := am.Lookup(filepath.Join("shaders", "phong.vert.spv"))
	if !ok {
		t.Fatal("expected shader to be indexed")
	}
	if info.Type != AssetTypeShader {
		t.Errorf("indexed type = %d, want %d", info.Type, AssetTypeShader)
	}
	if _, ok := am.Lookup("ignored.txt"); ok {
		t.Error("unrecognized file should not be indexed")
	}
}

func TestWatcherFiresAssetChanged(t *testing.T) {
	core.EventSystemInitialize()

	root := t.TempDir()
	am, err := NewAssetManager()
	if err != nil {
		t.Fatal(err)
	}
	defer am.Shutdown()

	if err := am.Initialize(root, true); err != nil {
		t.Fatal(err)
	}

	changed := make(chan string, 4)
	core.EventRegister(core.EVENT_CODE_ASSET_CHANGED, func(ctx core.EventContext) {
		se, ok := ctx.Data.(*core.SystemEvent)
		if !ok {
			t.Error("asset event carried wrong payload type")
			return
		}
		changed <- se.AssetPath
	})

	target := filepath.Join(root, "overlay.frag.spv")
	mustWrite(t, target)

	select {
	case path := <-changed:
		if filepath.Base(path) != "overlay.frag.spv" {
			t.Errorf("changed path = %s, want overlay.frag.spv", path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no asset change event within timeout")
	}
}

func mustWrite(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte{0x03, 0x02, 0x23, 0x07}, 0o644); err != nil {
		t.Fatal(err)
	}
}
