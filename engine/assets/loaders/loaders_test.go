package loaders

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadTexture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checker.png")
	writeTestPNG(t, path, 4, 2)

	tex, err := LoadTexture(path)
	if err != nil {
		t.Fatal(err)
	}
	if tex.Width != 4 || tex.Height != 2 {
		t.Errorf("dimensions = %dx%d, want 4x2", tex.Width, tex.Height)
	}
	if len(tex.Pixels) != 4*2*4 {
		t.Errorf("pixel bytes = %d, want %d", len(tex.Pixels), 4*2*4)
	}
	// First pixel of the test pattern is opaque red.
	if tex.Pixels[0] != 255 || tex.Pixels[1] != 0 || tex.Pixels[3] != 255 {
		t.Errorf("first pixel = %v, want opaque red", tex.Pixels[:4])
	}
}

func TestLoadTextureMissingFile(t *testing.T) {
	if _, err := LoadTexture(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadModelTriangle(t *testing.T) {
	path := writeTestGLTF(t)

	mesh, err := LoadModel(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(mesh.Vertices) != 3 {
		t.Fatalf("vertices = %d, want 3", len(mesh.Vertices))
	}
	if len(mesh.Indices) != 3 {
		t.Fatalf("indices = %d, want 3", len(mesh.Indices))
	}
	if got := mesh.Vertices[1].Position; got.X != 1 || got.Y != 0 || got.Z != 0 {
		t.Errorf("vertex 1 position = %+v, want (1,0,0)", got)
	}
	if mesh.Indices[2] != 2 {
		t.Errorf("index 2 = %d, want 2", mesh.Indices[2])
	}
}

func TestLoadModelMissingFile(t *testing.T) {
	if _, err := LoadModel(filepath.Join(t.TempDir(), "nope.gltf")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

// writeTestGLTF builds a single-triangle glTF with an embedded buffer:
// three float32 positions followed by three uint16 indices.
func writeTestGLTF(t *testing.T) string {
	t.Helper()

	var buf bytes.Buffer
	positions := []float32{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
	}
	for _, p := range positions {
		binary.Write(&buf, binary.LittleEndian, p)
	}
	for _, i := range []uint16{0, 1, 2} {
		binary.Write(&buf, binary.LittleEndian, i)
	}

	doc := fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "buffers": [{"uri": "data:application/octet-stream;base64,%s", "byteLength": %d}],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 6}
  ],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3", "min": [0,0,0], "max": [1,1,0]},
    {"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
  ],
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "indices": 1}]}],
  "scenes": [{"nodes": [0]}],
  "nodes": [{"mesh": 0}],
  "scene": 0
}`, base64.StdEncoding.EncodeToString(buf.Bytes()), buf.Len())

	path := filepath.Join(t.TempDir(), "triangle.gltf")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
