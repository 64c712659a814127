package loaders

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"

	"github.com/glint3d/glint/engine/scene"
)

// LoadTexture decodes a PNG or JPEG file into tightly packed RGBA8 pixels
// ready for GPU upload.
func LoadTexture(path string) (*scene.Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}
	return textureFromImage(path, img), nil
}

// DecodeTexture decodes in-memory image bytes, as found embedded in GLB
// buffers.
func DecodeTexture(id string, data []byte) (*scene.Texture, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode embedded texture %s: %w", id, err)
	}
	return textureFromImage(id, img), nil
}

func textureFromImage(id string, img image.Image) *scene.Texture {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return &scene.Texture{
		ID:     id,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
		Pixels: rgba.Pix,
	}
}
