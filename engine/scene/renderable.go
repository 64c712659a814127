package scene

import (
	"github.com/google/uuid"

	"github.com/glint3d/glint/engine/math"
)

// RenderableKind selects which pipeline draws a renderable. The set is
// closed; the renderer switches on it exhaustively.
type RenderableKind uint8

const (
	// KindLitMesh is a textured mesh shaded with the Phong model.
	KindLitMesh RenderableKind = iota
	// KindLightMarker is a small unshaded cube visualizing the point light.
	KindLightMarker
	// KindOverlay is a flat 2D shape drawn on top of the 3D scene.
	KindOverlay
)

// Material holds the Phong reflectance terms and an optional diffuse texture.
type Material struct {
	Diffuse  math.Vec4
	Specular math.Vec4
	Texture  *Texture
}

// Texture is decoded RGBA pixel data ready for upload.
type Texture struct {
	ID     string
	Width  uint32
	Height uint32
	Pixels []uint8
}

// LitMesh is indexed 3D geometry with a material and a world transform.
type LitMesh struct {
	Vertices  []math.Vertex3D
	Indices   []uint32
	Material  Material
	Transform math.Mat4
}

// LightMarker mirrors the point light's pose so the light source is visible
// in the scene.
type LightMarker struct {
	Transform math.Mat4
}

// Overlay is screen-facing 2D geometry with a flat color.
type Overlay struct {
	Vertices []math.Vertex2D
	Indices  []uint32
	Color    math.Vec4
}

// Renderable is one drawable object. Exactly one of Mesh, Marker and Overlay
// is set, matching Kind.
type Renderable struct {
	ID      string
	Kind    RenderableKind
	Mesh    *LitMesh
	Marker  *LightMarker
	Overlay *Overlay
}

func NewLitMesh(mesh *LitMesh) *Renderable {
	return &Renderable{ID: uuid.New().String(), Kind: KindLitMesh, Mesh: mesh}
}

func NewLightMarker(marker *LightMarker) *Renderable {
	return &Renderable{ID: uuid.New().String(), Kind: KindLightMarker, Marker: marker}
}

func NewOverlay(overlay *Overlay) *Renderable {
	return &Renderable{ID: uuid.New().String(), Kind: KindOverlay, Overlay: overlay}
}

// NewCubeMesh builds a unit cube centered on the origin with per-face
// normals and texture coordinates. 24 vertices, 36 indices.
func NewCubeMesh() ([]math.Vertex3D, []uint32) {
	h := float32(0.5)
	faces := []struct {
		normal math.Vec3
		// corners wind counter-clockwise seen from outside
		corners [4]math.Vec3
	}{
		{math.NewVec3(0, 0, 1), [4]math.Vec3{
			{X: -h, Y: -h, Z: h}, {X: h, Y: -h, Z: h}, {X: h, Y: h, Z: h}, {X: -h, Y: h, Z: h}}},
		{math.NewVec3(0, 0, -1), [4]math.Vec3{
			{X: h, Y: -h, Z: -h}, {X: -h, Y: -h, Z: -h}, {X: -h, Y: h, Z: -h}, {X: h, Y: h, Z: -h}}},
		{math.NewVec3(1, 0, 0), [4]math.Vec3{
			{X: h, Y: -h, Z: h}, {X: h, Y: -h, Z: -h}, {X: h, Y: h, Z: -h}, {X: h, Y: h, Z: h}}},
		{math.NewVec3(-1, 0, 0), [4]math.Vec3{
			{X: -h, Y: -h, Z: -h}, {X: -h, Y: -h, Z: h}, {X: -h, Y: h, Z: h}, {X: -h, Y: h, Z: -h}}},
		{math.NewVec3(0, 1, 0), [4]math.Vec3{
			{X: -h, Y: h, Z: h}, {X: h, Y: h, Z: h}, {X: h, Y: h, Z: -h}, {X: -h, Y: h, Z: -h}}},
		{math.NewVec3(0, -1, 0), [4]math.Vec3{
			{X: -h, Y: -h, Z: -h}, {X: h, Y: -h, Z: -h}, {X: h, Y: -h, Z: h}, {X: -h, Y: -h, Z: h}}},
	}
	uvs := [4]math.Vec2{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}}

	vertices := make([]math.Vertex3D, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(vertices))
		for i, p := range f.corners {
			vertices = append(vertices, math.Vertex3D{
				Position: p,
				Normal:   f.normal,
				Texcoord: uvs[i],
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return vertices, indices
}

// NewTriangleOverlay builds the default flat overlay shape.
func NewTriangleOverlay(color math.Vec4) *Overlay {
	return &Overlay{
		Vertices: []math.Vertex2D{
			{Position: math.NewVec2(-0.5, -0.5)},
			{Position: math.NewVec2(0.0, 0.5)},
			{Position: math.NewVec2(0.5, -0.25)},
		},
		Indices: []uint32{0, 1, 2},
		Color:   color,
	}
}
