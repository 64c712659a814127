package scene

import (
	"unsafe"

	"github.com/glint3d/glint/engine/math"
)

// Uniform block layouts. Field order, alignment and padding match the std140
// declarations in the shaders; the structs are uploaded byte for byte.

// PhongVertexUniform feeds the lit-mesh vertex stage (set 0, binding 0).
type PhongVertexUniform struct {
	Model      math.Mat4
	View       math.Mat4
	Projection math.Mat4
}

// PhongFragmentUniform feeds the lit-mesh fragment stage (set 0, binding 1).
// Light and camera positions are in world space.
type PhongFragmentUniform struct {
	Kd             math.Vec4
	Ks             math.Vec4
	LightPosition  math.Vec4
	CameraPosition math.Vec4
	LightIntensity float32
	_              [3]float32
}

// LightMarkerUniform feeds both marker stages (set 0, binding 0).
type LightMarkerUniform struct {
	Model      math.Mat4
	View       math.Mat4
	Projection math.Mat4
	Intensity  float32
	_          [3]float32
	Color      math.Vec4
}

// OverlayUniform feeds both overlay stages (set 0, binding 0).
type OverlayUniform struct {
	View       math.Mat4
	Projection math.Mat4
	Color      math.Vec4
}

// FrameState is the immutable per-frame snapshot the uniform producers read.
// It is captured once per frame before recording starts so that later scene
// mutations cannot leak into an in-flight frame.
type FrameState struct {
	View           math.Mat4
	Projection     math.Mat4
	CameraPosition math.Vec3
	Light          PointLight
}

// BuildPhongUniforms produces the two lit-mesh blocks for one renderable.
func BuildPhongUniforms(mesh *LitMesh, frame FrameState) (PhongVertexUniform, PhongFragmentUniform) {
	vert := PhongVertexUniform{
		Model:      mesh.Transform,
		View:       frame.View,
		Projection: frame.Projection,
	}
	frag := PhongFragmentUniform{
		Kd:             mesh.Material.Diffuse,
		Ks:             mesh.Material.Specular,
		LightPosition:  frame.Light.Position.ToVec4(1.0),
		CameraPosition: frame.CameraPosition.ToVec4(1.0),
		LightIntensity: frame.Light.Intensity,
	}
	return vert, frag
}

// BuildMarkerUniform produces the light-marker block.
func BuildMarkerUniform(marker *LightMarker, frame FrameState) LightMarkerUniform {
	return LightMarkerUniform{
		Model:      marker.Transform,
		View:       frame.View,
		Projection: frame.Projection,
		Intensity:  frame.Light.Intensity,
		Color:      frame.Light.Color,
	}
}

// BuildOverlayUniform produces the overlay block. The model transform is
// identity by contract, so only view and projection travel.
func BuildOverlayUniform(overlay *Overlay, frame FrameState) OverlayUniform {
	return OverlayUniform{
		View:       frame.View,
		Projection: frame.Projection,
		Color:      overlay.Color,
	}
}

// UniformBytes serializes a uniform block into a fresh byte slice. The copy
// keeps the caller free to mutate the struct afterwards without touching
// data already queued for upload.
func UniformBytes[T any](block T) []byte {
	size := int(unsafe.Sizeof(block))
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(unsafe.Pointer(&block)), size))
	return out
}
