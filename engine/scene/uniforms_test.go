package scene

import (
	"testing"
	"unsafe"

	"github.com/glint3d/glint/engine/math"
)

func TestUniformBlockSizes(t *testing.T) {
	// Sizes must match the std140 shader declarations exactly.
	if got := unsafe.Sizeof(PhongVertexUniform{}); got != 192 {
		t.Errorf("PhongVertexUniform size: got %d", got)
	}
	if got := unsafe.Sizeof(PhongFragmentUniform{}); got != 80 {
		t.Errorf("PhongFragmentUniform size: got %d", got)
	}
	if got := unsafe.Sizeof(LightMarkerUniform{}); got != 224 {
		t.Errorf("LightMarkerUniform size: got %d", got)
	}
	if got := unsafe.Sizeof(OverlayUniform{}); got != 144 {
		t.Errorf("OverlayUniform size: got %d", got)
	}
	// The marker color must land after the padded intensity scalar.
	if got := unsafe.Offsetof(LightMarkerUniform{}.Color); got != 208 {
		t.Errorf("LightMarkerUniform.Color offset: got %d", got)
	}
}

func TestBuildPhongUniforms(t *testing.T) {
	mesh := &LitMesh{
		Material: Material{
			Diffuse:  math.NewVec4(0.5, 0.2, 0.1, 1),
			Specular: math.NewVec4(1, 1, 1, 1),
		},
		Transform: math.NewMat4Translation(math.NewVec3(0, -2, 0)),
	}
	frame := FrameState{
		View:           math.NewMat4Identity(),
		Projection:     math.NewMat4Identity(),
		CameraPosition: math.NewVec3(0, 0, 5),
		Light: PointLight{
			Position:  math.NewVec3(1, 2, 3),
			Intensity: 4.0,
		},
	}
	vert, frag := BuildPhongUniforms(mesh, frame)
	if vert.Model != mesh.Transform {
		t.Error("vertex block model transform mismatch")
	}
	if frag.LightPosition != math.NewVec4(1, 2, 3, 1) {
		t.Errorf("light position: got %v", frag.LightPosition)
	}
	if frag.CameraPosition != math.NewVec4(0, 0, 5, 1) {
		t.Errorf("camera position: got %v", frag.CameraPosition)
	}
	if frag.LightIntensity != 4.0 {
		t.Errorf("light intensity: got %v", frag.LightIntensity)
	}
}

func TestUniformBytesIsACopy(t *testing.T) {
	block := OverlayUniform{Color: math.NewVec4(1, 0, 0, 1)}
	raw := UniformBytes(block)
	if len(raw) != int(unsafe.Sizeof(block)) {
		t.Fatalf("serialized length: got %d", len(raw))
	}
	before := append([]byte(nil), raw...)
	block.Color = math.NewVec4(0, 1, 0, 1)
	for i := range raw {
		if raw[i] != before[i] {
			t.Fatal("serialized bytes alias the source struct")
		}
	}
}

func TestFrameStateSnapshotIsolation(t *testing.T) {
	light := PointLight{Position: math.NewVec3(1, 1, 1), Intensity: 2}
	frame := FrameState{Light: light}
	// Mutating the scene light after the snapshot must not affect the frame.
	light.Position = math.NewVec3(9, 9, 9)
	if frame.Light.Position != math.NewVec3(1, 1, 1) {
		t.Error("frame snapshot aliased the live light")
	}
}

func TestCubeMeshShape(t *testing.T) {
	vertices, indices := NewCubeMesh()
	if len(vertices) != 24 {
		t.Errorf("vertex count: got %d", len(vertices))
	}
	if len(indices) != 36 {
		t.Errorf("index count: got %d", len(indices))
	}
	for i, idx := range indices {
		if int(idx) >= len(vertices) {
			t.Fatalf("index %d out of range: %d", i, idx)
		}
	}
	// Every vertex sits on the unit cube surface and its normal is unit length.
	for i, v := range vertices {
		if math.Abs(v.Position.X) > 0.5+tolerance ||
			math.Abs(v.Position.Y) > 0.5+tolerance ||
			math.Abs(v.Position.Z) > 0.5+tolerance {
			t.Errorf("vertex %d outside cube: %v", i, v.Position)
		}
		if math.Abs(v.Normal.Length()-1) > tolerance {
			t.Errorf("vertex %d normal not unit: %v", i, v.Normal)
		}
	}
}
