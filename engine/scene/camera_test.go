package scene

import (
	"testing"

	"github.com/glint3d/glint/engine/math"
)

const tolerance = 1e-4

func vec3ApproxEq(a, b math.Vec3) bool {
	return math.Abs(a.X-b.X) <= tolerance &&
		math.Abs(a.Y-b.Y) <= tolerance &&
		math.Abs(a.Z-b.Z) <= tolerance
}

func defaultCamera() *Camera {
	return NewCamera(math.K_PI/4.0, 1.0, 100.0)
}

func TestCameraDefaults(t *testing.T) {
	c := defaultCamera()
	if got := c.Position(); !vec3ApproxEq(got, math.NewVec3(0, 0, 5)) {
		t.Errorf("position: got %v", got)
	}
	if got := c.Forward(); !vec3ApproxEq(got, math.NewVec3(0, 0, -1)) {
		t.Errorf("forward: got %v", got)
	}
	// The default pose looks at the origin.
	view := c.ViewMatrix()
	if got := view.TransformPoint(math.NewVec3Zero()); !vec3ApproxEq(got, math.NewVec3(0, 0, -5)) {
		t.Errorf("origin in view space: got %v", got)
	}
}

func TestCameraMoveForward(t *testing.T) {
	c := defaultCamera()
	c.ApplyMove(MoveForward, 1.0)
	if got := c.Position(); !vec3ApproxEq(got, math.NewVec3(0, 0, 4)) {
		t.Errorf("position after forward: got %v", got)
	}
	c.ApplyMove(MoveBackward, 2.0)
	if got := c.Position(); !vec3ApproxEq(got, math.NewVec3(0, 0, 6)) {
		t.Errorf("position after backward: got %v", got)
	}
}

func TestCameraStrafeAfterYaw(t *testing.T) {
	c := defaultCamera()
	// Quarter turn right: forward becomes +X, right becomes +Z.
	c.ApplyLook(math.K_PI/2.0, 0)
	c.ApplyMove(MoveRight, 1.0)
	if got := c.Position(); !vec3ApproxEq(got, math.NewVec3(0, 0, 6)) {
		t.Errorf("position after strafe: got %v", got)
	}
}

func TestCameraPitchClamp(t *testing.T) {
	c := defaultCamera()
	for i := 0; i < 100; i++ {
		c.ApplyLook(0, 0.5)
	}
	if c.Pitch() > pitchLimit+tolerance {
		t.Errorf("pitch exceeded limit: %v", c.Pitch())
	}
	for i := 0; i < 200; i++ {
		c.ApplyLook(0, -0.5)
	}
	if c.Pitch() < -pitchLimit-tolerance {
		t.Errorf("pitch exceeded lower limit: %v", c.Pitch())
	}
	// A clamped camera still moves and looks normally afterwards.
	c.ApplyLook(0, 0.1)
	if c.Pitch() <= -pitchLimit {
		t.Errorf("pitch stuck at limit: %v", c.Pitch())
	}
}

func TestCameraYawWraps(t *testing.T) {
	c := defaultCamera()
	for i := 0; i < 1000; i++ {
		c.ApplyLook(0.5, 0)
	}
	if math.Abs(c.Yaw()) > math.K_PI+tolerance {
		t.Errorf("yaw unbounded: %v", c.Yaw())
	}
}

func TestCameraViewMatrixLazyRebuild(t *testing.T) {
	c := defaultCamera()
	before := c.ViewMatrix()
	if got := c.ViewMatrix(); got != before {
		t.Error("view matrix changed without a pose change")
	}
	c.ApplyMove(MoveUp, 1.0)
	if got := c.ViewMatrix(); got == before {
		t.Error("view matrix not rebuilt after a move")
	}
}

func TestCameraProjectionAspectClamped(t *testing.T) {
	c := defaultCamera()
	proj := c.ProjectionMatrix(0)
	// A zero aspect must still yield a usable (invertible) matrix.
	p := math.NewVec3(0.1, 0.1, -10)
	back := proj.Inverse().TransformPoint(proj.TransformPoint(p))
	if !vec3ApproxEq(back, p) {
		t.Errorf("projection with clamped aspect not invertible: got %v", back)
	}
}

func TestInputDeltaApply(t *testing.T) {
	c := defaultCamera()
	InputDelta{Move: true, Direction: MoveForward, Magnitude: 2.0}.Apply(c)
	InputDelta{DeltaYaw: 0.25, DeltaPitch: -0.1}.Apply(c)
	if got := c.Position(); !vec3ApproxEq(got, math.NewVec3(0, 0, 3)) {
		t.Errorf("position: got %v", got)
	}
	if math.Abs(c.Yaw()-0.25) > tolerance || math.Abs(c.Pitch()+0.1) > tolerance {
		t.Errorf("pose: yaw %v pitch %v", c.Yaw(), c.Pitch())
	}
}
