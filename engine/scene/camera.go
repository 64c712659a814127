package scene

import (
	"github.com/glint3d/glint/engine/math"
)

// MoveDirection is a discrete camera movement axis in the camera's local frame.
type MoveDirection uint8

const (
	MoveForward MoveDirection = iota
	MoveBackward
	MoveLeft
	MoveRight
	MoveUp
	MoveDown
)

// pitch is clamped short of straight up/down to avoid gimbal flip.
var pitchLimit = math.DegToRad(89.0)

// Camera holds a free-fly pose (position plus yaw/pitch, roll never
// accumulates) and projection parameters. The view matrix is rebuilt lazily
// when the pose is dirty; the projection matrix is a pure function of the
// aspect ratio handed in each frame.
type Camera struct {
	position math.Vec3
	yaw      float32
	pitch    float32

	fov  float32
	near float32
	far  float32

	viewDirty  bool
	viewMatrix math.Mat4
}

// NewCamera creates a camera at (0, 0, 5) looking at the origin.
func NewCamera(fov, near, far float32) *Camera {
	return &Camera{
		position:  math.NewVec3(0, 0, 5),
		yaw:       0,
		pitch:     0,
		fov:       fov,
		near:      near,
		far:       far,
		viewDirty: true,
	}
}

// Forward returns the camera's normalized look direction. Yaw 0 / pitch 0
// looks down -Z.
func (c *Camera) Forward() math.Vec3 {
	cp := math.Cos(c.pitch)
	return math.NewVec3(
		cp*math.Sin(c.yaw),
		math.Sin(c.pitch),
		-cp*math.Cos(c.yaw),
	)
}

// Right returns the camera's local +X axis projected on the world.
func (c *Camera) Right() math.Vec3 {
	return c.Forward().Cross(math.NewVec3Up()).Normalize()
}

// Up returns the camera's local +Y axis.
func (c *Camera) Up() math.Vec3 {
	return c.Right().Cross(c.Forward())
}

// ApplyMove translates along the camera's local axes. Magnitude is in world
// units; negative magnitudes are allowed and simply move the opposite way.
func (c *Camera) ApplyMove(direction MoveDirection, magnitude float32) {
	var axis math.Vec3
	switch direction {
	case MoveForward:
		axis = c.Forward()
	case MoveBackward:
		axis = c.Forward().MulScalar(-1)
	case MoveLeft:
		axis = c.Right().MulScalar(-1)
	case MoveRight:
		axis = c.Right()
	case MoveUp:
		axis = c.Up()
	case MoveDown:
		axis = c.Up().MulScalar(-1)
	}
	c.position = c.position.Add(axis.MulScalar(magnitude))
	c.viewDirty = true
}

// ApplyLook adjusts yaw and pitch. Pitch is clamped to avoid gimbal flip;
// yaw wraps so it never grows without bound. Out-of-range deltas are
// clamped, never rejected.
func (c *Camera) ApplyLook(deltaYaw, deltaPitch float32) {
	c.yaw = math.WrapAngle(c.yaw + deltaYaw)
	c.pitch = math.Clamp(c.pitch+deltaPitch, -pitchLimit, pitchLimit)
	c.viewDirty = true
}

// ViewMatrix returns the world-to-view transform, rebuilding it only when
// the pose changed.
func (c *Camera) ViewMatrix() math.Mat4 {
	if c.viewDirty {
		c.viewMatrix = math.NewMat4LookAt(c.position, c.position.Add(c.Forward()), math.NewVec3Up())
		c.viewDirty = false
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the perspective projection for the given aspect
// ratio. Non-positive aspects are clamped to a sane minimum rather than
// rejected, so a minimized window cannot poison the matrix.
func (c *Camera) ProjectionMatrix(aspect float32) math.Mat4 {
	if aspect < math.K_FLOAT_EPSILON {
		aspect = math.K_FLOAT_EPSILON
	}
	return math.NewMat4Perspective(c.fov, aspect, c.near, c.far)
}

func (c *Camera) Position() math.Vec3 {
	return c.position
}

func (c *Camera) SetPosition(position math.Vec3) {
	c.position = position
	c.viewDirty = true
}

func (c *Camera) Yaw() float32 {
	return c.yaw
}

func (c *Camera) Pitch() float32 {
	return c.pitch
}

func (c *Camera) FieldOfView() float32 {
	return c.fov
}

// SetFieldOfView is part of the UI surface; values are clamped to (0, pi).
func (c *Camera) SetFieldOfView(fov float32) {
	c.fov = math.Clamp(fov, math.K_FLOAT_EPSILON, math.K_PI-math.K_FLOAT_EPSILON)
}

func (c *Camera) Planes() (near, far float32) {
	return c.near, c.far
}

// InputDelta is one buffered camera input event. Deltas are queued by the
// platform layer and drained atomically once per frame boundary.
type InputDelta struct {
	// Move carries a translation when true, a look otherwise.
	Move       bool
	Direction  MoveDirection
	Magnitude  float32
	DeltaYaw   float32
	DeltaPitch float32
}

// Apply feeds the delta into the camera.
func (d InputDelta) Apply(c *Camera) {
	if d.Move {
		c.ApplyMove(d.Direction, d.Magnitude)
	} else {
		c.ApplyLook(d.DeltaYaw, d.DeltaPitch)
	}
}
