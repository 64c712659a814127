package math

import (
	m "math"
	"testing"
)

const tolerance = 1e-4

func approxEq(a, b float32) bool {
	return Abs(a-b) <= tolerance
}

func vec3ApproxEq(a, b Vec3) bool {
	return approxEq(a.X, b.X) && approxEq(a.Y, b.Y) && approxEq(a.Z, b.Z)
}

func TestVec3Operations(t *testing.T) {
	v1 := NewVec3(1, 2, 3)
	v2 := NewVec3(4, 5, 6)

	if got := v1.Add(v2); got != NewVec3(5, 7, 9) {
		t.Errorf("Add: got %v", got)
	}
	if got := v2.Sub(v1); got != NewVec3(3, 3, 3) {
		t.Errorf("Sub: got %v", got)
	}
	if got := v1.Dot(v2); got != 32 {
		t.Errorf("Dot: got %v", got)
	}
	// Right-handed: X cross Y = Z.
	if got := NewVec3(1, 0, 0).Cross(NewVec3(0, 1, 0)); got != NewVec3(0, 0, 1) {
		t.Errorf("Cross: got %v", got)
	}
	if got := NewVec3(3, 0, 4).Length(); !approxEq(got, 5) {
		t.Errorf("Length: got %v", got)
	}
	if got := NewVec3(0, 0, 9).Normalize(); !vec3ApproxEq(got, NewVec3(0, 0, 1)) {
		t.Errorf("Normalize: got %v", got)
	}
}

func TestMat4MulIdentity(t *testing.T) {
	m := NewMat4Translation(NewVec3(1, 2, 3))
	if got := m.Mul(NewMat4Identity()); got != m {
		t.Errorf("Mul identity: got %v", got)
	}
	p := m.TransformPoint(NewVec3(1, 1, 1))
	if !vec3ApproxEq(p, NewVec3(2, 3, 4)) {
		t.Errorf("TransformPoint: got %v", p)
	}
}

func TestMat4InverseRoundTrip(t *testing.T) {
	view := NewMat4LookAt(NewVec3(1, 2, 5), NewVec3(0, 0, 0), NewVec3(0, 1, 0))
	p := NewVec3(0.3, -0.7, 2.1)
	back := view.Inverse().TransformPoint(view.TransformPoint(p))
	if !vec3ApproxEq(back, p) {
		t.Errorf("view inverse round trip: got %v, want %v", back, p)
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	near := float32(1.0)
	far := float32(5.0)
	proj := NewMat4Perspective(K_PI/3.0, 2.0, near, far)

	// A point on the near plane maps to depth 0, on the far plane to depth 1.
	if got := proj.TransformPoint(NewVec3(0, 0, -near)); !approxEq(got.Z, 0) {
		t.Errorf("near plane depth: got %v", got.Z)
	}
	if got := proj.TransformPoint(NewVec3(0, 0, -far)); !approxEq(got.Z, 1) {
		t.Errorf("far plane depth: got %v", got.Z)
	}
}

func TestPerspectiveInverseRoundTrip(t *testing.T) {
	aspects := []float32{0.5, 1.0, 4.0 / 3.0, 16.0 / 9.0, 3.2}
	for _, aspect := range aspects {
		proj := NewMat4Perspective(K_PI/4.0, aspect, 1.0, 100.0)
		inv := proj.Inverse()
		p := NewVec3(0.25, -0.5, -10.0)
		back := inv.TransformPoint(proj.TransformPoint(p))
		if !vec3ApproxEq(back, p) {
			t.Errorf("aspect %v: round trip got %v, want %v", aspect, back, p)
		}
	}
}

func TestLookAtOrigin(t *testing.T) {
	view := NewMat4LookAt(NewVec3(0, 0, 5), NewVec3(0, 0, 0), NewVec3(0, 1, 0))
	// The camera position maps to the view-space origin.
	if got := view.TransformPoint(NewVec3(0, 0, 5)); !vec3ApproxEq(got, NewVec3(0, 0, 0)) {
		t.Errorf("camera position in view space: got %v", got)
	}
	// The target sits on the view-space -Z axis.
	if got := view.TransformPoint(NewVec3(0, 0, 0)); !vec3ApproxEq(got, NewVec3(0, 0, -5)) {
		t.Errorf("target in view space: got %v", got)
	}
}

// angleApproxEq compares headings: pi and -pi are the same angle, and float32
// rounding may land a result on either side of the boundary.
func angleApproxEq(a, b float32) bool {
	d := m.Mod(float64(a-b), 2*m.Pi)
	if d > m.Pi {
		d -= 2 * m.Pi
	} else if d < -m.Pi {
		d += 2 * m.Pi
	}
	return m.Abs(d) <= tolerance
}

func TestWrapAngle(t *testing.T) {
	cases := []struct{ in, want float32 }{
		{0, 0},
		{K_PI / 2, K_PI / 2},
		{2 * K_PI, 0},
		{3 * K_PI, K_PI},
		{-3 * K_PI, K_PI},
		{7.5 * K_PI, -K_PI / 2},
	}
	for _, c := range cases {
		got := WrapAngle(c.in)
		if !angleApproxEq(got, c.want) {
			t.Errorf("WrapAngle(%v): got %v, want %v", c.in, got, c.want)
		}
		if got > K_PI+tolerance || got < -K_PI-tolerance {
			t.Errorf("WrapAngle(%v) = %v, outside [-pi, pi]", c.in, got)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 3); got != 3 {
		t.Errorf("Clamp: got %v", got)
	}
	if got := Clamp(float32(-1.5), float32(-1.0), float32(1.0)); got != -1.0 {
		t.Errorf("Clamp: got %v", got)
	}
}
