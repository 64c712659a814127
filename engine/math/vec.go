package math

import m "math"

const (
	// K_PI is an approximate representation of PI.
	K_PI float32 = 3.14159265358979323846
	// K_DEG2RAD_MULTIPLIER converts degrees to radians.
	K_DEG2RAD_MULTIPLIER float32 = K_PI / 180.0
	// K_RAD2DEG_MULTIPLIER converts radians to degrees.
	K_RAD2DEG_MULTIPLIER float32 = 180.0 / K_PI
	// K_FLOAT_EPSILON is the smallest positive number where 1.0 + FLOAT_EPSILON != 1.0.
	K_FLOAT_EPSILON float32 = 1.192092896e-07
)

func Sin(x float32) float32  { return float32(m.Sin(float64(x))) }
func Cos(x float32) float32  { return float32(m.Cos(float64(x))) }
func Tan(x float32) float32  { return float32(m.Tan(float64(x))) }
func Sqrt(x float32) float32 { return float32(m.Sqrt(float64(x))) }
func Abs(x float32) float32  { return float32(m.Abs(float64(x))) }

func DegToRad(degrees float32) float32 {
	return degrees * K_DEG2RAD_MULTIPLIER
}

func RadToDeg(radians float32) float32 {
	return radians * K_RAD2DEG_MULTIPLIER
}

// WrapAngle maps an angle in radians into (-pi, pi].
func WrapAngle(radians float32) float32 {
	wrapped := float32(m.Mod(float64(radians), float64(2*K_PI)))
	if wrapped > K_PI {
		wrapped -= 2 * K_PI
	} else if wrapped <= -K_PI {
		wrapped += 2 * K_PI
	}
	return wrapped
}

func NewVec2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

func NewVec3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func NewVec3Zero() Vec3 {
	return Vec3{}
}

func NewVec3Up() Vec3 {
	return Vec3{Y: 1.0}
}

func NewVec4(x, y, z, w float32) Vec4 {
	return Vec4{X: x, Y: y, Z: z, W: w}
}

func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

func (v Vec3) MulScalar(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

func (v Vec3) Length() float32 {
	return Sqrt(v.Dot(v))
}

func (v Vec3) Normalize() Vec3 {
	length := v.Length()
	if length < K_FLOAT_EPSILON {
		return Vec3{}
	}
	return v.MulScalar(1.0 / length)
}

// ToVec4 promotes the vector with the given w component.
func (v Vec3) ToVec4(w float32) Vec4 {
	return Vec4{v.X, v.Y, v.Z, w}
}
