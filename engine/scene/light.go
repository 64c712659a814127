package scene

import (
	"github.com/glint3d/glint/engine/math"
)

// PointLight is the scene's single light source. Position is recomputed per
// frame from the orbit animation; the marker renderable shares its transform.
type PointLight struct {
	Position  math.Vec3
	Color     math.Vec4
	Intensity float32
}

// OrbitPosition returns the light's animated position at time t (seconds).
// The light wanders on a lissajous-style path around the scene.
func OrbitPosition(t float32) math.Vec3 {
	return math.NewVec3(
		2.0*math.Sin(6.0*t),
		3.0*math.Cos(4.0*t),
		2.0*math.Cos(2.0*t),
	)
}
