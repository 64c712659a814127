package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

// Mat4 is a 4x4 matrix stored column-major, matching the layout GLSL expects
// for a std140 mat4. Data[col*4+row].
type Mat4 struct {
	Data [16]float32
}

// Vertex3D is a single mesh vertex. Attribute order matches the shader
// contract: position at location 0, normal at 1, texcoord at 2.
type Vertex3D struct {
	Position Vec3
	Normal   Vec3
	Texcoord Vec2
}

// Vertex2D is a flat overlay vertex: position at location 0 only.
type Vertex2D struct {
	Position Vec2
}
