package scene

// FramePacket is everything the renderer needs to draw one frame. It is
// assembled fresh each frame; the renderables slice and the frame state are
// snapshots taken at the frame boundary, never live scene references.
type FramePacket struct {
	DeltaTime   float64
	State       FrameState
	Renderables []*Renderable
}
