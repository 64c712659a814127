package engine

import (
	"github.com/glint3d/glint/engine/scene"
)

// Game is the application half of the engine. The engine drives the window,
// the asset manager and the renderer; the game fills in the hooks and builds
// the frame packet the renderer consumes.
type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnRender          Render
	FnOnResize        OnResize
	FnShutdown        Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error

// Render snapshots the scene into a packet for the frame about to be drawn.
type Render func(deltaTime float64) (*scene.FramePacket, error)
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
