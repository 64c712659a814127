package engine

import (
	"github.com/glint3d/glint/engine/config"
	"github.com/glint3d/glint/engine/core"
)

type ApplicationConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX uint32
	// Window starting position y axis, if applicable.
	StartPosY uint32
	// Window starting width, if applicable.
	StartWidth uint32
	// Window starting height, if applicable.
	StartHeight uint32
	// The application name used in windowing, if applicable.
	Name     string
	LogLevel core.LogLevel
	// FramesInFlight is how many frames the CPU may record ahead of the GPU.
	FramesInFlight int
	// AssetRoot is the directory indexed and watched by the asset manager.
	AssetRoot string
	// AssetWatch enables hot reload of changed assets.
	AssetWatch bool
}

// NewApplicationConfig maps the loaded configuration onto the window and
// asset settings the engine boots with.
func NewApplicationConfig(cfg *config.Config) *ApplicationConfig {
	return &ApplicationConfig{
		StartPosX:      cfg.Window.X,
		StartPosY:      cfg.Window.Y,
		StartWidth:     cfg.Window.Width,
		StartHeight:    cfg.Window.Height,
		Name:           cfg.Window.Title,
		LogLevel:       cfg.LogLevel(),
		FramesInFlight: int(cfg.Renderer.FramesInFlight),
		AssetRoot:      cfg.Assets.Root,
		AssetWatch:     cfg.Assets.Watch,
	}
}
