package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/glint3d/glint/engine/core"
)

// Config is the engine configuration loaded from glint.toml. Every field has
// a working default so the engine runs with no file present.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Camera   CameraConfig   `toml:"camera"`
	Light    LightConfig    `toml:"light"`
	Assets   AssetsConfig   `toml:"assets"`
}

type WindowConfig struct {
	Title  string `toml:"title"`
	X      uint32 `toml:"x"`
	Y      uint32 `toml:"y"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

type RendererConfig struct {
	// FramesInFlight bounds how many frames the CPU may record ahead of the GPU.
	FramesInFlight uint32 `toml:"frames_in_flight"`
	LogLevel       string `toml:"log_level"`
}

type CameraConfig struct {
	FovDegrees  float32 `toml:"fov_degrees"`
	NearPlane   float32 `toml:"near_plane"`
	FarPlane    float32 `toml:"far_plane"`
	MoveSpeed   float32 `toml:"move_speed"`
	RotateSpeed float32 `toml:"rotate_speed"`
}

type LightConfig struct {
	Color     [4]float32 `toml:"color"`
	Intensity float32    `toml:"intensity"`
}

type AssetsConfig struct {
	Root  string `toml:"root"`
	Watch bool   `toml:"watch"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "Glint",
			X:      100,
			Y:      100,
			Width:  1280,
			Height: 720,
		},
		Renderer: RendererConfig{
			FramesInFlight: 2,
			LogLevel:       "info",
		},
		Camera: CameraConfig{
			FovDegrees:  45.0,
			NearPlane:   1.0,
			FarPlane:    100.0,
			MoveSpeed:   5.0,
			RotateSpeed: 0.001,
		},
		Light: LightConfig{
			Color:     [4]float32{1, 1, 1, 1},
			Intensity: 4.0,
		},
		Assets: AssetsConfig{
			Root:  "assets",
			Watch: true,
		},
	}
}

// Load reads the file at path over the defaults. A missing file is not an
// error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			core.LogDebug("no config at %s, using defaults", path)
			return cfg, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return errors.New("window dimensions must be positive")
	}
	if c.Renderer.FramesInFlight < 1 || c.Renderer.FramesInFlight > 3 {
		return errors.New("frames_in_flight must be between 1 and 3")
	}
	if c.Camera.FovDegrees <= 0 || c.Camera.FovDegrees >= 180 {
		return errors.New("fov_degrees must be in (0, 180)")
	}
	if c.Camera.NearPlane <= 0 || c.Camera.FarPlane <= c.Camera.NearPlane {
		return errors.New("camera planes must satisfy 0 < near < far")
	}
	return nil
}

// LogLevel translates the configured level name. Unknown names fall back to
// info.
func (c *Config) LogLevel() core.LogLevel {
	switch c.Renderer.LogLevel {
	case "debug":
		return core.DebugLevel
	case "warn":
		return core.WarnLevel
	case "error":
		return core.ErrorLevel
	default:
		return core.InfoLevel
	}
}
