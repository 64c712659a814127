package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "glint.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Window.Width != 1280 || cfg.Renderer.FramesInFlight != 2 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[window]
title = "demo"
width = 800
height = 600

[renderer]
frames_in_flight = 3

[camera]
fov_degrees = 60.0
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Window.Title != "demo" || cfg.Window.Width != 800 {
		t.Errorf("window not overridden: %+v", cfg.Window)
	}
	if cfg.Renderer.FramesInFlight != 3 {
		t.Errorf("frames_in_flight: got %d", cfg.Renderer.FramesInFlight)
	}
	if cfg.Camera.FovDegrees != 60.0 {
		t.Errorf("fov: got %v", cfg.Camera.FovDegrees)
	}
	// Untouched sections keep their defaults.
	if cfg.Camera.NearPlane != 1.0 || cfg.Light.Intensity != 4.0 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"zero window", "[window]\nwidth = 0\n"},
		{"too many frames", "[renderer]\nframes_in_flight = 8\n"},
		{"inverted planes", "[camera]\nnear_plane = 10.0\nfar_plane = 1.0\n"},
		{"not toml", "{\"window\": 1}"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, c.body)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
