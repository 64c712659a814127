/*
Demo application driving the engine package: a spinning lit cube, an
orbiting point light with a visible marker and a flat overlay triangle.
*/
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/glint3d/glint/engine"
	"github.com/glint3d/glint/engine/config"
	"github.com/glint3d/glint/engine/core"
	"github.com/glint3d/glint/testbed"
)

const configPath = "glint.toml"

func main() {
	cfg, err := config.Load(configPath)
	if err != nil {
		core.LogFatal("failed to load configuration: %s", err)
	}
	core.LogSetLevel(cfg.LogLevel())

	tb, err := testbed.NewTestGame(cfg)
	if err != nil {
		core.LogFatal("failed to create game: %s", err)
	}

	eng, err := engine.New(tb.Game)
	if err != nil {
		core.LogFatal("failed to create engine: %s", err)
	}

	if err := eng.Initialize(); err != nil {
		core.LogFatal("failed to initialize engine: %s", err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	go func() {
		<-sigCh
		_ = eng.Shutdown()
		os.Exit(0)
	}()

	runErr := eng.Run()

	if err := eng.Shutdown(); err != nil {
		core.LogError("shutdown: %s", err)
	}
	if runErr != nil {
		os.Exit(1)
	}
}
