/*
Pose authoring demo: drives a scripted two-hand posing session against the
engine and saves the recorded animation to the asset directory.
*/
package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/spaghettifunk/posecreator/engine"
	"github.com/spaghettifunk/posecreator/engine/core"
	"github.com/spaghettifunk/posecreator/testbed"
)

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		core.LogWarn("failed to read .env: %s", err)
	}

	path := os.Getenv("POSE_CONFIG")
	if path == "" {
		path = "posecreator.toml"
	}
	config, err := engine.LoadApplicationConfig(path)
	if err != nil {
		core.LogFatal("failed to load configuration: %s", err)
	}
	if level := os.Getenv("POSE_LOG_LEVEL"); level != "" {
		config.LogLevel = core.LogLevel(level)
	}
	if dir := os.Getenv("POSE_ASSET_DIR"); dir != "" {
		config.AssetDirectory = dir
	}
	if err := config.Validate(); err != nil {
		core.LogFatal("invalid configuration: %s", err)
	}

	tb := testbed.NewTestGame(config)

	engine, err := engine.New(tb.Game)
	if err != nil {
		panic(err)
	}

	if err := engine.Initialize(); err != nil {
		panic(err)
	}

	// capture sigterm and other system calls
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	runErr := engine.Run(ctx)
	if err := engine.Shutdown(); err != nil {
		core.LogError("shutdown failed: %s", err)
	}
	if runErr != nil {
		core.LogFatal("engine stopped: %s", runErr)
	}
	for _, p := range tb.SavedAnimations() {
		core.LogInfo("animation written to %s", p)
	}
}
