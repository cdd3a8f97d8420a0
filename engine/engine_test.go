package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/posecreator/engine/core"
)

func TestLoadApplicationConfigDefaultsWhenMissing(t *testing.T) {
	config, err := LoadApplicationConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *config != *DefaultApplicationConfig() {
		t.Errorf("Expected defaults, got %+v", config)
	}
}

func TestLoadApplicationConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posecreator.toml")
	content := `
name = "Studio"
log_level = "debug"
asset_directory = "/tmp/poses"

[skeleton]
rig = "mannequin"

[playback]
apply_translation = true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	config, err := LoadApplicationConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Name != "Studio" || config.LogLevel != core.LogLevelDebug || config.AssetDirectory != "/tmp/poses" {
		t.Errorf("Top level fields not loaded: %+v", config)
	}
	if config.Skeleton.Rig != "mannequin" || config.Skeleton.Ref != "mannequin" {
		t.Errorf("Unexpected skeleton config %+v", config.Skeleton)
	}
	if !config.Playback.ApplyTranslation {
		t.Errorf("Expected apply_translation to be loaded")
	}
	if config.TargetFrameRate != 60 {
		t.Errorf("Expected the default frame rate to be kept, got %d", config.TargetFrameRate)
	}
}

func TestLoadApplicationConfigRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"log level": `log_level = "loud"`,
		"syntax":    `name = `,
		"directory": `asset_directory = ""`,
	}
	for name, content := range cases {
		path := filepath.Join(t.TempDir(), "bad.toml")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := LoadApplicationConfig(path); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

type countingGame struct {
	updates   int
	quitAfter int
	failAt    int
	shutdown  bool
}

func newTestEngine(t *testing.T, cg *countingGame) *Engine {
	t.Helper()
	config := DefaultApplicationConfig()
	config.TargetFrameRate = 0
	config.AssetDirectory = t.TempDir()

	g := &Game{
		ApplicationConfig: config,
		FnUpdate: func(deltaTime float64) error {
			cg.updates++
			if cg.updates == cg.failAt {
				return errors.New("boom")
			}
			if cg.updates == cg.quitAfter {
				core.EventFire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
			}
			return nil
		},
		FnShutdown: func() error {
			cg.shutdown = true
			return nil
		},
	}
	e, err := New(g)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatalf("failed to initialize engine: %v", err)
	}
	if g.AssetManager == nil {
		t.Fatalf("asset manager not handed to the game")
	}
	t.Cleanup(func() { _ = e.Shutdown() })
	return e
}

func TestEngineRunsUntilQuitEvent(t *testing.T) {
	cg := &countingGame{quitAfter: 3}
	e := newTestEngine(t, cg)

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if cg.updates != 3 || e.FrameCount() != 3 {
		t.Errorf("Expected 3 frames, got %d updates and %d frames", cg.updates, e.FrameCount())
	}
	if err := e.Shutdown(); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if !cg.shutdown || e.Stage() != EngineStageShutdown {
		t.Errorf("Game shutdown not called")
	}
}

func TestEngineStopsWhenContextIsCancelled(t *testing.T) {
	cg := &countingGame{}
	e := newTestEngine(t, cg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.Run(ctx); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if cg.updates != 0 {
		t.Errorf("Expected no frames after cancellation, got %d", cg.updates)
	}
}

func TestEngineStopsOnGameError(t *testing.T) {
	cg := &countingGame{failAt: 2}
	e := newTestEngine(t, cg)

	if err := e.Run(context.Background()); err == nil {
		t.Fatalf("Expected the update error to be returned")
	}
	if cg.updates != 2 {
		t.Errorf("Expected the loop to stop at the failing frame, got %d updates", cg.updates)
	}
}

func TestRunRequiresInitialize(t *testing.T) {
	e, err := New(&Game{})
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	if err := e.Run(context.Background()); err == nil {
		t.Errorf("Expected an error running an uninitialized engine")
	}
	_ = e.assetManager.Shutdown()
}
