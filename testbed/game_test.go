package testbed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spaghettifunk/posecreator/engine"
	"github.com/spaghettifunk/posecreator/engine/resources"
)

func TestScriptedSessionSavesAnimations(t *testing.T) {
	config := engine.DefaultApplicationConfig()
	config.TargetFrameRate = 0
	config.AssetDirectory = t.TempDir()

	tg := NewTestGame(config)
	e, err := engine.New(tg.Game)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatalf("failed to initialize engine: %v", err)
	}
	t.Cleanup(func() { _ = e.Shutdown() })

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	saved := tg.SavedAnimations()
	if len(saved) != 2 {
		t.Fatalf("Expected the pose and the animation saved, got %v", saved)
	}
	for _, path := range saved {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Saved animation missing: %v", err)
		}
	}

	res, err := tg.AssetManager.LoadAsset(strings.TrimSuffix(filepath.Base(saved[1]), resources.ResourceTypeAnimation.Extension()), resources.ResourceTypeAnimation, nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	data := res.Data.(*resources.AnimationResourceData)
	if data.FrameCount != 3 {
		t.Errorf("Expected 3 captured frames, got %d", data.FrameCount)
	}
	if data.Times[len(data.Times)-1] != 2 {
		t.Errorf("Expected the last frame at 2s, got %v", data.Times)
	}
	if !tg.state().session.Timeline().IsEmpty() {
		t.Errorf("Expected the timeline cleared after saving")
	}
}

func TestRigAssetIsLoadedFromConfig(t *testing.T) {
	dir := t.TempDir()
	rig := `
[[bone]]
name = "root"

[[bone]]
name = "lowerarm_r"
parent = "root"
position = [0.0, -40.0, 120.0]

[[bone]]
name = "hand_r"
parent = "lowerarm_r"
position = [0.0, -26.0, 0.0]
`
	if err := os.WriteFile(filepath.Join(dir, "arm.rig.toml"), []byte(rig), 0644); err != nil {
		t.Fatalf("failed to write rig: %v", err)
	}

	config := engine.DefaultApplicationConfig()
	config.TargetFrameRate = 0
	config.AssetDirectory = dir
	config.Skeleton.Rig = "arm"

	tg := NewTestGame(config)
	e, err := engine.New(tg.Game)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatalf("failed to initialize engine: %v", err)
	}
	t.Cleanup(func() { _ = e.Shutdown() })

	if n := tg.state().session.Store().BoneCount(); n != 3 {
		t.Errorf("Expected the 3 bone rig, got %d bones", n)
	}
}
