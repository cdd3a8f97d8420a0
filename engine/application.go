package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/posecreator/engine/core"
)

type ApplicationConfig struct {
	// The application name, used in logs.
	Name     string        `toml:"name"`
	LogLevel core.LogLevel `toml:"log_level"`
	// Frames per second the loop is capped at. 0 runs unthrottled.
	TargetFrameRate uint32 `toml:"target_frame_rate"`
	// Workers running asset writes off the frame loop.
	JobWorkers int `toml:"job_workers"`
	// Directory animations are saved to and rigs are loaded from.
	AssetDirectory string         `toml:"asset_directory"`
	Skeleton       SkeletonConfig `toml:"skeleton"`
	Playback       PlaybackConfig `toml:"playback"`
}

type SkeletonConfig struct {
	// Name saved animations are bound to.
	Ref string `toml:"ref"`
	// Rig asset name in the asset directory. Empty uses the built-in
	// mannequin.
	Rig string `toml:"rig"`
}

type PlaybackConfig struct {
	// Write bone positions on playback, not only rotations.
	ApplyTranslation bool `toml:"apply_translation"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Name:            "Pose Creator",
		LogLevel:        core.LogLevelInfo,
		TargetFrameRate: 60,
		JobWorkers:      2,
		AssetDirectory:  "assets",
		Skeleton: SkeletonConfig{
			Ref: "mannequin",
		},
	}
}

// LoadApplicationConfig reads a TOML configuration over the defaults. A
// missing file yields the defaults.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	config := DefaultApplicationConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		core.LogInfo("no configuration at '%s', using defaults", path)
		return config, nil
	}
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse configuration '%s': %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *ApplicationConfig) Validate() error {
	switch c.LogLevel {
	case core.LogLevelDebug, core.LogLevelInfo, core.LogLevelWarn, core.LogLevelError:
	default:
		return fmt.Errorf("invalid log level '%s'", c.LogLevel)
	}
	if c.JobWorkers < 1 {
		return fmt.Errorf("job_workers must be at least 1, got %d", c.JobWorkers)
	}
	if c.AssetDirectory == "" {
		return fmt.Errorf("asset directory must not be empty")
	}
	return nil
}
