package loaders

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spaghettifunk/posecreator/engine/resources"
)

type AnimationLoader struct{}

// Load decodes a YAML animation file into *resources.AnimationResourceData.
func (al *AnimationLoader) Load(path string, assetType resources.ResourceType, params interface{}) (*resources.Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	data := &resources.AnimationResourceData{}
	if err := yaml.NewDecoder(f).Decode(data); err != nil {
		return nil, fmt.Errorf("failed to decode animation '%s': %w", path, err)
	}
	if err := validateAnimation(data); err != nil {
		return nil, fmt.Errorf("invalid animation '%s': %w", path, err)
	}

	name := data.Name
	if name == "" {
		name = resourceName(path, resources.ResourceTypeAnimation)
	}
	return &resources.Resource{
		Type:     resources.ResourceTypeAnimation,
		Name:     name,
		FullPath: path,
		DataSize: uint64(info.Size()),
		Data:     data,
	}, nil
}

func validateAnimation(data *resources.AnimationResourceData) error {
	if data.Version != resources.AnimationFormatVersion {
		return fmt.Errorf("unsupported version %d", data.Version)
	}
	if len(data.Times) != data.FrameCount {
		return fmt.Errorf("%d frame times for %d frames", len(data.Times), data.FrameCount)
	}
	for _, track := range data.Tracks {
		if len(track.Positions) != data.FrameCount || len(track.Rotations) != data.FrameCount {
			return fmt.Errorf("track '%s' does not have %d frames", track.Bone, data.FrameCount)
		}
	}
	return nil
}

// WriteAnimation encodes the animation to path, replacing any existing
// file. The data is written to a temporary file first and renamed so a
// watcher never sees a partial file.
func WriteAnimation(path string, data *resources.AnimationResourceData) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".anim-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	enc := yaml.NewEncoder(tmp)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode animation '%s': %w", data.Name, err)
	}
	if err := enc.Close(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func resourceName(path string, t resources.ResourceType) string {
	return strings.TrimSuffix(filepath.Base(path), t.Extension())
}
