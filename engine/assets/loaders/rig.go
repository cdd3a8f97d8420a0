package loaders

import (
	"os"

	"github.com/spaghettifunk/posecreator/engine/resources"
	"github.com/spaghettifunk/posecreator/engine/skeleton"
)

type RigLoader struct{}

// Load parses a TOML rig definition into a *skeleton.Rig.
func (rl *RigLoader) Load(path string, assetType resources.ResourceType, params interface{}) (*resources.Resource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	rig, err := skeleton.LoadRig(path)
	if err != nil {
		return nil, err
	}
	return &resources.Resource{
		Type:     resources.ResourceTypeRig,
		Name:     resourceName(path, resources.ResourceTypeRig),
		FullPath: path,
		DataSize: uint64(info.Size()),
		Data:     rig,
	}, nil
}
