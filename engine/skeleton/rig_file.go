package skeleton

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/posecreator/engine/core"
	"github.com/spaghettifunk/posecreator/engine/math"
)

// rigFile is the on-disk layout of a rig definition:
//
//	[[bone]]
//	name = "pelvis"
//	parent = "root"
//	position = [0.0, 0.0, 95.0]
//	rotation = [0.0, 0.0, 0.0, 1.0] # x, y, z, w; optional
//	scale = [1.0, 1.0, 1.0]         # optional
type rigFile struct {
	Bones []rigFileBone `toml:"bone"`
}

type rigFileBone struct {
	Name     string     `toml:"name"`
	Parent   string     `toml:"parent"`
	Position [3]float32 `toml:"position"`
	Rotation [4]float32 `toml:"rotation"`
	Scale    [3]float32 `toml:"scale"`
}

// LoadRig builds a rig from a TOML definition file.
func LoadRig(path string) (*Rig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f rigFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse rig file '%s': %w", path, err)
	}

	defs := make([]BoneDefinition, len(f.Bones))
	for i, b := range f.Bones {
		if b.Name == "" {
			return nil, fmt.Errorf("%w: bone #%d in '%s' has no name", core.ErrInvalidHierarchy, i, path)
		}
		defs[i] = BoneDefinition{
			Name:     b.Name,
			Parent:   b.Parent,
			Position: math.NewVec3(b.Position[0], b.Position[1], b.Position[2]),
			Rotation: math.Quaternion{X: b.Rotation[0], Y: b.Rotation[1], Z: b.Rotation[2], W: b.Rotation[3]},
			Scale:    math.NewVec3(b.Scale[0], b.Scale[1], b.Scale[2]),
		}
	}

	r, err := NewRig(defs)
	if err != nil {
		return nil, err
	}
	core.LogInfo("Loaded rig '%s' with %d bones.", path, len(defs))
	return r, nil
}
