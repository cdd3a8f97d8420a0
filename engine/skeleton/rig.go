package skeleton

import (
	"fmt"

	"github.com/spaghettifunk/posecreator/engine/core"
	"github.com/spaghettifunk/posecreator/engine/math"
)

// BoneDefinition describes a bone relative to its parent. Parent is empty for
// the root and must name a bone defined earlier.
type BoneDefinition struct {
	Name     string
	Parent   string
	Position math.Vec3
	Rotation math.Quaternion
	Scale    math.Vec3
}

// Rig is an in-memory skeletal host. Bones are stored as local transforms
// chained to their parent; world space values are resolved on demand, so
// moving or turning a bone carries its descendants along.
type Rig struct {
	hierarchy []BoneHierarchyEntry
	bones     []*math.Transform
	lookup    map[string]int
}

func NewRig(definitions []BoneDefinition) (*Rig, error) {
	r := &Rig{
		hierarchy: make([]BoneHierarchyEntry, 0, len(definitions)),
		bones:     make([]*math.Transform, 0, len(definitions)),
		lookup:    make(map[string]int, len(definitions)),
	}
	for _, d := range definitions {
		if _, ok := r.lookup[d.Name]; ok {
			return nil, fmt.Errorf("%w: duplicate bone name '%s'", core.ErrInvalidHierarchy, d.Name)
		}

		rotation := d.Rotation
		if rotation == (math.Quaternion{}) {
			rotation = math.NewQuatIdentity()
		}
		scale := d.Scale
		if scale == (math.Vec3{}) {
			scale = math.NewVec3One()
		}
		t := math.TransformFromPositionRotationScale(d.Position, rotation.Normalize(), scale)

		parentIndex := NoParent
		if d.Parent != "" {
			p, ok := r.lookup[d.Parent]
			if !ok {
				return nil, fmt.Errorf("%w: parent '%s' of bone '%s' is not defined before it", core.ErrInvalidHierarchy, d.Parent, d.Name)
			}
			parentIndex = p
			t.Parent = r.bones[p]
		}

		r.lookup[d.Name] = len(r.bones)
		r.bones = append(r.bones, t)
		r.hierarchy = append(r.hierarchy, BoneHierarchyEntry{Name: d.Name, ParentIndex: parentIndex})
	}
	if _, err := ValidateHierarchy(r.hierarchy); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Rig) bone(name string) (*math.Transform, error) {
	i, ok := r.lookup[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", core.ErrUnknownBone, name)
	}
	return r.bones[i], nil
}

func (r *Rig) BoneWorldPosition(name string) (math.Vec3, error) {
	b, err := r.bone(name)
	if err != nil {
		return math.Vec3{}, err
	}
	return b.WorldPosition(), nil
}

func (r *Rig) BoneWorldRotation(name string) (math.Quaternion, error) {
	b, err := r.bone(name)
	if err != nil {
		return math.Quaternion{}, err
	}
	return b.WorldRotation(), nil
}

func (r *Rig) SetBoneWorldPosition(name string, position math.Vec3) error {
	b, err := r.bone(name)
	if err != nil {
		return err
	}
	b.SetWorldPosition(position)
	return nil
}

func (r *Rig) SetBoneWorldRotation(name string, rotation math.Quaternion) error {
	b, err := r.bone(name)
	if err != nil {
		return err
	}
	b.SetWorldRotation(rotation)
	return nil
}

func (r *Rig) BoneHierarchy() []BoneHierarchyEntry {
	out := make([]BoneHierarchyEntry, len(r.hierarchy))
	copy(out, r.hierarchy)
	return out
}

func (r *Rig) LocalBoneTransforms() []math.Transform {
	out := make([]math.Transform, len(r.bones))
	for i, b := range r.bones {
		out[i] = *b
		out[i].Parent = nil
	}
	return out
}

// NewMannequinRig builds a small Z-up humanoid in bind pose: every bone
// starts with an identity rotation. Units are centimeters.
func NewMannequinRig() *Rig {
	r, err := NewRig(MannequinDefinition())
	if err != nil {
		// the built-in definition is always valid
		panic(err)
	}
	return r
}

func MannequinDefinition() []BoneDefinition {
	v := math.NewVec3
	return []BoneDefinition{
		{Name: "root"},
		{Name: "pelvis", Parent: "root", Position: v(0, 0, 95)},
		{Name: "spine_01", Parent: "pelvis", Position: v(0, 0, 12)},
		{Name: "spine_02", Parent: "spine_01", Position: v(0, 0, 15)},
		{Name: "neck_01", Parent: "spine_02", Position: v(0, 0, 25)},
		{Name: "head", Parent: "neck_01", Position: v(0, 0, 10)},
		{Name: "upperarm_l", Parent: "spine_02", Position: v(0, 18, 20)},
		{Name: "lowerarm_l", Parent: "upperarm_l", Position: v(0, 28, 0)},
		{Name: "hand_l", Parent: "lowerarm_l", Position: v(0, 26, 0)},
		{Name: "upperarm_r", Parent: "spine_02", Position: v(0, -18, 20)},
		{Name: "lowerarm_r", Parent: "upperarm_r", Position: v(0, -28, 0)},
		{Name: "hand_r", Parent: "lowerarm_r", Position: v(0, -26, 0)},
		{Name: "thigh_l", Parent: "pelvis", Position: v(0, 10, -5)},
		{Name: "calf_l", Parent: "thigh_l", Position: v(0, 0, -42)},
		{Name: "foot_l", Parent: "calf_l", Position: v(0, 0, -40)},
		{Name: "thigh_r", Parent: "pelvis", Position: v(0, -10, -5)},
		{Name: "calf_r", Parent: "thigh_r", Position: v(0, 0, -42)},
		{Name: "foot_r", Parent: "calf_r", Position: v(0, 0, -40)},
	}
}
