package skeleton

import "github.com/spaghettifunk/posecreator/engine/math"

// NoParent marks the root entry of a hierarchy.
const NoParent = -1

// BoneHierarchyEntry is one joint of the skeleton tree.
type BoneHierarchyEntry struct {
	Name        string
	ParentIndex int
}

// BoneTransform is the world space placement of a named bone.
type BoneTransform struct {
	Name     string
	Position math.Vec3
	Rotation math.Quaternion
}

// Pose holds one BoneTransform per bone, in hierarchy order.
type Pose []BoneTransform

// Clone returns an independent copy of the pose.
func (p Pose) Clone() Pose {
	if p == nil {
		return nil
	}
	out := make(Pose, len(p))
	copy(out, p)
	return out
}

// Find returns the transform of the named bone.
func (p Pose) Find(name string) (BoneTransform, bool) {
	for _, b := range p {
		if b.Name == name {
			return b, true
		}
	}
	return BoneTransform{}, false
}

// ApplyMode selects which channels ApplyPose writes back.
type ApplyMode uint8

const (
	// ApplyRotation writes rotations only. Playback uses this by default,
	// bone translations are left where they are.
	ApplyRotation ApplyMode = iota
	// ApplyFull writes positions and rotations.
	ApplyFull
)

// Host is the skeletal system the store reads from and writes to. All
// transforms are in world space.
type Host interface {
	BoneWorldPosition(name string) (math.Vec3, error)
	BoneWorldRotation(name string) (math.Quaternion, error)
	SetBoneWorldPosition(name string, position math.Vec3) error
	SetBoneWorldRotation(name string, rotation math.Quaternion) error
	BoneHierarchy() []BoneHierarchyEntry
	// LocalBoneTransforms returns the per-bone local transform table, in
	// hierarchy order. Only the scale is read, for export.
	LocalBoneTransforms() []math.Transform
}
