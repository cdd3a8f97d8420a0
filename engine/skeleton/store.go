package skeleton

import (
	"fmt"

	"github.com/spaghettifunk/posecreator/engine/core"
	"github.com/spaghettifunk/posecreator/engine/math"
)

// Store is the live pose of the skeleton. It validates bone names against the
// hierarchy before reaching the host.
type Store struct {
	host      Host
	hierarchy []BoneHierarchyEntry
	lookup    map[string]int
	// bone indices ordered parents first
	order []int
	root  int
}

func NewStore(host Host) (*Store, error) {
	hierarchy := host.BoneHierarchy()
	root, err := ValidateHierarchy(hierarchy)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	lookup := make(map[string]int, len(hierarchy))
	for i, b := range hierarchy {
		lookup[b.Name] = i
	}

	s := &Store{
		host:      host,
		hierarchy: hierarchy,
		lookup:    lookup,
		root:      root,
	}
	s.order = s.parentsFirst()

	core.LogDebug("skeleton store created with %d bones, root '%s'", len(hierarchy), hierarchy[root].Name)
	return s, nil
}

// ValidateHierarchy checks the entries form a single tree and returns the
// index of its root.
func ValidateHierarchy(hierarchy []BoneHierarchyEntry) (int, error) {
	if len(hierarchy) == 0 {
		return NoParent, fmt.Errorf("%w: no bones", core.ErrInvalidHierarchy)
	}

	root := NoParent
	names := make(map[string]struct{}, len(hierarchy))
	for i, b := range hierarchy {
		if _, ok := names[b.Name]; ok {
			return NoParent, fmt.Errorf("%w: duplicate bone name '%s'", core.ErrInvalidHierarchy, b.Name)
		}
		names[b.Name] = struct{}{}

		if b.ParentIndex == NoParent {
			if root != NoParent {
				return NoParent, fmt.Errorf("%w: more than one root ('%s' and '%s')", core.ErrInvalidHierarchy, hierarchy[root].Name, b.Name)
			}
			root = i
			continue
		}
		if b.ParentIndex < 0 || b.ParentIndex >= len(hierarchy) || b.ParentIndex == i {
			return NoParent, fmt.Errorf("%w: bone '%s' has invalid parent index %d", core.ErrInvalidHierarchy, b.Name, b.ParentIndex)
		}
	}
	if root == NoParent {
		return NoParent, fmt.Errorf("%w: no root bone", core.ErrInvalidHierarchy)
	}

	// Every chain must reach the root within len(hierarchy) steps.
	for i := range hierarchy {
		current := i
		for steps := 0; current != root; steps++ {
			if steps > len(hierarchy) {
				return NoParent, fmt.Errorf("%w: cycle through bone '%s'", core.ErrInvalidHierarchy, hierarchy[i].Name)
			}
			current = hierarchy[current].ParentIndex
		}
	}
	return root, nil
}

func (s *Store) parentsFirst() []int {
	children := make([][]int, len(s.hierarchy))
	for i, b := range s.hierarchy {
		if b.ParentIndex != NoParent {
			children[b.ParentIndex] = append(children[b.ParentIndex], i)
		}
	}
	order := make([]int, 0, len(s.hierarchy))
	queue := []int{s.root}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		order = append(order, i)
		queue = append(queue, children[i]...)
	}
	return order
}

func (s *Store) Index(name string) (int, error) {
	i, ok := s.lookup[name]
	if !ok {
		return NoParent, fmt.Errorf("%w: '%s'", core.ErrUnknownBone, name)
	}
	return i, nil
}

func (s *Store) BoneCount() int {
	return len(s.hierarchy)
}

// Root returns the name of the root bone.
func (s *Store) Root() string {
	return s.hierarchy[s.root].Name
}

// Parent returns the name of the bone's parent. ok is false for the root and
// for unknown bones.
func (s *Store) Parent(name string) (string, bool) {
	i, ok := s.lookup[name]
	if !ok {
		return "", false
	}
	p := s.hierarchy[i].ParentIndex
	if p == NoParent {
		return "", false
	}
	return s.hierarchy[p].Name, true
}

// Hierarchy returns a copy of the bone hierarchy.
func (s *Store) Hierarchy() []BoneHierarchyEntry {
	out := make([]BoneHierarchyEntry, len(s.hierarchy))
	copy(out, s.hierarchy)
	return out
}

func (s *Store) LocalTransforms() []math.Transform {
	return s.host.LocalBoneTransforms()
}

func (s *Store) Get(name string) (BoneTransform, error) {
	if _, err := s.Index(name); err != nil {
		return BoneTransform{}, err
	}
	position, err := s.host.BoneWorldPosition(name)
	if err != nil {
		return BoneTransform{}, err
	}
	rotation, err := s.host.BoneWorldRotation(name)
	if err != nil {
		return BoneTransform{}, err
	}
	return BoneTransform{
		Name:     name,
		Position: position,
		Rotation: rotation,
	}, nil
}

func (s *Store) Set(name string, position math.Vec3, rotation math.Quaternion) error {
	if err := s.SetRotation(name, rotation); err != nil {
		return err
	}
	return s.SetPosition(name, position)
}

func (s *Store) SetPosition(name string, position math.Vec3) error {
	if _, err := s.Index(name); err != nil {
		return err
	}
	return s.host.SetBoneWorldPosition(name, position)
}

func (s *Store) SetRotation(name string, rotation math.Quaternion) error {
	if _, err := s.Index(name); err != nil {
		return err
	}
	return s.host.SetBoneWorldRotation(name, rotation.Normalize())
}

// Snapshot reads every bone, in hierarchy order.
func (s *Store) Snapshot() (Pose, error) {
	pose := make(Pose, len(s.hierarchy))
	for i, b := range s.hierarchy {
		t, err := s.Get(b.Name)
		if err != nil {
			return nil, err
		}
		pose[i] = t
	}
	return pose, nil
}

// ApplyPose writes the pose back, parents before children so world space
// values land where they were captured.
func (s *Store) ApplyPose(pose Pose, mode ApplyMode) error {
	if len(pose) != len(s.hierarchy) {
		return fmt.Errorf("%w: pose has %d bones, skeleton has %d", core.ErrPoseSizeMismatch, len(pose), len(s.hierarchy))
	}
	for i, b := range pose {
		if _, err := s.Index(b.Name); err != nil {
			return err
		}
		if b.Name != s.hierarchy[i].Name {
			return fmt.Errorf("%w: pose bone %d is '%s', skeleton has '%s'", core.ErrPoseSizeMismatch, i, b.Name, s.hierarchy[i].Name)
		}
	}

	for _, i := range s.order {
		b := pose[i]
		var err error
		if mode == ApplyFull {
			err = s.Set(b.Name, b.Position, b.Rotation)
		} else {
			err = s.SetRotation(b.Name, b.Rotation)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
