package manipulation

import (
	"github.com/spaghettifunk/posecreator/engine/math"
	"github.com/spaghettifunk/posecreator/engine/skeleton"
)

// Controller is anything tracked in world space by a motion controller,
// usually the selection sphere attached to it.
type Controller interface {
	WorldPosition() math.Vec3
}

// Skeleton is the part of the pose store the state machine drives.
type Skeleton interface {
	Root() string
	Parent(name string) (string, bool)
	Get(name string) (skeleton.BoneTransform, error)
	SetPosition(name string, position math.Vec3) error
	SetRotation(name string, rotation math.Quaternion) error
}

// SelectionSphere is a Controller whose position is set by the input layer
// every frame.
type SelectionSphere struct {
	Position math.Vec3
}

func NewSelectionSphere(position math.Vec3) *SelectionSphere {
	return &SelectionSphere{Position: position}
}

func (s *SelectionSphere) WorldPosition() math.Vec3 {
	return s.Position
}

func (s *SelectionSphere) MoveTo(position math.Vec3) {
	s.Position = position
}

/** @brief Visual state of a bone reference marker. */
type Highlight uint8

const (
	HIGHLIGHT_NEUTRAL Highlight = iota
	// A selection sphere touches the marker.
	HIGHLIGHT_OVERLAPPED
	// The marker's bone is being rotated.
	HIGHLIGHT_HELD
)

func (h Highlight) String() string {
	switch h {
	case HIGHLIGHT_NEUTRAL:
		return "neutral"
	case HIGHLIGHT_OVERLAPPED:
		return "overlapped"
	case HIGHLIGHT_HELD:
		return "held"
	default:
		return "unknown"
	}
}

// BoneReference is the grabbable marker placed on a bone.
type BoneReference struct {
	Bone      string
	Position  math.Vec3
	Highlight Highlight
}

func NewBoneReference(bone string) *BoneReference {
	return &BoneReference{Bone: bone}
}

// Mode is the grip state of the two hands.
type Mode uint8

const (
	MODE_IDLE Mode = iota
	MODE_LEFT_GRIPPING
	MODE_RIGHT_GRIPPING
	MODE_BOTH_GRIPPING
)

func (m Mode) String() string {
	switch m {
	case MODE_IDLE:
		return "idle"
	case MODE_LEFT_GRIPPING:
		return "left gripping"
	case MODE_RIGHT_GRIPPING:
		return "right gripping"
	case MODE_BOTH_GRIPPING:
		return "both gripping"
	default:
		return "unknown"
	}
}

// Selection is the bone a hand currently overlaps. Pivot is the bone that
// actually turns when the selection is rotated: the parent, or the bone
// itself for the root.
type Selection struct {
	Reference *BoneReference
	Bone      string
	Pivot     string
}

// Active reports whether the hand has a bone selected.
func (s Selection) Active() bool {
	return s.Reference != nil
}
