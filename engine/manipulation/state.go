package manipulation

import (
	"fmt"

	"github.com/spaghettifunk/posecreator/engine/core"
	"github.com/spaghettifunk/posecreator/engine/math"
	"github.com/spaghettifunk/posecreator/engine/skeleton"
)

type handState struct {
	gripping   bool
	triggering bool
	controller Controller
	selection  Selection
}

// State is the manipulation state of both hands. Transitions never modify
// the receiver: they return the next state. The only side effect is on the
// highlight of bone reference markers.
type State struct {
	hands [core.HAND_MAX_HANDS]handState

	// right hand position at the previous step, for whole rig translation
	translationBaseline math.Vec3
	// flattened right minus left hand vector and root rotation at two hand grip start
	handVectorBaseline   math.Vec3
	rootRotationBaseline math.Quaternion

	rotating             bool
	boneVectorBaseline   math.Vec3
	boneRotationBaseline math.Quaternion
	// selected bone direction in the pivot's own space, the twist axis
	boneAxis         math.Vec3
	trackpadRotation float32

	held []*BoneReference
}

func NewState() State {
	return State{
		rootRotationBaseline: math.NewQuatIdentity(),
		boneRotationBaseline: math.NewQuatIdentity(),
	}
}

func (s State) Mode() Mode {
	left := s.hands[core.HAND_LEFT].gripping
	right := s.hands[core.HAND_RIGHT].gripping
	switch {
	case left && right:
		return MODE_BOTH_GRIPPING
	case right:
		return MODE_RIGHT_GRIPPING
	case left:
		return MODE_LEFT_GRIPPING
	default:
		return MODE_IDLE
	}
}

// Rotating reports whether the right trigger is rotating a selected bone.
func (s State) Rotating() bool {
	return s.rotating
}

func (s State) TrackpadRotation() float32 {
	return s.trackpadRotation
}

func (s State) IsGripping(hand core.Hand) bool {
	return validHand(hand) && s.hands[hand].gripping
}

func (s State) IsTriggering(hand core.Hand) bool {
	return validHand(hand) && s.hands[hand].triggering
}

func (s State) Selection(hand core.Hand) Selection {
	if !validHand(hand) {
		return Selection{}
	}
	return s.hands[hand].selection
}

func validHand(hand core.Hand) bool {
	return hand < core.HAND_MAX_HANDS
}

func checkHand(hand core.Hand, controller Controller) error {
	if !validHand(hand) {
		return fmt.Errorf("invalid hand %d", hand)
	}
	if controller == nil {
		return fmt.Errorf("%w: %s", core.ErrNoController, hand)
	}
	return nil
}

// handVector is the right minus left hand vector flattened onto the ground
// plane and normalized.
func (s State) handVector() math.Vec3 {
	left := s.hands[core.HAND_LEFT].controller.WorldPosition()
	right := s.hands[core.HAND_RIGHT].controller.WorldPosition()
	v := right.Sub(left)
	v.Z = 0
	return v.Normalized()
}

// GripPressed starts a grip gesture. Once both hands grip, the hand vector
// and the root rotation become the baseline of the two hand rotation.
func (s State) GripPressed(hand core.Hand, controller Controller, skel Skeleton) (State, error) {
	if err := checkHand(hand, controller); err != nil {
		return s, err
	}
	next := s
	next.hands[hand].gripping = true
	next.hands[hand].controller = controller

	if hand == core.HAND_RIGHT {
		next.translationBaseline = controller.WorldPosition()
	}

	if next.Mode() == MODE_BOTH_GRIPPING {
		root, err := skel.Get(skel.Root())
		if err != nil {
			return s, err
		}
		next.handVectorBaseline = next.handVector()
		next.rootRotationBaseline = root.Rotation
		core.LogDebug("two hand grip started, hand vector %v", next.handVectorBaseline)
	}
	return next, nil
}

// GripReleased ends the grip of one hand. The right hand anchors the rig:
// when the left lets go the right baseline is taken again so the rig does
// not jump on the next step.
func (s State) GripReleased(hand core.Hand) State {
	if !validHand(hand) || !s.hands[hand].gripping {
		return s
	}
	next := s
	next.hands[hand].gripping = false

	if hand == core.HAND_LEFT && next.hands[core.HAND_RIGHT].gripping {
		next.translationBaseline = next.hands[core.HAND_RIGHT].controller.WorldPosition()
	}
	return next
}

// TriggerPressed starts rotating the bone selected by the right hand. The
// left trigger only guards the left selection.
func (s State) TriggerPressed(hand core.Hand, controller Controller, skel Skeleton) (State, error) {
	if err := checkHand(hand, controller); err != nil {
		return s, err
	}
	next := s
	next.hands[hand].triggering = true
	next.hands[hand].controller = controller

	if hand != core.HAND_RIGHT {
		return next, nil
	}
	sel := next.hands[hand].selection
	if !sel.Active() {
		core.LogDebug("right trigger pressed without a selected bone")
		return next, nil
	}

	pivot, err := skel.Get(sel.Pivot)
	if err != nil {
		return s, err
	}
	selected, err := skel.Get(sel.Bone)
	if err != nil {
		return s, err
	}
	next.rotating = true
	next.boneAxis = twistAxis(pivot, selected)
	next.boneVectorBaseline = controller.WorldPosition().Sub(pivot.Position).Normalized()
	next.boneRotationBaseline = pivot.Rotation
	next.trackpadRotation = 0

	sel.Reference.Highlight = HIGHLIGHT_HELD
	held := make([]*BoneReference, 0, len(s.held)+1)
	next.held = append(append(held, s.held...), sel.Reference)

	core.LogDebug("rotating bone '%s' around '%s'", sel.Bone, sel.Pivot)
	return next, nil
}

// twistAxis is the direction from pivot to the selected bone expressed in the
// pivot's own space. A bone pivoting on itself twists about its +X axis.
func twistAxis(pivot, selected skeleton.BoneTransform) math.Vec3 {
	offset := selected.Position.Sub(pivot.Position)
	if offset.Length() < math.K_AXIS_EPSILON {
		return forwardAxis
	}
	return pivot.Rotation.Inverse().RotateVec3(offset).Normalized()
}

func (s State) TriggerReleased(hand core.Hand) State {
	if !validHand(hand) {
		return s
	}
	next := s
	next.hands[hand].triggering = false
	if hand != core.HAND_RIGHT {
		return next
	}

	next.rotating = false
	next.trackpadRotation = 0
	for _, ref := range s.held {
		ref.Highlight = HIGHLIGHT_NEUTRAL
	}
	next.held = nil
	return next
}

// RotateBoneAroundAxis adds radians of twist around the forward axis of the
// bone being rotated. The twist is applied by the next Step.
func (s State) RotateBoneAroundAxis(radians float32) (State, error) {
	if !s.rotating || !s.hands[core.HAND_RIGHT].selection.Active() {
		return s, core.ErrNotRotating
	}
	next := s
	next.trackpadRotation += radians
	return next, nil
}

// OverlapBoneReference selects the bone of ref for the hand. The newest
// overlap wins. Ignored while the hand's trigger is held.
func (s State) OverlapBoneReference(ref *BoneReference, controller Controller, hand core.Hand, skel Skeleton) (State, error) {
	if !validHand(hand) || ref == nil {
		return s, fmt.Errorf("invalid overlap for hand %d", hand)
	}
	if s.hands[hand].triggering {
		return s, nil
	}
	if _, err := skel.Get(ref.Bone); err != nil {
		return s, err
	}

	pivot, ok := skel.Parent(ref.Bone)
	if !ok {
		// The root turns around itself.
		pivot = ref.Bone
	}

	next := s
	previous := s.hands[hand].selection.Reference
	if previous != nil && previous != ref && !next.selectedByOther(hand, previous) {
		previous.Highlight = HIGHLIGHT_NEUTRAL
	}
	ref.Highlight = HIGHLIGHT_OVERLAPPED
	next.hands[hand].selection = Selection{
		Reference: ref,
		Bone:      ref.Bone,
		Pivot:     pivot,
	}
	if controller != nil {
		next.hands[hand].controller = controller
	}
	return next, nil
}

// EndOverlapBoneReference drops the hand's selection when ref is the
// selected marker. Ignored while the hand's trigger is held.
func (s State) EndOverlapBoneReference(ref *BoneReference, controller Controller, hand core.Hand) State {
	if !validHand(hand) || ref == nil || s.hands[hand].triggering {
		return s
	}
	next := s
	if s.hands[hand].selection.Reference == ref {
		next.hands[hand].selection = Selection{}
	}
	if !next.selectedByOther(hand, ref) && next.hands[hand].selection.Reference != ref {
		ref.Highlight = HIGHLIGHT_NEUTRAL
	}
	return next
}

func (s State) selectedByOther(hand core.Hand, ref *BoneReference) bool {
	for h := range s.hands {
		if core.Hand(h) != hand && s.hands[h].selection.Reference == ref {
			return true
		}
	}
	return false
}
