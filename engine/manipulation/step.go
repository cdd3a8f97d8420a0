package manipulation

import (
	"github.com/spaghettifunk/posecreator/engine/core"
	"github.com/spaghettifunk/posecreator/engine/math"
)

// Twist axis of a bone with no offset from its pivot.
var forwardAxis = math.NewVec3(1, 0, 0)

/**
 * @brief Applies the running gestures to the skeleton. Runs once per frame
 * whatever the mode.
 *
 * Both hands gripping turn the root about the vertical axis, the right hand
 * alone drags the whole rig, and the right trigger turns the pivot of the
 * selected bone towards the hand. The trackpad twists the pivot about the
 * axis running through the selected bone.
 * @return The next state. Once the rig translation is written it is carried
 * in the returned state even when a later write fails.
 */
func (s State) Step(skel Skeleton) (State, error) {
	next := s
	root := skel.Root()

	switch s.Mode() {
	case MODE_BOTH_GRIPPING:
		delta := math.NewQuatBetween(s.handVectorBaseline, s.handVector())
		if err := skel.SetRotation(root, delta.Mul(s.rootRotationBaseline)); err != nil {
			return s, err
		}
	case MODE_RIGHT_GRIPPING:
		position := s.hands[core.HAND_RIGHT].controller.WorldPosition()
		displacement := position.Sub(s.translationBaseline)
		if displacement != (math.Vec3{}) {
			bone, err := skel.Get(root)
			if err != nil {
				return s, err
			}
			if err := skel.SetPosition(root, bone.Position.Add(displacement)); err != nil {
				return s, err
			}
		}
		next.translationBaseline = position
	}

	if !s.rotating {
		return next, nil
	}
	right := s.hands[core.HAND_RIGHT]
	if !right.selection.Active() {
		return next, nil
	}
	pivot, err := skel.Get(right.selection.Pivot)
	if err != nil {
		return next, err
	}
	current := right.controller.WorldPosition().Sub(pivot.Position).Normalized()
	rotation := math.NewQuatBetween(s.boneVectorBaseline, current).Mul(s.boneRotationBaseline)
	if s.trackpadRotation != 0 {
		axis := rotation.RotateVec3(s.boneAxis).Normalized()
		rotation = math.NewQuatFromAxisAngle(axis, s.trackpadRotation, true).Mul(rotation)
	}
	if err := skel.SetRotation(right.selection.Pivot, rotation); err != nil {
		return next, err
	}
	return next, nil
}
