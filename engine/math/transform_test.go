package math

import "testing"

func TestTransformWorldRoundTrip(t *testing.T) {
	parent := TransformFromPositionRotation(NewVec3(0, 0, 10), NewQuatFromAxisAngle(NewVec3(0, 0, 1), K_HALF_PI, true))
	child := TransformFromPosition(NewVec3(5, 0, 0))
	child.Parent = parent

	if got := child.WorldPosition(); !got.Compare(NewVec3(0, 5, 10), epsilon) {
		t.Errorf("Expected the child at (0,5,10), got %v", got)
	}

	target := NewVec3(-3, 4, 12)
	child.SetWorldPosition(target)
	if got := child.WorldPosition(); !got.Compare(target, epsilon) {
		t.Errorf("Expected the child at %v, got %v", target, got)
	}

	rotation := NewQuatFromAxisAngle(NewVec3(1, 0, 0), 0.7, true)
	child.SetWorldRotation(rotation)
	if got := child.WorldRotation(); got.AngleTo(rotation) > epsilon {
		t.Errorf("Expected world rotation %v, got %v", rotation, got)
	}

	// Turning the parent carries the child.
	parent.Rotate(NewQuatFromAxisAngle(NewVec3(0, 0, 1), K_HALF_PI, true))
	if got := child.WorldPosition(); !got.Compare(NewVec3(-4, -3, 12), epsilon) {
		t.Errorf("Expected the child carried to (-4,-3,12), got %v", got)
	}
}

func TestNilTransformIsOrigin(t *testing.T) {
	var tr *Transform
	if tr.WorldPosition() != NewVec3Zero() || tr.WorldRotation() != NewQuatIdentity() {
		t.Errorf("Expected a nil transform to resolve to the origin")
	}
}
