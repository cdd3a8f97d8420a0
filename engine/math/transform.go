package math

func TransformFromPosition(position Vec3) *Transform {
	t := &Transform{}
	t.SetPositionRotationScale(position, NewQuatIdentity(), NewVec3One())
	return t
}

func TransformFromPositionRotation(position Vec3, rotation Quaternion) *Transform {
	t := &Transform{}
	t.SetPositionRotationScale(position, rotation, NewVec3One())
	return t
}

func TransformFromPositionRotationScale(position Vec3, rotation Quaternion, scale Vec3) *Transform {
	t := &Transform{}
	t.SetPositionRotationScale(position, rotation, scale)
	return t
}

func (t *Transform) SetPosition(position Vec3) {
	t.Position = position
}

func (t *Transform) SetRotation(rotation Quaternion) {
	t.Rotation = rotation
}

func (t *Transform) Rotate(rotation Quaternion) {
	t.Rotation = t.Rotation.Mul(rotation)
}

func (t *Transform) SetPositionRotationScale(position Vec3, rotation Quaternion, scale Vec3) {
	t.Position = position
	t.Rotation = rotation
	t.Scale = scale
}

// WorldRotation resolves the rotation through the parent chain.
func (t *Transform) WorldRotation() Quaternion {
	if t == nil {
		return NewQuatIdentity()
	}
	if t.Parent != nil {
		return t.Parent.WorldRotation().Mul(t.Rotation)
	}
	return t.Rotation
}

// WorldPosition resolves the position through the parent chain.
func (t *Transform) WorldPosition() Vec3 {
	if t == nil {
		return NewVec3Zero()
	}
	if t.Parent != nil {
		p := t.Parent
		return p.WorldPosition().Add(p.WorldRotation().RotateVec3(t.Position))
	}
	return t.Position
}

// SetWorldRotation stores the local rotation that produces the given world
// rotation under the current parent.
func (t *Transform) SetWorldRotation(rotation Quaternion) {
	if t.Parent != nil {
		rotation = t.Parent.WorldRotation().Inverse().Mul(rotation)
	}
	t.Rotation = rotation.Normalize()
}

// SetWorldPosition stores the local position that produces the given world
// position under the current parent.
func (t *Transform) SetWorldPosition(position Vec3) {
	if t.Parent != nil {
		p := t.Parent
		position = p.WorldRotation().Inverse().RotateVec3(position.Sub(p.WorldPosition()))
	}
	t.Position = position
}
