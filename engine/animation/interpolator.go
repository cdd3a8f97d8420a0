package animation

import (
	"fmt"

	"github.com/spaghettifunk/posecreator/engine/core"
	"github.com/spaghettifunk/posecreator/engine/math"
	"github.com/spaghettifunk/posecreator/engine/skeleton"
)

// Interpolate blends pose a towards pose b. Positions are blended linearly,
// rotations along the shortest arc. t is clamped to [0, 1]; the ends return
// copies of a and b exactly.
func Interpolate(t float32, a, b skeleton.Pose) (skeleton.Pose, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: %d bones against %d", core.ErrPoseSizeMismatch, len(a), len(b))
	}
	for i := range a {
		if a[i].Name != b[i].Name {
			return nil, fmt.Errorf("%w: bone %d is '%s' and '%s'", core.ErrPoseSizeMismatch, i, a[i].Name, b[i].Name)
		}
	}

	t = math.Clamp(t, 0.0, 1.0)
	if t == 0 {
		return a.Clone(), nil
	}
	if t == 1 {
		return b.Clone(), nil
	}

	out := make(skeleton.Pose, len(a))
	for i := range a {
		out[i] = skeleton.BoneTransform{
			Name:     a[i].Name,
			Position: a[i].Position.Lerp(b[i].Position, t),
			Rotation: a[i].Rotation.Slerp(b[i].Rotation, t),
		}
	}
	return out, nil
}
