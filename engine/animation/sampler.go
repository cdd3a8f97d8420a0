package animation

import (
	"github.com/spaghettifunk/posecreator/engine/math"
	"github.com/spaghettifunk/posecreator/engine/skeleton"
)

// PoseTarget receives sampled poses.
type PoseTarget interface {
	ApplyPose(pose skeleton.Pose, mode skeleton.ApplyMode) error
}

// Sampler plays a timeline back onto a skeleton.
type Sampler struct {
	timeline *Timeline
	target   PoseTarget
	// Playback writes rotations only unless set to ApplyFull.
	Mode skeleton.ApplyMode
}

func NewSampler(timeline *Timeline, target PoseTarget) *Sampler {
	return &Sampler{
		timeline: timeline,
		target:   target,
		Mode:     skeleton.ApplyRotation,
	}
}

// PoseAtTime resolves the pose of the timeline at time without applying it.
// Outside the keyframe range the nearest keyframe is held.
func (s *Sampler) PoseAtTime(time float32) (skeleton.Pose, error) {
	previous, next, found, err := s.timeline.FindSurroundingKeyframes(time)
	if err != nil {
		return nil, err
	}
	if !found {
		return previous.Pose.Clone(), nil
	}
	alpha := math.Clamp((time-previous.Time)/(next.Time-previous.Time), 0.0, 1.0)
	return Interpolate(alpha, previous.Pose, next.Pose)
}

// SampleAtTime writes the pose at time into the target. On error the target
// is left untouched.
func (s *Sampler) SampleAtTime(time float32) (skeleton.Pose, error) {
	pose, err := s.PoseAtTime(time)
	if err != nil {
		return nil, err
	}
	if err := s.target.ApplyPose(pose, s.Mode); err != nil {
		return nil, err
	}
	return pose, nil
}
