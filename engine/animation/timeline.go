package animation

import (
	"fmt"
	m "math"
	"sort"

	"github.com/spaghettifunk/posecreator/engine/core"
	"github.com/spaghettifunk/posecreator/engine/skeleton"
)

// Keyframe is a full skeleton pose tagged with its time in seconds.
type Keyframe struct {
	Pose skeleton.Pose
	Time float32
}

// Timeline holds keyframes unique by time, sorted by time.
type Timeline struct {
	keyframes []Keyframe
}

func NewTimeline() *Timeline {
	return &Timeline{
		keyframes: []Keyframe{},
	}
}

func validTime(time float32) bool {
	return !m.IsNaN(float64(time)) && !m.IsInf(float64(time), 0) && time >= 0
}

/**
 * @brief Inserts the keyframe, keeping the timeline sorted. A keyframe
 * already at the same time has its pose replaced: in that case the
 * keyframe is stored and ErrDuplicateKeyframeTime is returned as a warning.
 */
func (t *Timeline) Insert(keyframe Keyframe) error {
	if !validTime(keyframe.Time) {
		return fmt.Errorf("%w: %v", core.ErrInvalidKeyframeTime, keyframe.Time)
	}
	keyframe.Pose = keyframe.Pose.Clone()

	i := sort.Search(len(t.keyframes), func(i int) bool {
		return t.keyframes[i].Time >= keyframe.Time
	})
	if i < len(t.keyframes) && t.keyframes[i].Time == keyframe.Time {
		t.keyframes[i].Pose = keyframe.Pose
		core.LogWarn("keyframe at %.3fs overwritten", keyframe.Time)
		return fmt.Errorf("%w: %.3fs", core.ErrDuplicateKeyframeTime, keyframe.Time)
	}

	t.keyframes = append(t.keyframes, Keyframe{})
	copy(t.keyframes[i+1:], t.keyframes[i:])
	t.keyframes[i] = keyframe
	return nil
}

func (t *Timeline) Len() int {
	return len(t.keyframes)
}

func (t *Timeline) IsEmpty() bool {
	return len(t.keyframes) == 0
}

// Keyframes returns the keyframes in time order. The slice is a copy, the
// poses are shared.
func (t *Timeline) Keyframes() []Keyframe {
	out := make([]Keyframe, len(t.keyframes))
	copy(out, t.keyframes)
	return out
}

// Duration is the time of the last keyframe.
func (t *Timeline) Duration() float32 {
	if len(t.keyframes) == 0 {
		return 0
	}
	return t.keyframes[len(t.keyframes)-1].Time
}

func (t *Timeline) Clear() {
	t.keyframes = t.keyframes[:0]
}

/**
 * @brief Finds the keyframes around time.
 *
 * previous is the last keyframe at or before time, or the first keyframe
 * when time comes before all of them. next is the keyframe right after
 * previous. found is false when there is nothing to blend towards: before
 * the first keyframe (previous and next are then both the first one) or at
 * and after the last keyframe.
 */
func (t *Timeline) FindSurroundingKeyframes(time float32) (previous, next Keyframe, found bool, err error) {
	if len(t.keyframes) == 0 {
		return Keyframe{}, Keyframe{}, false, core.ErrEmptyTimeline
	}
	if m.IsNaN(float64(time)) {
		return Keyframe{}, Keyframe{}, false, fmt.Errorf("%w: %v", core.ErrInvalidKeyframeTime, time)
	}

	// i is the count of keyframes at or before time.
	i := sort.Search(len(t.keyframes), func(i int) bool {
		return t.keyframes[i].Time > time
	})
	if i == 0 {
		first := t.keyframes[0]
		return first, first, false, nil
	}
	previous = t.keyframes[i-1]
	if i == len(t.keyframes) {
		return previous, previous, false, nil
	}
	return previous, t.keyframes[i], true, nil
}
