package animation

import (
	"errors"
	m "math"
	"testing"

	"github.com/spaghettifunk/posecreator/engine/core"
	"github.com/spaghettifunk/posecreator/engine/math"
	"github.com/spaghettifunk/posecreator/engine/skeleton"
)

func singleBonePose(x float32) skeleton.Pose {
	return skeleton.Pose{{
		Name:     "root",
		Position: math.NewVec3(x, 0, 0),
		Rotation: math.NewQuatIdentity(),
	}}
}

func TestTimelineKeepsKeyframesSorted(t *testing.T) {
	tl := NewTimeline()
	for _, time := range []float32{2, 0, 1.5, 3, 0.5} {
		if err := tl.Insert(Keyframe{Pose: singleBonePose(time), Time: time}); err != nil {
			t.Fatalf("insert at %f failed: %v", time, err)
		}
	}
	keyframes := tl.Keyframes()
	if len(keyframes) != 5 {
		t.Fatalf("Expected 5 keyframes, got %d", len(keyframes))
	}
	for i := 1; i < len(keyframes); i++ {
		if keyframes[i-1].Time >= keyframes[i].Time {
			t.Errorf("Keyframes out of order at %d: %f then %f", i, keyframes[i-1].Time, keyframes[i].Time)
		}
	}
	if tl.Duration() != 3 {
		t.Errorf("Expected duration 3, got %f", tl.Duration())
	}
}

func TestTimelineOverwritesAtSameTime(t *testing.T) {
	tl := NewTimeline()
	_ = tl.Insert(Keyframe{Pose: singleBonePose(0), Time: 0})
	_ = tl.Insert(Keyframe{Pose: singleBonePose(1), Time: 1})

	err := tl.Insert(Keyframe{Pose: singleBonePose(7), Time: 1})
	if !errors.Is(err, core.ErrDuplicateKeyframeTime) {
		t.Errorf("Expected ErrDuplicateKeyframeTime, got %v", err)
	}
	if tl.Len() != 2 {
		t.Errorf("Overwrite changed the keyframe count to %d", tl.Len())
	}
	if x := tl.Keyframes()[1].Pose[0].Position.X; x != 7 {
		t.Errorf("Expected the new pose to win, got x=%f", x)
	}
}

func TestTimelineRejectsInvalidTimes(t *testing.T) {
	tl := NewTimeline()
	for _, time := range []float32{-1, float32(m.NaN()), float32(m.Inf(1))} {
		if err := tl.Insert(Keyframe{Pose: singleBonePose(0), Time: time}); !errors.Is(err, core.ErrInvalidKeyframeTime) {
			t.Errorf("Expected ErrInvalidKeyframeTime for %f, got %v", time, err)
		}
	}
	if !tl.IsEmpty() {
		t.Errorf("Rejected keyframes were stored")
	}
}

func TestTimelineStoresACopyOfThePose(t *testing.T) {
	tl := NewTimeline()
	pose := singleBonePose(1)
	_ = tl.Insert(Keyframe{Pose: pose, Time: 0})
	pose[0].Position.X = 9
	if x := tl.Keyframes()[0].Pose[0].Position.X; x != 1 {
		t.Errorf("Stored pose changed with the caller's slice, x=%f", x)
	}
}

func TestFindSurroundingKeyframes(t *testing.T) {
	tl := NewTimeline()
	for _, time := range []float32{1, 2, 4} {
		_ = tl.Insert(Keyframe{Pose: singleBonePose(time), Time: time})
	}

	cases := []struct {
		name     string
		time     float32
		previous float32
		next     float32
		found    bool
	}{
		{"before first", 0.5, 1, 1, false},
		{"on first", 1, 1, 2, true},
		{"between", 3, 2, 4, true},
		{"on middle", 2, 2, 4, true},
		{"on last", 4, 4, 4, false},
		{"after last", 10, 4, 4, false},
	}
	for _, c := range cases {
		previous, next, found, err := tl.FindSurroundingKeyframes(c.time)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", c.name, err)
		}
		if previous.Time != c.previous || next.Time != c.next || found != c.found {
			t.Errorf("%s: expected (%f, %f, %v), got (%f, %f, %v)", c.name, c.previous, c.next, c.found, previous.Time, next.Time, found)
		}
	}
}

func TestFindSurroundingKeyframesOnEmptyTimeline(t *testing.T) {
	_, _, found, err := NewTimeline().FindSurroundingKeyframes(0)
	if !errors.Is(err, core.ErrEmptyTimeline) || found {
		t.Errorf("Expected ErrEmptyTimeline, got found=%v err=%v", found, err)
	}
}

func TestTimelineClear(t *testing.T) {
	tl := NewTimeline()
	_ = tl.Insert(Keyframe{Pose: singleBonePose(0), Time: 0})
	tl.Clear()
	if !tl.IsEmpty() || tl.Duration() != 0 {
		t.Errorf("Expected an empty timeline after Clear")
	}
}
