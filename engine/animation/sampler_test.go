package animation

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/posecreator/engine/core"
	"github.com/spaghettifunk/posecreator/engine/math"
	"github.com/spaghettifunk/posecreator/engine/skeleton"
)

const epsilon = 1e-4

func newArmStore(t *testing.T) *skeleton.Store {
	t.Helper()
	rig, err := skeleton.NewRig([]skeleton.BoneDefinition{
		{Name: "root"},
		{Name: "upperarm", Parent: "root", Position: math.NewVec3(1, 0, 0)},
		{Name: "forearm", Parent: "upperarm", Position: math.NewVec3(1, 0, 0)},
	})
	if err != nil {
		t.Fatalf("rig creation failed: %v", err)
	}
	store, err := skeleton.NewStore(rig)
	if err != nil {
		t.Fatalf("store creation failed: %v", err)
	}
	return store
}

func capture(t *testing.T, store *skeleton.Store, tl *Timeline, time float32) skeleton.Pose {
	t.Helper()
	pose, err := store.Snapshot()
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if err := tl.Insert(Keyframe{Pose: pose, Time: time}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	return pose
}

func TestSampleHalfwayBetweenBindAndBentForearm(t *testing.T) {
	store := newArmStore(t)
	tl := NewTimeline()

	bind := capture(t, store, tl, 0)
	bent := math.NewQuatFromAxisAngle(math.NewVec3(1, 0, 0), math.K_HALF_PI, true)
	if err := store.SetRotation("forearm", bent); err != nil {
		t.Fatalf("set rotation failed: %v", err)
	}
	capture(t, store, tl, 1)
	if err := store.ApplyPose(bind, skeleton.ApplyFull); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	sampler := NewSampler(tl, store)
	if _, err := sampler.SampleAtTime(0.5); err != nil {
		t.Fatalf("sample failed: %v", err)
	}

	halfway := math.NewQuatFromAxisAngle(math.NewVec3(1, 0, 0), math.K_QUARTER_PI, true)
	forearm, _ := store.Get("forearm")
	if angle := forearm.Rotation.AngleTo(halfway); angle > epsilon {
		t.Errorf("Expected forearm at 45 degrees about X, off by %f rad", angle)
	}
	for _, name := range []string{"root", "upperarm"} {
		b, _ := store.Get(name)
		before, _ := bind.Find(name)
		if angle := b.Rotation.AngleTo(before.Rotation); angle > epsilon {
			t.Errorf("%s turned by %f rad", name, angle)
		}
		if !b.Position.Compare(before.Position, epsilon) {
			t.Errorf("%s moved to %v", name, b.Position)
		}
	}
}

func TestSampleHoldsOutsideKeyframes(t *testing.T) {
	store := newArmStore(t)
	tl := NewTimeline()
	first := capture(t, store, tl, 1)
	_ = store.SetRotation("upperarm", math.NewQuatFromAxisAngle(math.NewVec3(0, 0, 1), 1, true))
	last := capture(t, store, tl, 2)

	sampler := NewSampler(tl, store)
	before, err := sampler.SampleAtTime(0)
	if err != nil {
		t.Fatalf("sample failed: %v", err)
	}
	if !posesEqual(before, first) {
		t.Errorf("Expected the first keyframe held before the timeline starts")
	}
	after, _ := sampler.SampleAtTime(5)
	if !posesEqual(after, last) {
		t.Errorf("Expected the last keyframe held after the timeline ends")
	}
}

func TestPlaybackIsRotationOnlyByDefault(t *testing.T) {
	store := newArmStore(t)
	tl := NewTimeline()
	capture(t, store, tl, 0)
	_ = store.SetPosition("root", math.NewVec3(0, 0, 10))
	capture(t, store, tl, 1)
	_ = store.SetPosition("root", math.NewVec3(0, 0, 3))

	sampler := NewSampler(tl, store)
	_, _ = sampler.SampleAtTime(0)
	if root, _ := store.Get("root"); !root.Position.Compare(math.NewVec3(0, 0, 3), epsilon) {
		t.Errorf("Rotation only playback moved the root to %v", root.Position)
	}

	sampler.Mode = skeleton.ApplyFull
	_, _ = sampler.SampleAtTime(0.5)
	if root, _ := store.Get("root"); !root.Position.Compare(math.NewVec3(0, 0, 5), epsilon) {
		t.Errorf("Expected full playback to place the root at z=5, got %v", root.Position)
	}
}

func TestSampleEmptyTimeline(t *testing.T) {
	store := newArmStore(t)
	if _, err := NewSampler(NewTimeline(), store).SampleAtTime(0); !errors.Is(err, core.ErrEmptyTimeline) {
		t.Errorf("Expected ErrEmptyTimeline, got %v", err)
	}
}
