package animation

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/spaghettifunk/posecreator/engine/core"
	"github.com/spaghettifunk/posecreator/engine/math"
	"github.com/spaghettifunk/posecreator/engine/skeleton"
)

func randomPose(r *rand.Rand, names []string) skeleton.Pose {
	pose := make(skeleton.Pose, len(names))
	for i, name := range names {
		axis := math.NewVec3(r.Float32()-0.5, r.Float32()-0.5, r.Float32()-0.5).Normalized()
		pose[i] = skeleton.BoneTransform{
			Name:     name,
			Position: math.NewVec3(r.Float32()*10, r.Float32()*10, r.Float32()*10),
			Rotation: math.NewQuatFromAxisAngle(axis, r.Float32()*math.K_PI_2, true),
		}
	}
	return pose
}

func posesEqual(a, b skeleton.Pose) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestInterpolateEndsAreExact(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	names := []string{"root", "spine", "head"}
	for i := 0; i < 50; i++ {
		a := randomPose(r, names)
		b := randomPose(r, names)

		start, err := Interpolate(0, a, b)
		if err != nil {
			t.Fatalf("interpolate failed: %v", err)
		}
		if !posesEqual(start, a) {
			t.Fatalf("Interpolate(0) is not exactly the first pose")
		}
		end, _ := Interpolate(1, a, b)
		if !posesEqual(end, b) {
			t.Fatalf("Interpolate(1) is not exactly the second pose")
		}
	}
}

func TestInterpolateIdenticalPoses(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	a := randomPose(r, []string{"root", "arm"})
	for _, w := range []float32{0, 0.1, 0.25, 0.5, 0.9, 1} {
		out, err := Interpolate(w, a, a.Clone())
		if err != nil {
			t.Fatalf("interpolate failed: %v", err)
		}
		if !posesEqual(out, a) {
			t.Errorf("Interpolate(%f, A, A) drifted from A", w)
		}
	}
}

func TestInterpolateReturnsCopies(t *testing.T) {
	a := singleBonePose(1)
	b := singleBonePose(2)
	out, _ := Interpolate(0, a, b)
	out[0].Position.X = 5
	if a[0].Position.X != 1 {
		t.Errorf("Interpolate returned the input slice")
	}
}

func TestInterpolateBlends(t *testing.T) {
	a := skeleton.Pose{{Name: "root", Position: math.NewVec3(0, 0, 0), Rotation: math.NewQuatIdentity()}}
	b := skeleton.Pose{{
		Name:     "root",
		Position: math.NewVec3(2, 4, 0),
		Rotation: math.NewQuatFromAxisAngle(math.NewVec3(0, 0, 1), math.K_HALF_PI, true),
	}}
	out, err := Interpolate(0.5, a, b)
	if err != nil {
		t.Fatalf("interpolate failed: %v", err)
	}
	if !out[0].Position.Compare(math.NewVec3(1, 2, 0), 1e-5) {
		t.Errorf("Expected position (1,2,0), got %v", out[0].Position)
	}
	expected := math.NewQuatFromAxisAngle(math.NewVec3(0, 0, 1), math.K_QUARTER_PI, true)
	if angle := out[0].Rotation.AngleTo(expected); angle > 1e-4 {
		t.Errorf("Expected 45 degrees about Z, off by %f rad", angle)
	}
}

func TestInterpolateTakesShortestPath(t *testing.T) {
	q := math.NewQuatFromAxisAngle(math.NewVec3(1, 0, 0), math.K_HALF_PI, true)
	negated := math.Quaternion{X: -q.X, Y: -q.Y, Z: -q.Z, W: -q.W}
	a := skeleton.Pose{{Name: "root", Rotation: math.NewQuatIdentity()}}
	b := skeleton.Pose{{Name: "root", Rotation: negated}}

	out, _ := Interpolate(0.5, a, b)
	expected := math.NewQuatFromAxisAngle(math.NewVec3(1, 0, 0), math.K_QUARTER_PI, true)
	if angle := out[0].Rotation.AngleTo(expected); angle > 1e-4 {
		t.Errorf("Blend went the long way, off by %f rad", angle)
	}
}

func TestInterpolateRejectsMismatchedPoses(t *testing.T) {
	a := singleBonePose(0)
	b := append(singleBonePose(1), skeleton.BoneTransform{Name: "arm", Rotation: math.NewQuatIdentity()})
	if _, err := Interpolate(0.5, a, b); !errors.Is(err, core.ErrPoseSizeMismatch) {
		t.Errorf("Expected ErrPoseSizeMismatch, got %v", err)
	}

	renamed := singleBonePose(1)
	renamed[0].Name = "pelvis"
	if _, err := Interpolate(0.5, a, renamed); !errors.Is(err, core.ErrPoseSizeMismatch) {
		t.Errorf("Expected ErrPoseSizeMismatch for different bones, got %v", err)
	}
}
