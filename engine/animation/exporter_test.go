package animation

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/spaghettifunk/posecreator/engine/core"
	"github.com/spaghettifunk/posecreator/engine/math"
	"github.com/spaghettifunk/posecreator/engine/skeleton"
)

type recordingWriter struct {
	created   int
	tracks    []string
	scales    map[string]math.Vec3
	times     []float32
	finalized int
	discarded int
	failOn    string
}

func (w *recordingWriter) CreateAnimationAsset(skeletonRef string) (AssetHandle, error) {
	w.created++
	return uuid.New(), nil
}

func (w *recordingWriter) WriteBoneTrack(handle AssetHandle, boneName string, positions []math.Vec3, rotations []math.Quaternion) error {
	if boneName == w.failOn {
		return errors.New("disk full")
	}
	w.tracks = append(w.tracks, boneName)
	return nil
}

func (w *recordingWriter) WriteBoneScale(handle AssetHandle, boneName string, scale math.Vec3) error {
	if w.scales == nil {
		w.scales = map[string]math.Vec3{}
	}
	w.scales[boneName] = scale
	return nil
}

func (w *recordingWriter) WriteFrameTimes(handle AssetHandle, times []float32) error {
	w.times = times
	return nil
}

func (w *recordingWriter) FinalizeAsset(handle AssetHandle) error {
	w.finalized++
	return nil
}

func (w *recordingWriter) DiscardAsset(handle AssetHandle) error {
	w.discarded++
	return nil
}

func (w *recordingWriter) writes() int {
	return w.created + len(w.tracks) + w.finalized
}

type shortTableSource struct {
	*skeleton.Store
}

func (s shortTableSource) LocalTransforms() []math.Transform {
	return s.Store.LocalTransforms()[:1]
}

func TestExportEmptyTimelineWritesNothing(t *testing.T) {
	store := newArmStore(t)
	writer := &recordingWriter{}
	exporter := NewExporter(writer, "mannequin")

	if _, err := exporter.Save(NewTimeline(), store); !errors.Is(err, core.ErrEmptyTimeline) {
		t.Errorf("Expected ErrEmptyTimeline, got %v", err)
	}
	if writer.writes() != 0 {
		t.Errorf("Expected no asset writes, got %d", writer.writes())
	}
}

func TestExportIsBoneMajor(t *testing.T) {
	store := newArmStore(t)
	tl := NewTimeline()
	capture(t, store, tl, 0.5)
	_ = store.SetPosition("root", math.NewVec3(0, 0, 1))
	capture(t, store, tl, 0)
	_ = store.SetPosition("root", math.NewVec3(0, 0, 2))
	capture(t, store, tl, 1)

	export, err := NewExporter(&recordingWriter{}, "mannequin").Export(tl, store)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if export.FrameCount != 3 || len(export.Times) != 3 {
		t.Fatalf("Expected 3 frames, got %d", export.FrameCount)
	}
	if len(export.Tracks) != store.BoneCount() {
		t.Fatalf("Expected one track per bone, got %d", len(export.Tracks))
	}
	for i, name := range []string{"root", "upperarm", "forearm"} {
		if export.Tracks[i].Bone != name {
			t.Errorf("Track %d is '%s', expected '%s'", i, export.Tracks[i].Bone, name)
		}
		if len(export.Tracks[i].Positions) != 3 || len(export.Tracks[i].Rotations) != 3 {
			t.Errorf("Track '%s' does not have one sample per keyframe", name)
		}
		if !export.Tracks[i].Scale.Compare(math.NewVec3One(), 0) {
			t.Errorf("Track '%s' lost its scale: %v", name, export.Tracks[i].Scale)
		}
	}
	// Samples follow keyframe time, not capture order.
	expected := []float32{1, 0, 2}
	for k, z := range expected {
		if got := export.Tracks[0].Positions[k].Z; got != z {
			t.Errorf("Frame %d: expected root z=%f, got %f", k, z, got)
		}
	}
}

func TestExportRejectsShortTransformTable(t *testing.T) {
	store := newArmStore(t)
	tl := NewTimeline()
	capture(t, store, tl, 0)

	writer := &recordingWriter{}
	_, err := NewExporter(writer, "mannequin").Save(tl, shortTableSource{store})
	if !errors.Is(err, core.ErrBoneCountMismatch) {
		t.Errorf("Expected ErrBoneCountMismatch, got %v", err)
	}
	if writer.writes() != 0 {
		t.Errorf("Expected no asset writes, got %d", writer.writes())
	}
}

func TestSaveWritesEveryTrackThenFinalizes(t *testing.T) {
	store := newArmStore(t)
	tl := NewTimeline()
	capture(t, store, tl, 0)
	capture(t, store, tl, 1)

	writer := &recordingWriter{}
	handle, err := NewExporter(writer, "mannequin").Save(tl, store)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if handle == uuid.Nil {
		t.Errorf("Expected a handle")
	}
	if writer.created != 1 || writer.finalized != 1 || len(writer.tracks) != 3 {
		t.Errorf("Unexpected calls: created=%d tracks=%d finalized=%d", writer.created, len(writer.tracks), writer.finalized)
	}
	if len(writer.scales) != 3 || len(writer.times) != 2 {
		t.Errorf("Expected scales and frame times to be written")
	}
}

func TestSaveDiscardsOnFailedTrack(t *testing.T) {
	store := newArmStore(t)
	tl := NewTimeline()
	capture(t, store, tl, 0)

	writer := &recordingWriter{failOn: "upperarm"}
	if _, err := NewExporter(writer, "mannequin").Save(tl, store); err == nil {
		t.Fatalf("Expected the failed write to be reported")
	}
	if writer.finalized != 0 || writer.discarded != 1 {
		t.Errorf("Expected a discarded, unfinalized asset: finalized=%d discarded=%d", writer.finalized, writer.discarded)
	}
}
