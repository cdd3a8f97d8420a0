package animation

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/posecreator/engine/core"
	"github.com/spaghettifunk/posecreator/engine/math"
	"github.com/spaghettifunk/posecreator/engine/skeleton"
)

// AssetHandle identifies an animation asset while it is being written.
type AssetHandle = uuid.UUID

// Writer is the asset service animations are persisted through.
type Writer interface {
	CreateAnimationAsset(skeletonRef string) (AssetHandle, error)
	WriteBoneTrack(handle AssetHandle, boneName string, positions []math.Vec3, rotations []math.Quaternion) error
	FinalizeAsset(handle AssetHandle) error
}

// ScaleWriter is implemented by writers that keep the bone scale.
type ScaleWriter interface {
	WriteBoneScale(handle AssetHandle, boneName string, scale math.Vec3) error
}

// FrameTimeWriter is implemented by writers that keep the keyframe times.
type FrameTimeWriter interface {
	WriteFrameTimes(handle AssetHandle, times []float32) error
}

// Discarder is implemented by writers that can drop an unfinished asset.
type Discarder interface {
	DiscardAsset(handle AssetHandle) error
}

// SkeletonSource is the part of the pose store read by the exporter.
type SkeletonSource interface {
	BoneCount() int
	Hierarchy() []skeleton.BoneHierarchyEntry
	LocalTransforms() []math.Transform
}

// Track holds one sample per keyframe for a single bone.
type Track struct {
	Bone      string
	Positions []math.Vec3
	Rotations []math.Quaternion
	Scale     math.Vec3
}

// Export is a timeline flattened bone by bone.
type Export struct {
	Tracks     []Track
	Times      []float32
	FrameCount int
}

type Exporter struct {
	writer      Writer
	skeletonRef string
}

func NewExporter(writer Writer, skeletonRef string) *Exporter {
	return &Exporter{
		writer:      writer,
		skeletonRef: skeletonRef,
	}
}

/**
 * @brief Flattens the timeline into one track per bone, in hierarchy order,
 * with one sample per keyframe in time order.
 * @return ErrEmptyTimeline without keyframes, ErrBoneCountMismatch when the
 * local transform table does not cover the hierarchy.
 */
func (e *Exporter) Export(timeline *Timeline, source SkeletonSource) (*Export, error) {
	if timeline.IsEmpty() {
		return nil, core.ErrEmptyTimeline
	}
	boneCount := source.BoneCount()
	locals := source.LocalTransforms()
	if len(locals) != boneCount {
		return nil, fmt.Errorf("%w: %d local transforms for %d bones", core.ErrBoneCountMismatch, len(locals), boneCount)
	}

	hierarchy := source.Hierarchy()
	if len(hierarchy) != boneCount {
		return nil, fmt.Errorf("%w: hierarchy has %d entries for %d bones", core.ErrBoneCountMismatch, len(hierarchy), boneCount)
	}

	keyframes := timeline.Keyframes()
	export := &Export{
		Tracks:     make([]Track, boneCount),
		Times:      make([]float32, len(keyframes)),
		FrameCount: len(keyframes),
	}
	for b, entry := range hierarchy {
		export.Tracks[b] = Track{
			Bone:      entry.Name,
			Positions: make([]math.Vec3, len(keyframes)),
			Rotations: make([]math.Quaternion, len(keyframes)),
			Scale:     locals[b].Scale,
		}
	}

	for k, keyframe := range keyframes {
		if len(keyframe.Pose) != boneCount {
			return nil, fmt.Errorf("%w: keyframe at %.3fs has %d bones, skeleton has %d", core.ErrPoseSizeMismatch, keyframe.Time, len(keyframe.Pose), boneCount)
		}
		export.Times[k] = keyframe.Time
		for b := range keyframe.Pose {
			if keyframe.Pose[b].Name != hierarchy[b].Name {
				return nil, fmt.Errorf("%w: keyframe at %.3fs has '%s' where '%s' was expected", core.ErrPoseSizeMismatch, keyframe.Time, keyframe.Pose[b].Name, hierarchy[b].Name)
			}
			export.Tracks[b].Positions[k] = keyframe.Pose[b].Position
			export.Tracks[b].Rotations[k] = keyframe.Pose[b].Rotation
		}
	}
	return export, nil
}

// Save exports the timeline and writes it through the exporter's writer.
func (e *Exporter) Save(timeline *Timeline, source SkeletonSource) (AssetHandle, error) {
	export, err := e.Export(timeline, source)
	if err != nil {
		return uuid.Nil, err
	}
	return Save(e.writer, e.skeletonRef, export)
}

/**
 * @brief Writes an export as a new animation asset: create, one write per
 * bone track, finalize. When a write fails the asset is discarded if the
 * writer supports it and is never finalized.
 */
func Save(writer Writer, skeletonRef string, export *Export) (AssetHandle, error) {
	if export == nil || export.FrameCount == 0 {
		return uuid.Nil, core.ErrEmptyTimeline
	}

	handle, err := writer.CreateAnimationAsset(skeletonRef)
	if err != nil {
		return uuid.Nil, err
	}
	if err := writeTracks(writer, handle, export); err != nil {
		if d, ok := writer.(Discarder); ok {
			if derr := d.DiscardAsset(handle); derr != nil {
				core.LogWarn("could not discard asset %s: %s", handle, derr)
			}
		}
		return uuid.Nil, err
	}
	if err := writer.FinalizeAsset(handle); err != nil {
		return uuid.Nil, err
	}

	core.LogInfo("animation %s saved: %d tracks, %d frames", handle, len(export.Tracks), export.FrameCount)
	return handle, nil
}

func writeTracks(writer Writer, handle AssetHandle, export *Export) error {
	if w, ok := writer.(FrameTimeWriter); ok {
		if err := w.WriteFrameTimes(handle, export.Times); err != nil {
			return err
		}
	}
	scales, keepScale := writer.(ScaleWriter)
	for _, track := range export.Tracks {
		if err := writer.WriteBoneTrack(handle, track.Bone, track.Positions, track.Rotations); err != nil {
			return fmt.Errorf("failed to write track '%s': %w", track.Bone, err)
		}
		if keepScale {
			if err := scales.WriteBoneScale(handle, track.Bone, track.Scale); err != nil {
				return fmt.Errorf("failed to write scale of '%s': %w", track.Bone, err)
			}
		}
	}
	return nil
}
