package posing

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/posecreator/engine/animation"
	"github.com/spaghettifunk/posecreator/engine/core"
	"github.com/spaghettifunk/posecreator/engine/manipulation"
	"github.com/spaghettifunk/posecreator/engine/skeleton"
	"github.com/spaghettifunk/posecreator/engine/systems"
)

type Config struct {
	// SkeletonRef names the skeleton saved animations are bound to.
	SkeletonRef string
	// ApplyTranslation makes playback write bone positions as well as
	// rotations.
	ApplyTranslation bool
	// Jobs runs queued saves off the frame loop. Without it saves are
	// written synchronously.
	Jobs *systems.JobSystem
}

// Session is one pose editing session on a skeleton: it routes controller
// input to the manipulation state, records keyframes and saves animations.
type Session struct {
	config      Config
	store       *skeleton.Store
	state       manipulation.State
	timeline    *animation.Timeline
	sampler     *animation.Sampler
	exporter    *animation.Exporter
	writer      animation.Writer
	initialPose skeleton.Pose
	references  []*manipulation.BoneReference
	listening   bool
}

func NewSession(host skeleton.Host, writer animation.Writer, config Config) (*Session, error) {
	store, err := skeleton.NewStore(host)
	if err != nil {
		return nil, err
	}
	initial, err := store.Snapshot()
	if err != nil {
		return nil, err
	}
	if config.SkeletonRef == "" {
		config.SkeletonRef = store.Root()
	}

	timeline := animation.NewTimeline()
	sampler := animation.NewSampler(timeline, store)
	if config.ApplyTranslation {
		sampler.Mode = skeleton.ApplyFull
	}

	s := &Session{
		config:      config,
		store:       store,
		state:       manipulation.NewState(),
		timeline:    timeline,
		sampler:     sampler,
		exporter:    animation.NewExporter(writer, config.SkeletonRef),
		writer:      writer,
		initialPose: initial,
		references:  make([]*manipulation.BoneReference, len(initial)),
	}
	for i, b := range initial {
		ref := manipulation.NewBoneReference(b.Name)
		ref.Position = b.Position
		s.references[i] = ref
	}
	core.LogInfo("pose session started on '%s' (%d bones)", config.SkeletonRef, store.BoneCount())
	return s, nil
}

func (s *Session) Store() *skeleton.Store {
	return s.store
}

func (s *Session) State() manipulation.State {
	return s.state
}

func (s *Session) Timeline() *animation.Timeline {
	return s.timeline
}

// BoneReferences returns the grabbable markers, one per bone in hierarchy
// order.
func (s *Session) BoneReferences() []*manipulation.BoneReference {
	return s.references
}

func (s *Session) BoneReference(bone string) (*manipulation.BoneReference, bool) {
	for _, ref := range s.references {
		if ref.Bone == bone {
			return ref, true
		}
	}
	return nil, false
}

func (s *Session) GripPressed(hand core.Hand, controller manipulation.Controller) error {
	next, err := s.state.GripPressed(hand, controller, s.store)
	if err != nil {
		core.LogError("grip on %s hand failed: %s", hand, err)
		return err
	}
	s.state = next
	return nil
}

func (s *Session) GripReleased(hand core.Hand) {
	s.state = s.state.GripReleased(hand)
}

func (s *Session) TriggerPressed(hand core.Hand, controller manipulation.Controller) error {
	next, err := s.state.TriggerPressed(hand, controller, s.store)
	if err != nil {
		core.LogError("trigger on %s hand failed: %s", hand, err)
		return err
	}
	s.state = next
	return nil
}

func (s *Session) TriggerReleased(hand core.Hand) {
	s.state = s.state.TriggerReleased(hand)
}

func (s *Session) RotateBoneAroundAxis(radians float32) error {
	next, err := s.state.RotateBoneAroundAxis(radians)
	if err != nil {
		core.LogDebug("trackpad rotation ignored: %s", err)
		return err
	}
	s.state = next
	return nil
}

func (s *Session) OverlapBoneReference(ref *manipulation.BoneReference, controller manipulation.Controller, hand core.Hand) error {
	next, err := s.state.OverlapBoneReference(ref, controller, hand, s.store)
	if err != nil {
		core.LogError("overlap on %s hand failed: %s", hand, err)
		return err
	}
	s.state = next
	return nil
}

func (s *Session) EndOverlapBoneReference(ref *manipulation.BoneReference, controller manipulation.Controller, hand core.Hand) {
	s.state = s.state.EndOverlapBoneReference(ref, controller, hand)
}

// CaptureKeyframe stores the live pose at time. A keyframe already at that
// time is replaced and ErrDuplicateKeyframeTime is returned as a warning.
func (s *Session) CaptureKeyframe(time float32) error {
	pose, err := s.store.Snapshot()
	if err != nil {
		core.LogError("snapshot failed: %s", err)
		return err
	}
	err = s.timeline.Insert(animation.Keyframe{Pose: pose, Time: time})
	switch {
	case err == nil:
		core.LogDebug("keyframe captured at %.3fs (%d total)", time, s.timeline.Len())
	case errors.Is(err, core.ErrDuplicateKeyframeTime):
		// already reported by the timeline
	default:
		core.LogError("keyframe capture failed: %s", err)
	}
	return err
}

// SetPlaybackTime poses the skeleton as recorded at time.
func (s *Session) SetPlaybackTime(time float32) error {
	if _, err := s.sampler.SampleAtTime(time); err != nil {
		core.LogWarn("playback at %.3fs failed: %s", time, err)
		return err
	}
	return s.syncReferences()
}

// SaveAnimation writes the recorded keyframes as an animation asset and
// starts a fresh timeline.
func (s *Session) SaveAnimation() (animation.AssetHandle, error) {
	handle, err := s.exporter.Save(s.timeline, s.store)
	if err != nil {
		core.LogError("animation not saved: %s", err)
		return uuid.Nil, err
	}
	s.timeline.Clear()
	return handle, nil
}

// QueueSaveAnimation flattens the recorded keyframes now and writes them on
// a job worker. The timeline is cleared right away and restored if the write
// fails while it is still empty. done is called from the frame loop once the
// asset is written or failed.
func (s *Session) QueueSaveAnimation(done func(animation.AssetHandle, error)) error {
	if done == nil {
		done = func(animation.AssetHandle, error) {}
	}
	if s.config.Jobs == nil {
		handle, err := s.SaveAnimation()
		done(handle, err)
		return err
	}

	export, err := s.exporter.Export(s.timeline, s.store)
	if err != nil {
		core.LogError("animation not saved: %s", err)
		return err
	}
	writer, ref := s.writer, s.config.SkeletonRef
	recorded := s.timeline.Keyframes()
	err = s.config.Jobs.Submit(systems.JobTask{
		Name: "save animation",
		Run: func() (interface{}, error) {
			return animation.Save(writer, ref, export)
		},
		OnComplete: func(result interface{}) {
			done(result.(animation.AssetHandle), nil)
		},
		OnFailure: func(err error) {
			if s.timeline.IsEmpty() {
				for _, k := range recorded {
					_ = s.timeline.Insert(k)
				}
			}
			done(uuid.Nil, err)
		},
	})
	if err != nil {
		core.LogError("animation not queued: %s", err)
		return err
	}
	s.timeline.Clear()
	return nil
}

// SaveCurrentPose writes the live pose as a single frame animation. The
// timeline is left alone.
func (s *Session) SaveCurrentPose() (animation.AssetHandle, error) {
	pose, err := s.store.Snapshot()
	if err != nil {
		return uuid.Nil, err
	}
	single := animation.NewTimeline()
	if err := single.Insert(animation.Keyframe{Pose: pose, Time: 0}); err != nil {
		return uuid.Nil, err
	}
	handle, err := s.exporter.Save(single, s.store)
	if err != nil {
		core.LogError("pose not saved: %s", err)
		return uuid.Nil, err
	}
	return handle, nil
}

// ResetSkeleton restores the pose the session started with.
func (s *Session) ResetSkeleton() error {
	if err := s.store.ApplyPose(s.initialPose, skeleton.ApplyFull); err != nil {
		return fmt.Errorf("failed to reset skeleton: %w", err)
	}
	return s.syncReferences()
}

/**
 * @brief Advances the session one frame: the running gestures are applied
 * to the skeleton and the bone markers follow their bones.
 */
func (s *Session) Tick(deltaTime float64) error {
	next, err := s.state.Step(s.store)
	s.state = next
	if err != nil {
		core.LogError("manipulation step failed: %s", err)
		return err
	}
	return s.syncReferences()
}

func (s *Session) syncReferences() error {
	for _, ref := range s.references {
		b, err := s.store.Get(ref.Bone)
		if err != nil {
			return err
		}
		ref.Position = b.Position
	}
	return nil
}

// End drops the recorded keyframes and stops listening for input.
func (s *Session) End() {
	s.StopListening()
	s.timeline.Clear()
	core.LogInfo("pose session on '%s' ended", s.config.SkeletonRef)
}
