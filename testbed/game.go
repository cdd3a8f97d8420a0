package testbed

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/posecreator/engine"
	"github.com/spaghettifunk/posecreator/engine/animation"
	"github.com/spaghettifunk/posecreator/engine/core"
	"github.com/spaghettifunk/posecreator/engine/manipulation"
	"github.com/spaghettifunk/posecreator/engine/math"
	"github.com/spaghettifunk/posecreator/engine/posing"
	"github.com/spaghettifunk/posecreator/engine/resources"
	"github.com/spaghettifunk/posecreator/engine/skeleton"
)

// The demo advances one scripted frame per update, whatever the wall clock.
const scriptFrameSeconds = 1.0 / 60.0

type TestGame struct {
	*engine.Game
}

type gameState struct {
	session *posing.Session
	hands   [core.HAND_MAX_HANDS]*manipulation.SelectionSphere

	scriptTime float64
	cues       []cue
	nextCue    int
	motions    []motion

	saved  []string
	failed error
}

// cue runs once when the script reaches its time and, if set, ready holds.
type cue struct {
	at    float64
	name  string
	do    func(g *TestGame) error
	ready func(g *TestGame) bool
}

// motion moves a hand in a straight line over a time span.
type motion struct {
	hand       core.Hand
	start, end float64
	from, to   math.Vec3
}

func NewTestGame(config *engine.ApplicationConfig) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State:             &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

// SavedAnimations returns the asset paths written by the demo.
func (g *TestGame) SavedAnimations() []string {
	return g.state().saved
}

func (g *TestGame) Initialize() error {
	core.LogInfo("initializing testbed...")
	config := g.ApplicationConfig
	state := g.state()

	host, err := g.loadRig()
	if err != nil {
		return err
	}
	session, err := posing.NewSession(host, g.AssetManager, posing.Config{
		SkeletonRef:      config.Skeleton.Ref,
		ApplyTranslation: config.Playback.ApplyTranslation,
		Jobs:             g.Jobs,
	})
	if err != nil {
		return err
	}
	if !session.ListenForInput() {
		return fmt.Errorf("failed to register the session for input events")
	}
	state.session = session

	lowerarm, err := session.Store().Get("lowerarm_r")
	if err != nil {
		return err
	}
	state.hands[core.HAND_LEFT] = manipulation.NewSelectionSphere(math.NewVec3(30, 30, 100))
	state.hands[core.HAND_RIGHT] = manipulation.NewSelectionSphere(lowerarm.Position)

	g.script(lowerarm.Position)
	return nil
}

func (g *TestGame) loadRig() (skeleton.Host, error) {
	name := g.ApplicationConfig.Skeleton.Rig
	if name == "" {
		return skeleton.NewMannequinRig(), nil
	}
	res, err := g.AssetManager.LoadAsset(name, resources.ResourceTypeRig, nil)
	if err != nil {
		return nil, err
	}
	rig, ok := res.Data.(*skeleton.Rig)
	if !ok {
		return nil, fmt.Errorf("asset '%s' is not a rig", name)
	}
	return rig, nil
}

// script lays out the demo: bend the right arm with the trigger, twist it
// with the trackpad, turn the whole mannequin with both hands, then play the
// recording back and save it.
func (g *TestGame) script(elbow math.Vec3) {
	state := g.state()
	left := state.hands[core.HAND_LEFT]
	right := state.hands[core.HAND_RIGHT]
	// The right hand starts on the elbow, one forearm length further along
	// the arm is the wrist.
	wrist := elbow.Add(math.NewVec3(0, -26, 0))
	raised := elbow.Add(math.NewVec3(0, 0, 26))

	state.motions = []motion{
		{hand: core.HAND_RIGHT, start: 0.3, end: 0.4, from: elbow, to: wrist},
		{hand: core.HAND_RIGHT, start: 0.5, end: 1.5, from: wrist, to: raised},
		{hand: core.HAND_LEFT, start: 2.1, end: 3.0, from: math.NewVec3(30, 30, 100), to: math.NewVec3(-30, 30, 100)},
		{hand: core.HAND_RIGHT, start: 2.1, end: 3.0, from: math.NewVec3(30, -30, 100), to: math.NewVec3(30, 30, 100)},
	}

	state.cues = []cue{
		{at: 0.0, name: "capture bind pose", do: func(g *TestGame) error {
			return fireTimeline(core.EVENT_CODE_CAPTURE_KEYFRAME, 0)
		}},
		{at: 0.2, name: "select forearm", do: func(g *TestGame) error {
			ref, _ := g.state().session.BoneReference("hand_r")
			return g.state().session.OverlapBoneReference(ref, right, core.HAND_RIGHT)
		}},
		{at: 0.45, name: "press right trigger", do: func(g *TestGame) error {
			return core.InputProcessButton(core.HAND_RIGHT, core.BUTTON_TRIGGER, true, right)
		}},
		{at: 1.6, name: "twist forearm", do: func(g *TestGame) error {
			return core.InputProcessTrackpad(core.HAND_RIGHT, math.K_QUARTER_PI)
		}},
		{at: 1.7, name: "release right trigger", do: func(g *TestGame) error {
			return core.InputProcessButton(core.HAND_RIGHT, core.BUTTON_TRIGGER, false, right)
		}},
		{at: 1.8, name: "capture bent arm", do: func(g *TestGame) error {
			return fireTimeline(core.EVENT_CODE_CAPTURE_KEYFRAME, 1)
		}},
		{at: 2.0, name: "grip both hands", do: func(g *TestGame) error {
			right.MoveTo(math.NewVec3(30, -30, 100))
			if err := core.InputProcessButton(core.HAND_LEFT, core.BUTTON_GRIP, true, left); err != nil {
				return err
			}
			return core.InputProcessButton(core.HAND_RIGHT, core.BUTTON_GRIP, true, right)
		}},
		{at: 3.1, name: "release both hands", do: func(g *TestGame) error {
			if err := core.InputProcessButton(core.HAND_LEFT, core.BUTTON_GRIP, false, left); err != nil {
				return err
			}
			return core.InputProcessButton(core.HAND_RIGHT, core.BUTTON_GRIP, false, right)
		}},
		{at: 3.2, name: "capture turned mannequin", do: func(g *TestGame) error {
			return fireTimeline(core.EVENT_CODE_CAPTURE_KEYFRAME, 2)
		}},
		{at: 3.3, name: "play back", do: func(g *TestGame) error {
			for _, t := range []float32{0, 0.5, 1, 1.5, 2} {
				if err := g.state().session.SetPlaybackTime(t); err != nil {
					return err
				}
			}
			return nil
		}},
		{at: 3.4, name: "save current pose", do: func(g *TestGame) error {
			handle, err := g.state().session.SaveCurrentPose()
			if err != nil {
				return err
			}
			return g.recordSaved(handle)
		}},
		{at: 3.5, name: "save animation", do: func(g *TestGame) error {
			return g.state().session.QueueSaveAnimation(func(handle animation.AssetHandle, err error) {
				if err != nil {
					g.state().failed = err
					return
				}
				g.state().failed = g.recordSaved(handle)
			})
		}},
		{at: 3.6, name: "reset", do: func(g *TestGame) error {
			return g.state().session.ResetSkeleton()
		}},
		{at: 3.7, name: "quit", ready: savesDone, do: func(g *TestGame) error {
			if err := g.state().failed; err != nil {
				return err
			}
			core.EventFire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
			return nil
		}},
	}
}

func savesDone(g *TestGame) bool {
	return g.Jobs == nil || g.Jobs.Pending() == 0
}

func fireTimeline(code core.EventCode, time float32) error {
	if !core.EventFire(core.EventContext{Type: code, Data: &core.TimelineEvent{Time: time}}) {
		return fmt.Errorf("nobody listens to event code %d", code)
	}
	return nil
}

func (g *TestGame) recordSaved(handle uuid.UUID) error {
	path, ok := g.AssetManager.AssetPath(handle)
	if !ok {
		return fmt.Errorf("no asset written for %s", handle)
	}
	g.state().saved = append(g.state().saved, path)
	core.LogInfo("saved %s", path)
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.state()
	state.scriptTime += scriptFrameSeconds

	for _, m := range state.motions {
		if state.scriptTime < m.start || state.scriptTime > m.end+scriptFrameSeconds {
			continue
		}
		alpha := math.Clamp(float32((state.scriptTime-m.start)/(m.end-m.start)), 0.0, 1.0)
		state.hands[m.hand].MoveTo(m.from.Lerp(m.to, alpha))
	}

	for state.nextCue < len(state.cues) && state.cues[state.nextCue].at <= state.scriptTime {
		c := state.cues[state.nextCue]
		if c.ready != nil && !c.ready(g) {
			break
		}
		state.nextCue++
		core.LogDebug("testbed: %s", c.name)
		if err := c.do(g); err != nil {
			return fmt.Errorf("testbed step '%s' failed: %w", c.name, err)
		}
	}

	return state.session.Tick(deltaTime)
}

func (g *TestGame) Shutdown() error {
	core.LogInfo("shutting down testbed...")
	if s := g.state().session; s != nil {
		s.End()
	}
	return nil
}
