package posing

import (
	"github.com/spaghettifunk/posecreator/engine/animation"
	"github.com/spaghettifunk/posecreator/engine/core"
	"github.com/spaghettifunk/posecreator/engine/manipulation"
)

var inputEvents = []core.EventCode{
	core.EVENT_CODE_GRIP_PRESSED,
	core.EVENT_CODE_GRIP_RELEASED,
	core.EVENT_CODE_TRIGGER_PRESSED,
	core.EVENT_CODE_TRIGGER_RELEASED,
	core.EVENT_CODE_TRACKPAD_ROTATED,
	core.EVENT_CODE_CAPTURE_KEYFRAME,
	core.EVENT_CODE_PLAYBACK_TIME,
	core.EVENT_CODE_SAVE_ANIMATION,
}

// ListenForInput registers the session on the event bus so controller and
// timeline events reach it. Returns false if the event system is not
// running.
func (s *Session) ListenForInput() bool {
	if s.listening {
		return true
	}
	for _, code := range inputEvents {
		if !core.EventRegister(code, s, s.onEvent) {
			s.StopListening()
			return false
		}
	}
	s.listening = true
	return true
}

func (s *Session) StopListening() {
	for _, code := range inputEvents {
		core.EventUnregister(code, s)
	}
	s.listening = false
}

func (s *Session) onEvent(context core.EventContext) {
	switch context.Type {
	case core.EVENT_CODE_GRIP_PRESSED, core.EVENT_CODE_GRIP_RELEASED,
		core.EVENT_CODE_TRIGGER_PRESSED, core.EVENT_CODE_TRIGGER_RELEASED:
		s.onController(context)
	case core.EVENT_CODE_TRACKPAD_ROTATED:
		te, ok := context.Data.(*core.TrackpadEvent)
		if !ok {
			core.LogError("wrong event associated with the event type `%d`", context.Type)
			return
		}
		if te.Hand == core.HAND_RIGHT {
			_ = s.RotateBoneAroundAxis(te.Radians)
		}
	case core.EVENT_CODE_CAPTURE_KEYFRAME, core.EVENT_CODE_PLAYBACK_TIME:
		te, ok := context.Data.(*core.TimelineEvent)
		if !ok {
			core.LogError("wrong event associated with the event type `%d`", context.Type)
			return
		}
		if context.Type == core.EVENT_CODE_CAPTURE_KEYFRAME {
			_ = s.CaptureKeyframe(te.Time)
		} else {
			_ = s.SetPlaybackTime(te.Time)
		}
	case core.EVENT_CODE_SAVE_ANIMATION:
		_ = s.QueueSaveAnimation(func(handle animation.AssetHandle, err error) {
			if err == nil {
				core.LogInfo("animation %s saved", handle)
			}
		})
	}
}

func (s *Session) onController(context core.EventContext) {
	ce, ok := context.Data.(*core.ControllerEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return
	}
	controller, _ := ce.Source.(manipulation.Controller)

	switch context.Type {
	case core.EVENT_CODE_GRIP_PRESSED:
		_ = s.GripPressed(ce.Hand, controller)
	case core.EVENT_CODE_GRIP_RELEASED:
		s.GripReleased(ce.Hand)
	case core.EVENT_CODE_TRIGGER_PRESSED:
		_ = s.TriggerPressed(ce.Hand, controller)
	case core.EVENT_CODE_TRIGGER_RELEASED:
		s.TriggerReleased(ce.Hand)
	}
}
