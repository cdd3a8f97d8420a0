package core

// EventCode identifies the kind of an event. Application specific codes
// should start after MAX_EVENT_CODE.
type EventCode uint16

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT EventCode = 0x01

	// Grip button pressed on a motion controller.
	/* Context usage:
	 * ControllerEvent{Hand, Button: BUTTON_GRIP, Source}
	 */
	EVENT_CODE_GRIP_PRESSED EventCode = 0x02

	// Grip button released on a motion controller.
	EVENT_CODE_GRIP_RELEASED EventCode = 0x03

	// Trigger pressed on a motion controller.
	/* Context usage:
	 * ControllerEvent{Hand, Button: BUTTON_TRIGGER, Source}
	 */
	EVENT_CODE_TRIGGER_PRESSED EventCode = 0x04

	// Trigger released on a motion controller.
	EVENT_CODE_TRIGGER_RELEASED EventCode = 0x05

	// Trackpad swiped around its center.
	/* Context usage:
	 * TrackpadEvent{Hand, Radians}
	 */
	EVENT_CODE_TRACKPAD_ROTATED EventCode = 0x06

	// The user asked for the current pose to be stored as a keyframe.
	/* Context usage:
	 * TimelineEvent{Time}
	 */
	EVENT_CODE_CAPTURE_KEYFRAME EventCode = 0x07

	// The playback head moved.
	/* Context usage:
	 * TimelineEvent{Time}
	 */
	EVENT_CODE_PLAYBACK_TIME EventCode = 0x08

	// The user asked for the recorded keyframes to be exported.
	EVENT_CODE_SAVE_ANIMATION EventCode = 0x09

	MAX_EVENT_CODE EventCode = 0xFF
)

// This should be more than enough codes...
const MAX_MESSAGE_CODES = 16384

type EventContext struct {
	Type EventCode
	Data interface{}
}

type ControllerEvent struct {
	Hand   Hand
	Button Button
	// Source is the tracked object of the controller (its selection sphere).
	Source interface{}
}

type TrackpadEvent struct {
	Hand    Hand
	Radians float32
}

type TimelineEvent struct {
	Time float32
}

type FnOnEvent func(context EventContext)

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

type eventSystemState struct {
	registered [MAX_MESSAGE_CODES][]*registeredEvent
}

var eventState *eventSystemState = nil

// EventSystemInitialize sets up an empty listener table. Returns false when
// the system is already running.
func EventSystemInitialize() bool {
	if eventState != nil {
		return false
	}
	eventState = &eventSystemState{}
	return true
}

func EventSystemShutdown() error {
	// Listeners are owned by their registrants; just forget about them.
	eventState = nil
	return nil
}

/**
 * Register to listen for when events are sent with the provided code. A listener
 * can only be registered once per code.
 * @param code The event code to listen for.
 * @param listener The listener instance, used to unregister.
 * @param onEvent The callback invoked when the event code is fired.
 * @returns true if the event is successfully registered; otherwise false.
 */
func EventRegister(code EventCode, listener interface{}, onEvent FnOnEvent) bool {
	if eventState == nil {
		return false
	}
	for _, e := range eventState.registered[code] {
		if e.listener == listener {
			LogWarn("listener already registered for event code %d", code)
			return false
		}
	}
	eventState.registered[code] = append(eventState.registered[code], &registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

// EventUnregister removes the listener from the given code. Returns false if
// it was not registered.
func EventUnregister(code EventCode, listener interface{}) bool {
	if eventState == nil {
		return false
	}
	events := eventState.registered[code]
	for i, e := range events {
		if e.listener == listener {
			eventState.registered[code] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	return false
}

/**
 * Fires an event to every listener of its code. Dispatch is synchronous: all
 * callbacks have run when this returns.
 * @returns true if at least one listener received the event.
 */
func EventFire(context EventContext) bool {
	if eventState == nil {
		return false
	}
	registered := eventState.registered[context.Type]
	if len(registered) == 0 {
		return false
	}
	// listeners may unregister while being called
	events := make([]*registeredEvent, len(registered))
	copy(events, registered)
	for _, e := range events {
		e.callback(context)
	}
	return true
}
