package core

type Hand uint8

const (
	HAND_LEFT Hand = iota
	HAND_RIGHT
	HAND_MAX_HANDS
)

func (h Hand) String() string {
	switch h {
	case HAND_LEFT:
		return "left"
	case HAND_RIGHT:
		return "right"
	default:
		return "unknown"
	}
}

// Motion controller buttons. Grip and trigger are independent channels.
type Button uint8

const (
	BUTTON_GRIP Button = iota
	BUTTON_TRIGGER
	BUTTON_MAX_BUTTONS
)

// Controller state structure
type ControllerState struct {
	Buttons [BUTTON_MAX_BUTTONS]bool // button states (pressed/released)
	// Accumulated trackpad rotation for the current frame, in radians.
	Trackpad float32
}

// Input state structure that holds current and previous states for both controllers
type InputState struct {
	Current  [HAND_MAX_HANDS]ControllerState
	Previous [HAND_MAX_HANDS]ControllerState
}

var inputState *InputState = nil

func InputInitialize() error {
	inputState = &InputState{}
	LogInfo("Input subsystem initialized.")
	return nil
}

func InputShutdown() error {
	inputState = nil
	return nil
}

func InputUpdate(deltaTime float64) error {
	if inputState == nil {
		return nil
	}

	// Copy current states to previous states.
	inputState.Previous = inputState.Current
	for i := range inputState.Current {
		inputState.Current[i].Trackpad = 0
	}
	return nil
}

func InputIsButtonDown(hand Hand, button Button) bool {
	if inputState == nil || hand >= HAND_MAX_HANDS {
		return false
	}
	return inputState.Current[hand].Buttons[button]
}

func InputIsButtonUp(hand Hand, button Button) bool {
	return !InputIsButtonDown(hand, button)
}

func InputWasButtonDown(hand Hand, button Button) bool {
	if inputState == nil || hand >= HAND_MAX_HANDS {
		return false
	}
	return inputState.Previous[hand].Buttons[button]
}

func InputTrackpadRotation(hand Hand) float32 {
	if inputState == nil || hand >= HAND_MAX_HANDS {
		return 0
	}
	return inputState.Current[hand].Trackpad
}

// InputProcessButton records a controller button state and, if it changed,
// fires the matching grip or trigger event. source is the tracked object of
// the controller and is forwarded untouched.
func InputProcessButton(hand Hand, button Button, pressed bool, source interface{}) error {
	if inputState == nil || hand >= HAND_MAX_HANDS || button >= BUTTON_MAX_BUTTONS {
		return nil
	}
	// Only handle this if the state actually changed.
	if inputState.Current[hand].Buttons[button] == pressed {
		return nil
	}
	inputState.Current[hand].Buttons[button] = pressed

	var code EventCode
	switch {
	case button == BUTTON_GRIP && pressed:
		code = EVENT_CODE_GRIP_PRESSED
	case button == BUTTON_GRIP:
		code = EVENT_CODE_GRIP_RELEASED
	case pressed:
		code = EVENT_CODE_TRIGGER_PRESSED
	default:
		code = EVENT_CODE_TRIGGER_RELEASED
	}

	// Fire off an event for immediate processing.
	EventFire(EventContext{
		Type: code,
		Data: &ControllerEvent{
			Hand:   hand,
			Button: button,
			Source: source,
		},
	})
	return nil
}

func InputProcessTrackpad(hand Hand, radians float32) error {
	if inputState == nil || hand >= HAND_MAX_HANDS {
		return nil
	}
	if radians == 0 {
		return nil
	}
	inputState.Current[hand].Trackpad += radians

	EventFire(EventContext{
		Type: EVENT_CODE_TRACKPAD_ROTATED,
		Data: &TrackpadEvent{
			Hand:    hand,
			Radians: radians,
		},
	})
	return nil
}
