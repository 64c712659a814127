package core

import "sync"

// System internal event codes. Application should use codes beyond 255.
type EventCode uint16

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT EventCode = 0x01
	// Keyboard key pressed.
	EVENT_CODE_KEY_PRESSED EventCode = 0x02
	// Keyboard key released.
	EVENT_CODE_KEY_RELEASED EventCode = 0x03
	// Mouse button pressed.
	EVENT_CODE_BUTTON_PRESSED EventCode = 0x04
	// Mouse button released.
	EVENT_CODE_BUTTON_RELEASED EventCode = 0x05
	// Mouse moved.
	EVENT_CODE_MOUSE_MOVED EventCode = 0x06
	// Mouse wheel scrolled.
	EVENT_CODE_MOUSE_WHEEL EventCode = 0x07
	// Resized/resolution changed from the OS.
	EVENT_CODE_RESIZED EventCode = 0x08
	// A watched asset changed on disk.
	EVENT_CODE_ASSET_CHANGED EventCode = 0x09

	MAX_EVENT_CODE EventCode = 0xFF
)

type KeyEvent struct {
	KeyCode KeyCode
}

// MouseEvent positions are signed: a captured drag can report coordinates
// outside the window, high-DPI ones well past 65535.
type MouseEvent struct {
	Button Button
	PosX   int32
	PosY   int32
	Scroll int8
}

type SystemEvent struct {
	WindowWidth  uint32
	WindowHeight uint32
	AssetPath    string
}

type EventContext struct {
	Type EventCode
	Data interface{}
}

// FnOnEvent is invoked synchronously for every fired event of a registered code.
type FnOnEvent func(context EventContext)

type eventSystemState struct {
	mu         sync.RWMutex
	registered map[EventCode][]FnOnEvent
}

var onceEvent sync.Once
var eventState *eventSystemState

func EventSystemInitialize() bool {
	onceEvent.Do(func() {
		eventState = &eventSystemState{
			registered: make(map[EventCode][]FnOnEvent),
		}
	})
	return eventState != nil
}

func EventSystemShutdown() error {
	if eventState == nil {
		return nil
	}
	eventState.mu.Lock()
	eventState.registered = make(map[EventCode][]FnOnEvent)
	eventState.mu.Unlock()
	return nil
}

// EventRegister subscribes a callback to the given code. Handlers are called
// in registration order on the goroutine that fires the event.
func EventRegister(code EventCode, onEvent FnOnEvent) bool {
	if eventState == nil || onEvent == nil {
		return false
	}
	eventState.mu.Lock()
	defer eventState.mu.Unlock()
	eventState.registered[code] = append(eventState.registered[code], onEvent)
	return true
}

// EventFire dispatches the context to every listener of context.Type.
func EventFire(context EventContext) bool {
	if eventState == nil {
		return false
	}
	eventState.mu.RLock()
	handlers := eventState.registered[context.Type]
	eventState.mu.RUnlock()
	if len(handlers) == 0 {
		return false
	}
	for _, h := range handlers {
		h(context)
	}
	return true
}
