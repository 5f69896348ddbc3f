// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType classifies processed input events.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
)

// Event represents a processed input event. Ctrl reports whether a control
// modifier was held when the event fired.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
	MouseX int32
	MouseY int32
	Button uint8
	WheelY int32
	Ctrl   bool
}

// Input handles all input processing.
type Input struct {
	events []Event
	held   map[sdl.Scancode]bool
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
		held:   make(map[sdl.Scancode]bool),
	}
}

func ctrlHeld() bool {
	return sdl.GetModState()&sdl.KMOD_CTRL != 0
}

// Update polls SDL events and converts them to viewer events.
// Returns true if a quit event was received.
func (i *Input) Update() bool {
	i.events = i.events[:0] // Clear previous events

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			return true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN {
				i.held[e.Keysym.Scancode] = true
				if e.Repeat == 0 {
					i.events = append(i.events, Event{
						Type: EventKeyDown,
						Key:  e.Keysym.Scancode,
						Ctrl: ctrlHeld(),
					})
				}
			} else if e.Type == sdl.KEYUP {
				delete(i.held, e.Keysym.Scancode)
				i.events = append(i.events, Event{
					Type: EventKeyUp,
					Key:  e.Keysym.Scancode,
				})
			}

		case *sdl.MouseMotionEvent:
			i.events = append(i.events, Event{
				Type:   EventMouseMove,
				MouseX: e.X,
				MouseY: e.Y,
			})

		case *sdl.MouseButtonEvent:
			if e.Type == sdl.MOUSEBUTTONDOWN {
				i.events = append(i.events, Event{
					Type:   EventMouseDown,
					MouseX: e.X,
					MouseY: e.Y,
					Button: e.Button,
					Ctrl:   ctrlHeld(),
				})
			} else if e.Type == sdl.MOUSEBUTTONUP {
				i.events = append(i.events, Event{
					Type:   EventMouseUp,
					MouseX: e.X,
					MouseY: e.Y,
					Button: e.Button,
				})
			}

		case *sdl.MouseWheelEvent:
			i.events = append(i.events, Event{
				Type:   EventMouseWheel,
				WheelY: e.Y,
				Ctrl:   ctrlHeld(),
			})
		}
	}

	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}

// Held reports whether a key is currently held down.
func (i *Input) Held(scancode sdl.Scancode) bool {
	return i.held[scancode]
}
