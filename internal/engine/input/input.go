// Package input handles SDL2 input events and per-frame key/mouse state.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType identifies a processed input event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
}

// Input polls SDL once per frame and exposes edge events (key down/up,
// resize, quit), held-key state for continuous movement, and the relative
// mouse motion accumulated since the previous poll.
type Input struct {
	events   []Event
	held     map[sdl.Scancode]bool
	mouseDX  int32
	mouseDY  int32
	quitting bool
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
		held:   make(map[sdl.Scancode]bool),
	}
}

// Update polls SDL events and converts them to viewer events.
// Returns true if the viewer should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]
	i.mouseDX = 0
	i.mouseDY = 0

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			i.quitting = true

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
				if e.Repeat == 0 {
					i.events = append(i.events, Event{Type: EventKeyDown, Key: e.Keysym.Scancode})
				}
				i.held[e.Keysym.Scancode] = true
			} else if e.Type == sdl.KEYUP {
				i.events = append(i.events, Event{Type: EventKeyUp, Key: e.Keysym.Scancode})
				delete(i.held, e.Keysym.Scancode)
			}

		case *sdl.MouseMotionEvent:
			// Relative mode: XRel/YRel carry the raw deltas.
			i.mouseDX += e.XRel
			i.mouseDY += e.YRel
		}
	}

	return i.quitting
}

// Events returns the edge events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyHeld reports whether a key is currently held down.
func (i *Input) IsKeyHeld(scancode sdl.Scancode) bool {
	return i.held[scancode]
}

// MouseDelta returns the relative mouse motion accumulated during the last
// Update.
func (i *Input) MouseDelta() (dx, dy float32) {
	return float32(i.mouseDX), float32(i.mouseDY)
}
