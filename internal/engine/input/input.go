// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType classifies an Event.
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
	Repeat bool
	Width  int
	Height int
}

// Action is what the viewer does in response to a key.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionTogglePause
	ActionRestart
)

// Input handles all input processing.
type Input struct {
	events []Event
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls SDL events and converts them to viewer events.
// Returns true if the viewer should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	quit := false
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		e, ok := Translate(event)
		if !ok {
			continue
		}
		i.events = append(i.events, e)
		if e.Type == EventQuit {
			quit = true
		}
	}
	return quit
}

// Translate converts one SDL event. Events the viewer ignores, including
// resizes to an empty drawable, report false.
func Translate(event sdl.Event) (Event, bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return Event{Type: EventQuit}, true

	case *sdl.WindowEvent:
		if e.Event != sdl.WINDOWEVENT_RESIZED && e.Event != sdl.WINDOWEVENT_SIZE_CHANGED {
			return Event{}, false
		}
		// Minimizing reports 0x0 on some platforms.
		if e.Data1 <= 0 || e.Data2 <= 0 {
			return Event{}, false
		}
		return Event{
			Type:   EventWindowResize,
			Width:  int(e.Data1),
			Height: int(e.Data2),
		}, true

	case *sdl.KeyboardEvent:
		ev := Event{Key: e.Keysym.Scancode, Repeat: e.Repeat != 0}
		switch e.Type {
		case sdl.KEYDOWN:
			ev.Type = EventKeyDown
		case sdl.KEYUP:
			ev.Type = EventKeyUp
		default:
			return Event{}, false
		}
		return ev, true
	}
	return Event{}, false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// ActionFor maps a key press to a viewer action. Auto-repeat presses only
// quit, so holding Space does not flicker the pause state.
func ActionFor(e Event) Action {
	if e.Type != EventKeyDown {
		return ActionNone
	}
	switch e.Key {
	case sdl.SCANCODE_ESCAPE, sdl.SCANCODE_Q:
		return ActionQuit
	}
	if e.Repeat {
		return ActionNone
	}
	switch e.Key {
	case sdl.SCANCODE_SPACE:
		return ActionTogglePause
	case sdl.SCANCODE_R:
		return ActionRestart
	}
	return ActionNone
}
