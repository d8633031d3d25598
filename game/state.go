package game

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/DoumanAsh/vn/ecs"
	"github.com/DoumanAsh/vn/resources"
	"github.com/DoumanAsh/vn/ui"
)

// DefaultToggleKey flips the dialogue window on the Game screen.
const DefaultToggleKey = "Space"

// Clock returns the current monotonic time.
type Clock func() time.Time

// StateData is what every state callback gets to work with.
type StateData struct {
	Storage    *ecs.Storage
	Dispatcher *ecs.Dispatcher
	Resources  *resources.Cache
	Logger     *slog.Logger
	Clock      Clock
	ToggleKey  string
	// DeltaTime is the duration of the frame being updated, in seconds.
	DeltaTime float64
}

// EventKind is the kind of a host event.
type EventKind int

const (
	EventCloseRequested EventKind = iota + 1
	EventKeyDown
	EventUi
)

// Event is a window, keyboard or UI event delivered to the active state.
type Event struct {
	Kind EventKind
	// Key is the key name of EventKeyDown, e.g. "Space".
	Key string
	Ui  ui.Event
}

// CloseRequested is the event of the user asking to close the window.
func CloseRequested() Event { return Event{Kind: EventCloseRequested} }

// KeyDown reports a key press by its ebiten key name, e.g. "Space".
func KeyDown(key string) Event { return Event{Kind: EventKeyDown, Key: key} }

// UiEvent wraps an interaction event published on the UI bus.
func UiEvent(e ui.Event) Event { return Event{Kind: EventUi, Ui: e} }

func (e Event) String() string {
	switch e.Kind {
	case EventCloseRequested:
		return "CloseRequested"
	case EventKeyDown:
		return "KeyDown(" + e.Key + ")"
	case EventUi:
		return fmt.Sprintf("Ui(%s, %d)", e.Ui.Kind, e.Ui.Target)
	}
	return fmt.Sprintf("Event(%d)", int(e.Kind))
}

// TransKind tells the application what to do after a state callback.
type TransKind int

const (
	TransNone TransKind = iota
	TransSwitch
	TransQuit
)

// Trans is the outcome of a state callback. Next is set for TransSwitch only.
type Trans struct {
	Kind TransKind
	Next State
}

// None keeps the current state.
func None() Trans { return Trans{Kind: TransNone} }

// Switch stops the current state and starts next.
func Switch(next State) Trans { return Trans{Kind: TransSwitch, Next: next} }

// Quit stops the current state and ends the application.
func Quit() Trans { return Trans{Kind: TransQuit} }

// State is one screen of the application. Entities created in OnStart belong to the
// state and must be gone after OnStop.
type State interface {
	OnStart(data StateData) error
	OnStop(data StateData)
	HandleEvent(data StateData, event Event) Trans
	Update(data StateData) Trans
}

// ClickBounceTimeout is the minimum time between two accepted clicks.
const ClickBounceTimeout = time.Second

// Debouncer collapses repeated click events. The UI may report several releases for
// one physical click.
type Debouncer struct {
	Threshold time.Duration

	clock    Clock
	last     time.Time
	accepted bool
}

// NewDebouncer returns a debouncer using ClickBounceTimeout. A nil clock uses time.Now.
func NewDebouncer(clock Clock) *Debouncer {
	if clock == nil {
		clock = time.Now
	}
	return &Debouncer{Threshold: ClickBounceTimeout, clock: clock}
}

// Accept reports whether a click arriving now should be acted on. Only accepted clicks
// move the reference time.
func (d *Debouncer) Accept() bool {
	now := d.clock()
	if d.accepted && now.Sub(d.last) <= d.Threshold {
		return false
	}
	d.last = now
	d.accepted = true
	return true
}
