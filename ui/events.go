package ui

import (
	"fmt"
	"sync"

	"github.com/DoumanAsh/vn/ecs"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// EventKind is the kind of a UI interaction.
type EventKind int

const (
	// ClickStart fires when a pointer button goes down over an element.
	ClickStart EventKind = iota + 1
	// ClickStop fires when a pointer button is released over an element.
	ClickStop
	// Click fires after a press and release over the same element.
	Click
	HoverStart
	HoverStop
)

func (k EventKind) String() string {
	switch k {
	case ClickStart:
		return "ClickStart"
	case ClickStop:
		return "ClickStop"
	case Click:
		return "Click"
	case HoverStart:
		return "HoverStart"
	case HoverStop:
		return "HoverStop"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is a UI interaction on an element.
type Event struct {
	Kind   EventKind
	Target ecs.EntityId
}

// EventType is the donburi event type carrying UI events.
var EventType = events.NewEventType[Event]()

// EventBus queues UI events published by the host. Process moves queued events into
// the current frame batch, which systems read, and into the pending list the state
// machine drains. Publish may be called from any goroutine.
type EventBus struct {
	mu      sync.Mutex
	world   donburi.World
	frame   []Event
	pending []Event
}

// NewEventBus creates a bus backed by its own donburi world.
func NewEventBus() *EventBus {
	b := &EventBus{world: donburi.NewWorld()}
	EventType.Subscribe(b.world, func(_ donburi.World, e Event) {
		b.frame = append(b.frame, e)
		b.pending = append(b.pending, e)
	})
	return b
}

// Publish queues an event until the next Process.
func (b *EventBus) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	EventType.Publish(b.world, e)
}

// Process starts a new frame batch holding every event published since the last call.
func (b *EventBus) Process() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frame = b.frame[:0]
	EventType.ProcessEvents(b.world)
}

// Frame returns the batch built by the last Process. The slice is reused by the next Process.
func (b *EventBus) Frame() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frame
}

// Drain returns processed events not drained yet, oldest first.
func (b *EventBus) Drain() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.pending
	b.pending = nil
	return out
}

// UiEvents is the storage singleton giving systems access to the bus.
type UiEvents struct {
	Bus *EventBus
}

// InstallEventBus stores a new bus as the UiEvents singleton and returns it.
// An existing bus is kept.
func InstallEventBus(storage *ecs.Storage) *EventBus {
	ue := ecs.NewSingleton[UiEvents](storage).Get()
	if ue.Bus == nil {
		ue.Bus = NewEventBus()
	}
	return ue.Bus
}
