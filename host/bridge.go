package host

import (
	"github.com/DoumanAsh/vn/ui"
	"github.com/phanxgames/willow"
)

// Bridge is the willow EntityStore publishing pointer interactions on UI elements to the
// UI event bus. Only the left mouse button clicks.
type Bridge struct {
	elements *NodeRegistry
	bus      *ui.EventBus
}

func NewBridge(graph *SceneGraph, bus *ui.EventBus) *Bridge {
	return &Bridge{elements: graph.Elements(), bus: bus}
}

// EventKind maps a willow event to the UI event it publishes.
func EventKind(e willow.InteractionEvent) (ui.EventKind, bool) {
	switch e.Type {
	case willow.EventPointerEnter:
		return ui.HoverStart, true
	case willow.EventPointerLeave:
		return ui.HoverStop, true
	}

	if e.Button != willow.MouseButtonLeft {
		return 0, false
	}
	switch e.Type {
	case willow.EventPointerDown:
		return ui.ClickStart, true
	case willow.EventPointerUp:
		return ui.ClickStop, true
	case willow.EventClick:
		return ui.Click, true
	}
	return 0, false
}

func (b *Bridge) EmitEvent(e willow.InteractionEvent) {
	kind, ok := EventKind(e)
	if !ok {
		return
	}
	target, ok := b.elements.Resolve(e.EntityID)
	if !ok {
		return
	}
	b.bus.Publish(ui.Event{Kind: kind, Target: target})
}

var _ willow.EntityStore = (*Bridge)(nil)
