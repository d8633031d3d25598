package ui

import (
	"github.com/DoumanAsh/vn/assets"
	"github.com/DoumanAsh/vn/ecs"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// System names registered by Bundle.
const (
	EventSystemName  = "ui_events"
	ButtonSystemName = "ui_buttons"
	ResizeSystemName = "ui_resize"
	LayoutSystemName = "ui_layout"
)

// buttonFade is how long a button takes to reach the brightness of its new state, in seconds.
const buttonFade float32 = 0.15

// maxDepth bounds parent chains so a Parent cycle cannot hang the layout.
const maxDepth = 64

// EventSystem turns events published since the previous frame into the current batch.
type EventSystem struct {
	Events ecs.Singleton[UiEvents]
}

func (s *EventSystem) Execute(*ecs.UpdateFrame) {
	if ue := s.Events.Get(); ue != nil && ue.Bus != nil {
		ue.Bus.Process()
	}
}

// ButtonSystem moves buttons between their normal, hover and pressed states and swaps
// their image accordingly. Tint brightness follows the state through a short tween.
type ButtonSystem struct {
	Events  ecs.Singleton[UiEvents] `access:"read"`
	Buttons ecs.Query[struct {
		Id ecs.EntityId
		*Button
		*Image
		Interactive *Interactive `ecs:"optional"`
	}]
}

func (s *ButtonSystem) Execute(frame *ecs.UpdateFrame) {
	var events []Event
	if ue := s.Events.Get(); ue != nil && ue.Bus != nil {
		events = ue.Bus.Frame()
	}

	for item := range s.Buttons.Values() {
		b := item.Button
		if b.level == 0 {
			b.level = b.State.level()
		}

		next := b.State
		if item.Interactive == nil {
			next = ButtonNormal
		} else {
			for _, e := range events {
				if e.Target == item.Id {
					next = nextButtonState(next, e.Kind)
				}
			}
		}

		if next != b.State {
			b.State = next
			b.fade = gween.New(b.level, next.level(), buttonFade, ease.OutQuad)
		}
		if tex := b.Texture(); tex.Valid() {
			item.Image.Texture = tex
		}

		if b.fade != nil {
			var done bool
			b.level, done = b.fade.Update(float32(frame.DeltaTime))
			if done {
				b.fade = nil
			}
		}
		tint := item.Image.Tint
		item.Image.Tint = assets.RGBA(b.level, b.level, b.level, tint.A())
	}
}

func nextButtonState(current ButtonState, kind EventKind) ButtonState {
	switch kind {
	case HoverStart:
		if current != ButtonPressed {
			return ButtonHover
		}
	case HoverStop:
		return ButtonNormal
	case ClickStart:
		return ButtonPressed
	case ClickStop:
		// the pointer is still over the element
		return ButtonHover
	}
	return current
}

// ResizeSystem runs resize callbacks for elements that have not seen the current screen size.
type ResizeSystem struct {
	Screen ecs.Singleton[ScreenDimensions] `access:"read"`
	Items  ecs.Query[struct {
		*Transform
		*Resize
	}]
}

func (s *ResizeSystem) Execute(*ecs.UpdateFrame) {
	screen := s.Screen.Get()
	if screen == nil {
		return
	}

	for item := range s.Items.Values() {
		r := item.Resize
		if r.Fn == nil || (r.hasApplied && r.applied == *screen) {
			continue
		}

		t := item.Transform
		dims := r.Fn(Dimensions{Width: t.Width, Height: t.Height, LocalX: t.LocalX, LocalY: t.LocalY}, *screen)
		t.Width, t.Height = dims.Width, dims.Height
		t.LocalX, t.LocalY = dims.LocalX, dims.LocalY

		r.applied = *screen
		r.hasApplied = true
	}
}

type layoutItem = struct {
	Id ecs.EntityId
	*Transform
	Parent *Parent `ecs:"optional"`
	Hidden *Hidden `ecs:"optional"`
}

// LayoutSystem resolves every transform into a screen rectangle, parents before children.
// An element is visible when neither it nor any ancestor is Hidden.
type LayoutSystem struct {
	Screen ecs.Singleton[ScreenDimensions] `access:"read"`
	Items  ecs.Query[layoutItem]
}

type layoutState struct {
	items  map[ecs.EntityId]layoutItem
	frames map[ecs.EntityId]frame
	screen ScreenDimensions
}

func (s *LayoutSystem) Execute(*ecs.UpdateFrame) {
	screen := s.Screen.Get()
	if screen == nil {
		return
	}

	st := &layoutState{
		items:  make(map[ecs.EntityId]layoutItem, s.Items.Len()),
		frames: make(map[ecs.EntityId]frame, s.Items.Len()),
		screen: *screen,
	}
	for id, item := range s.Items.Iter() {
		st.items[id] = item
	}
	for id := range st.items {
		st.resolve(id, 0)
	}
}

// resolve lays out id after its ancestors and returns its frame and visibility.
func (st *layoutState) resolve(id ecs.EntityId, depth int) (frame, bool) {
	item := st.items[id]
	if f, ok := st.frames[id]; ok {
		return f, item.Transform.Visible
	}

	parent, visible := screenFrame(st.screen), true
	if item.Parent != nil && depth < maxDepth {
		if _, ok := st.items[item.Parent.Entity]; ok {
			parent, visible = st.resolve(item.Parent.Entity, depth+1)
		}
	}

	t := item.Transform
	f := place(t, parent)
	t.Rect = f.rect(st.screen)
	t.GlobalZ = t.LocalZ
	t.Visible = visible && item.Hidden == nil
	st.frames[id] = f
	return f, t.Visible
}

// Bundle registers the UI systems on a track.
type Bundle struct{}

func (Bundle) Register(tb *ecs.TrackBuilder) error {
	tb.Add(&EventSystem{}, EventSystemName).
		Add(&ButtonSystem{}, ButtonSystemName, EventSystemName).
		Add(&ResizeSystem{}, ResizeSystemName).
		Add(&LayoutSystem{}, LayoutSystemName, ResizeSystemName, ButtonSystemName)
	return nil
}

// InstallScreen stores the screen size singleton, replacing the previous size.
func InstallScreen(storage *ecs.Storage, width, height float32) {
	storage.AddSingleton(ScreenDimensions{Width: width, Height: height})
}
