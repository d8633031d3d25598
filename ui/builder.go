package ui

import (
	"github.com/DoumanAsh/vn/assets"
	"github.com/DoumanAsh/vn/ecs"
)

// DefaultTextColor is the text color of windows and buttons unless overridden.
var DefaultTextColor = assets.RGBA8(128, 128, 128, 1)

const (
	defaultLayer    float32 = 1
	defaultFontSize float32 = 32

	textMargin float32 = 10

	closeSize     float32 = 50
	closeOffset   float32 = -20
	closeFontSize float32 = 30
)

// TextWindowBuilder describes a window made of a background, an optional text child and an
// optional close button. The zero value is not usable; start from NewTextWindow.
type TextWindowBuilder struct {
	name            string
	anchor          Anchor
	x, y, z         float32
	width, height   float32
	stretch         Stretch
	tabOrder        int
	text            string
	hasText         bool
	textColor       assets.Color
	font            assets.FontHandle
	fontSize        float32
	background      assets.TextureHandle
	closeBackground assets.TextureHandle
	resize          ResizeFunc
}

// NewTextWindow starts a window description anchored TopLeft on layer 1.
func NewTextWindow() *TextWindowBuilder {
	return &TextWindowBuilder{
		name:      "TextWindow",
		anchor:    TopLeft,
		z:         defaultLayer,
		textColor: DefaultTextColor,
		fontSize:  defaultFontSize,
	}
}

func (b *TextWindowBuilder) Name(name string) *TextWindowBuilder {
	b.name = name
	return b
}

func (b *TextWindowBuilder) Anchor(anchor Anchor) *TextWindowBuilder {
	b.anchor = anchor
	return b
}

// Position sets the offset of the window center from its anchor point, Y up.
func (b *TextWindowBuilder) Position(x, y float32) *TextWindowBuilder {
	b.x, b.y = x, y
	return b
}

// Layer sets the draw layer. Children draw above it.
func (b *TextWindowBuilder) Layer(z float32) *TextWindowBuilder {
	b.z = z
	return b
}

func (b *TextWindowBuilder) Width(w float32) *TextWindowBuilder {
	b.width = w
	return b
}

func (b *TextWindowBuilder) Height(h float32) *TextWindowBuilder {
	b.height = h
	return b
}

func (b *TextWindowBuilder) Stretch(s Stretch) *TextWindowBuilder {
	b.stretch = s
	return b
}

func (b *TextWindowBuilder) TabOrder(order int) *TextWindowBuilder {
	b.tabOrder = order
	return b
}

// Text sets the initial window text. Without it the window has no text child.
func (b *TextWindowBuilder) Text(text string) *TextWindowBuilder {
	b.text = text
	b.hasText = true
	return b
}

func (b *TextWindowBuilder) TextColor(c assets.Color) *TextWindowBuilder {
	b.textColor = c
	return b
}

// Font sets the font used by the text and the close button. Required.
func (b *TextWindowBuilder) Font(font assets.FontHandle, size float32) *TextWindowBuilder {
	b.font = font
	b.fontSize = size
	return b
}

// Background sets the window image. Required.
func (b *TextWindowBuilder) Background(tex assets.TextureHandle) *TextWindowBuilder {
	b.background = tex
	return b
}

// CloseBackground sets the close button image. Without it the window has no close button.
func (b *TextWindowBuilder) CloseBackground(tex assets.TextureHandle) *TextWindowBuilder {
	b.closeBackground = tex
	return b
}

// Resize sets the function recomputing the window size and position on screen resize.
func (b *TextWindowBuilder) Resize(fn ResizeFunc) *TextWindowBuilder {
	b.resize = fn
	return b
}

// Build spawns the window entities. It panics if the background or font is missing.
func (b *TextWindowBuilder) Build(storage *ecs.Storage) TextWindow {
	if !b.background.Valid() {
		panic("text window background is not set")
	}
	if !b.font.Valid() {
		panic("text window font is not set")
	}

	var w TextWindow
	w.Window = storage.Spawn(
		Transform{
			Id:       b.name,
			Anchor:   b.anchor,
			LocalX:   b.x,
			LocalY:   b.y,
			LocalZ:   b.z,
			Width:    b.width,
			Height:   b.height,
			TabOrder: b.tabOrder,
			Stretch:  b.stretch,
		},
		Image{Texture: b.background, Tint: assets.White},
	)
	if b.resize != nil {
		storage.AddComponent(w.Window, Resize{Fn: b.resize})
	}

	if b.hasText {
		w.Text = storage.Spawn(
			Transform{
				Id:       b.name + "Text",
				Anchor:   Middle,
				LocalZ:   b.z + 2,
				Width:    b.width,
				Height:   b.height,
				TabOrder: b.tabOrder + 1,
				Stretch:  Stretch{Mode: StretchXY, XMargin: textMargin, YMargin: textMargin},
			},
			Text{
				Text:     b.text,
				Color:    b.textColor,
				Font:     b.font,
				FontSize: b.fontSize,
				Wrap:     true,
				Align:    AlignLeft,
			},
			Parent{Entity: w.Window},
		)
	}

	if b.closeBackground.Valid() {
		w.Close = NewButton(b.name+"Close", "X").
			Font(b.font, closeFontSize).
			Image(b.closeBackground).
			Anchor(TopRight).
			Size(closeSize, closeSize).
			Position(closeOffset, closeOffset).
			Layer(b.z+200).
			Parent(w.Window).
			TextColor(DefaultTextColor).
			Build(storage)
	}
	return w
}

// TextWindow names the entities of a built text window. Text and Close are zero when
// the window was built without them.
type TextWindow struct {
	Window ecs.EntityId
	Text   ecs.EntityId
	Close  ecs.EntityId
}

// ToggleHidden hides a visible window or shows a hidden one. The close button is made
// non-interactive exactly while the window is hidden.
func (w *TextWindow) ToggleHidden(storage *ecs.Storage) {
	if ecs.HasComponentOf[Hidden](storage, w.Window) {
		ecs.RemoveComponentOf[Hidden](storage, w.Window)
		if !w.Close.IsZero() {
			storage.AddComponent(w.Close, Interactive{})
		}
		return
	}

	storage.AddComponent(w.Window, Hidden{})
	if !w.Close.IsZero() {
		ecs.RemoveComponentOf[Interactive](storage, w.Close)
	}
}

// IsHidden reports whether the window carries the Hidden marker.
func (w *TextWindow) IsHidden(storage *ecs.Storage) bool {
	return ecs.HasComponentOf[Hidden](storage, w.Window)
}

// Entities lists the window entities, root first.
func (w *TextWindow) Entities() []ecs.EntityId {
	ids := []ecs.EntityId{w.Window}
	for _, id := range []ecs.EntityId{w.Text, w.Close} {
		if !id.IsZero() {
			ids = append(ids, id)
		}
	}
	return ids
}

// Destroy deletes every entity of the window.
func (w *TextWindow) Destroy(storage *ecs.Storage) {
	for _, id := range w.Entities() {
		storage.Delete(id)
	}
	*w = TextWindow{}
}

// ButtonBuilder describes a single interactive button entity with a centered label.
type ButtonBuilder struct {
	name          string
	label         string
	font          assets.FontHandle
	fontSize      float32
	textColor     assets.Color
	normal        assets.TextureHandle
	hover         assets.TextureHandle
	pressed       assets.TextureHandle
	anchor        Anchor
	x, y, z       float32
	width, height float32
	tabOrder      int
	parent        ecs.EntityId
}

// NewButton starts a button description anchored Middle.
func NewButton(name, label string) *ButtonBuilder {
	return &ButtonBuilder{
		name:      name,
		label:     label,
		fontSize:  defaultFontSize,
		textColor: DefaultTextColor,
		anchor:    Middle,
		z:         defaultLayer,
		width:     128,
		height:    64,
	}
}

func (b *ButtonBuilder) Font(font assets.FontHandle, size float32) *ButtonBuilder {
	b.font = font
	b.fontSize = size
	return b
}

func (b *ButtonBuilder) FontSize(size float32) *ButtonBuilder {
	b.fontSize = size
	return b
}

func (b *ButtonBuilder) TextColor(c assets.Color) *ButtonBuilder {
	b.textColor = c
	return b
}

// Image sets the texture shown in the normal state. Required.
func (b *ButtonBuilder) Image(tex assets.TextureHandle) *ButtonBuilder {
	b.normal = tex
	return b
}

func (b *ButtonBuilder) HoverImage(tex assets.TextureHandle) *ButtonBuilder {
	b.hover = tex
	return b
}

func (b *ButtonBuilder) PressImage(tex assets.TextureHandle) *ButtonBuilder {
	b.pressed = tex
	return b
}

func (b *ButtonBuilder) Anchor(anchor Anchor) *ButtonBuilder {
	b.anchor = anchor
	return b
}

func (b *ButtonBuilder) Size(w, h float32) *ButtonBuilder {
	b.width, b.height = w, h
	return b
}

func (b *ButtonBuilder) Position(x, y float32) *ButtonBuilder {
	b.x, b.y = x, y
	return b
}

func (b *ButtonBuilder) Layer(z float32) *ButtonBuilder {
	b.z = z
	return b
}

func (b *ButtonBuilder) TabOrder(order int) *ButtonBuilder {
	b.tabOrder = order
	return b
}

func (b *ButtonBuilder) Parent(parent ecs.EntityId) *ButtonBuilder {
	b.parent = parent
	return b
}

// Build spawns the button. It panics if the image or font is missing.
func (b *ButtonBuilder) Build(storage *ecs.Storage) ecs.EntityId {
	if !b.normal.Valid() {
		panic("button " + b.name + " image is not set")
	}
	if !b.font.Valid() {
		panic("button " + b.name + " font is not set")
	}

	components := []any{
		Transform{
			Id:       b.name,
			Anchor:   b.anchor,
			LocalX:   b.x,
			LocalY:   b.y,
			LocalZ:   b.z,
			Width:    b.width,
			Height:   b.height,
			TabOrder: b.tabOrder,
		},
		Image{Texture: b.normal, Tint: assets.RGBA(normalLevel, normalLevel, normalLevel, 1)},
		Text{
			Text:     b.label,
			Color:    b.textColor,
			Font:     b.font,
			FontSize: b.fontSize,
			Align:    AlignCenter,
		},
		Button{Normal: b.normal, Hover: b.hover, Pressed: b.pressed, level: normalLevel},
		Interactive{},
	}
	if !b.parent.IsZero() {
		components = append(components, Parent{Entity: b.parent})
	}
	return storage.Spawn(components...)
}
