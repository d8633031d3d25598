// Package ui holds the retained UI model: layout transforms, images, text, buttons,
// interaction events and the systems that keep them consistent every frame.
package ui

import (
	"fmt"

	"github.com/DoumanAsh/vn/assets"
	"github.com/DoumanAsh/vn/ecs"
	"github.com/tanema/gween"
)

// Anchor is the point of the parent a transform is positioned against.
type Anchor int

const (
	TopLeft Anchor = iota
	TopMiddle
	TopRight
	MiddleLeft
	Middle
	MiddleRight
	BottomLeft
	BottomMiddle
	BottomRight
)

var anchorNames = [...]string{
	"TopLeft", "TopMiddle", "TopRight",
	"MiddleLeft", "Middle", "MiddleRight",
	"BottomLeft", "BottomMiddle", "BottomRight",
}

func (a Anchor) String() string {
	if a < 0 || int(a) >= len(anchorNames) {
		return fmt.Sprintf("Anchor(%d)", int(a))
	}
	return anchorNames[a]
}

// Offset returns the anchor point as a fraction of the parent size measured from the
// parent center, with Y pointing up.
func (a Anchor) Offset() (x, y float32) {
	switch a {
	case TopLeft:
		return -0.5, 0.5
	case TopMiddle:
		return 0, 0.5
	case TopRight:
		return 0.5, 0.5
	case MiddleLeft:
		return -0.5, 0
	case MiddleRight:
		return 0.5, 0
	case BottomLeft:
		return -0.5, -0.5
	case BottomMiddle:
		return 0, -0.5
	case BottomRight:
		return 0.5, -0.5
	}
	return 0, 0
}

// StretchMode selects which axes fill the parent.
type StretchMode int

const (
	NoStretch StretchMode = iota
	StretchX
	StretchY
	StretchXY
)

// Stretch makes a transform fill its parent along some axes, minus a margin on each side.
type Stretch struct {
	Mode    StretchMode
	XMargin float32
	YMargin float32
}

// Rect is a screen-space rectangle with a top-left origin and Y pointing down.
type Rect struct {
	X, Y, Width, Height float32
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Transform places a UI element. LocalX and LocalY move the element center away from
// the anchor point, with Y pointing up. LocalZ is an absolute draw layer.
type Transform struct {
	Id       string
	Anchor   Anchor
	LocalX   float32
	LocalY   float32
	LocalZ   float32
	Width    float32
	Height   float32
	TabOrder int
	Stretch  Stretch

	// written by LayoutSystem
	Rect    Rect
	GlobalZ float32
	Visible bool
}

// Dimensions is the part of a Transform a resize callback may change.
type Dimensions struct {
	Width, Height  float32
	LocalX, LocalY float32
}

// ScreenDimensions is the singleton holding the current window size in pixels.
type ScreenDimensions struct {
	Width, Height float32
}

// ResizeFunc computes new dimensions for an element when the screen size changes.
// It must be pure.
type ResizeFunc func(current Dimensions, screen ScreenDimensions) Dimensions

// Resize attaches a ResizeFunc to an element.
type Resize struct {
	Fn ResizeFunc

	applied    ScreenDimensions
	hasApplied bool
}

// Image draws a texture stretched over the element rectangle, multiplied by Tint.
type Image struct {
	Texture assets.TextureHandle
	Tint    assets.Color
}

// TextAlign positions text inside its element.
type TextAlign int

const (
	AlignCenter TextAlign = iota
	AlignLeft
	AlignRight
)

// Text draws a string inside the element rectangle.
type Text struct {
	Text     string
	Color    assets.Color
	Font     assets.FontHandle
	FontSize float32
	Wrap     bool
	Align    TextAlign
}

// Parent makes an element lay out relative to another element.
type Parent struct {
	Entity ecs.EntityId
}

// Hidden hides an element and all of its descendants.
type Hidden struct{}

// Interactive marks an element as a target for pointer events.
type Interactive struct{}

// ButtonState is the visual state of a Button.
type ButtonState int

const (
	ButtonNormal ButtonState = iota
	ButtonHover
	ButtonPressed
)

// Button swaps the element image between its state textures.
type Button struct {
	Normal  assets.TextureHandle
	Hover   assets.TextureHandle
	Pressed assets.TextureHandle

	State ButtonState
	fade  *gween.Tween
	level float32
}

// Brightness applied to the image tint in each button state.
const (
	normalLevel  float32 = 0.9
	hoverLevel   float32 = 1
	pressedLevel float32 = 0.8
)

func (s ButtonState) level() float32 {
	switch s {
	case ButtonHover:
		return hoverLevel
	case ButtonPressed:
		return pressedLevel
	}
	return normalLevel
}

func (s ButtonState) String() string {
	switch s {
	case ButtonNormal:
		return "Normal"
	case ButtonHover:
		return "Hover"
	case ButtonPressed:
		return "Pressed"
	}
	return fmt.Sprintf("ButtonState(%d)", int(s))
}

// Texture returns the texture for the current state, falling back to Normal.
func (b *Button) Texture() assets.TextureHandle {
	switch b.State {
	case ButtonHover:
		if b.Hover.Valid() {
			return b.Hover
		}
	case ButtonPressed:
		if b.Pressed.Valid() {
			return b.Pressed
		}
	}
	return b.Normal
}

// RegisterComponents registers every component type of this package.
func RegisterComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Transform](registry)
	ecs.RegisterComponent[Image](registry)
	ecs.RegisterComponent[Text](registry)
	ecs.RegisterComponent[Parent](registry)
	ecs.RegisterComponent[Hidden](registry)
	ecs.RegisterComponent[Interactive](registry)
	ecs.RegisterComponent[Button](registry)
	ecs.RegisterComponent[Resize](registry)
}
