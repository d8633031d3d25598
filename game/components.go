package game

import "github.com/DoumanAsh/vn/assets"

// Visible play field in world units.
const (
	CameraWidth  float32 = 5000
	CameraHeight float32 = 3000
	cameraZ      float32 = 100
)

// Transform2D places a scene entity in world space.
type Transform2D struct {
	X, Y, Z float32
}

// MoveLeft and MoveRight shift the transform along X in world units.
func (t *Transform2D) MoveLeft(d float32)  { t.X -= d }
func (t *Transform2D) MoveRight(d float32) { t.X += d }

// SpriteRender draws one frame of a sprite sheet at the entity transform.
type SpriteRender struct {
	Sheet assets.SpriteSheetHandle
	Frame int
}

// Mirrored flips a sprite horizontally.
type Mirrored struct{}

// Camera is an orthographic projection covering Width by Height world units from the origin.
type Camera struct {
	Width, Height float32
}
