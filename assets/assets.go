// Package assets defines the opaque handles and the loader contract between the game core
// and whatever runtime actually decodes and uploads images and fonts.
package assets

import (
	"errors"
	"fmt"
)

// TextureHandle refers to an uploaded image. The zero handle is never valid.
type TextureHandle uint32

// FontHandle refers to loaded font data. The zero handle is never valid.
type FontHandle uint32

// SpriteSheetHandle refers to a texture cut into sprite frames. The zero handle is never valid.
type SpriteSheetHandle uint32

func (h TextureHandle) Valid() bool     { return h != 0 }
func (h FontHandle) Valid() bool        { return h != 0 }
func (h SpriteSheetHandle) Valid() bool { return h != 0 }

// ErrNotFound is returned when a handle or path does not resolve.
var ErrNotFound = errors.New("assets: not found")

// Loader decodes and uploads assets, handing back handles usable as component values.
// Implementations are called from setup code on the main goroutine.
type Loader interface {
	// SolidTexture creates a 1x1 texture filled with c.
	SolidTexture(c Color) (TextureHandle, error)
	// DecodeTexture decodes an encoded image (PNG) held in memory.
	DecodeTexture(data []byte) (TextureHandle, error)
	// LoadTextureFile reads and decodes an image file.
	LoadTextureFile(path string) (TextureHandle, error)
	// LoadFont parses TrueType font data. Sizes are chosen when text is drawn.
	LoadFont(data []byte) (FontHandle, error)
	// LoadSpriteSheet loads an image file holding frames laid out left to right.
	// An empty path selects a generated placeholder sheet.
	LoadSpriteSheet(path string, frames int) (SpriteSheetHandle, error)
}

// TextureError wraps a failure to produce a texture with what was being loaded.
type TextureError struct {
	Source string
	Err    error
}

func (e *TextureError) Error() string {
	return fmt.Sprintf("load texture %s: %v", e.Source, e.Err)
}

func (e *TextureError) Unwrap() error {
	return e.Err
}
