// Package host runs the game on ebiten. It decodes and uploads assets, mirrors UI and
// sprite entities into a willow scene graph, and feeds window, keyboard and pointer input
// back to the application.
package host

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"sync"

	"github.com/DoumanAsh/vn/assets"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/phanxgames/willow"
)

// placeholderFrame is the edge of one frame of the generated sprite sheet.
const placeholderFrame = 64

// validationSize is the face size used to check font data when it is loaded.
const validationSize = 16

// Library resolves asset handles to what the renderer draws.
type Library interface {
	Image(h assets.TextureHandle) *ebiten.Image
	Font(h assets.FontHandle, size float32) willow.Font
	Frame(h assets.SpriteSheetHandle, frame int) *ebiten.Image
}

type faceKey struct {
	font assets.FontHandle
	size float32
}

// Loader implements assets.Loader on ebiten images and willow TTF fonts. It is safe for
// concurrent use.
type Loader struct {
	mu     sync.Mutex
	images []*ebiten.Image
	fonts  [][]byte
	sheets [][]*ebiten.Image
	faces  map[faceKey]*willow.TTFFont
}

func NewLoader() *Loader {
	return &Loader{faces: make(map[faceKey]*willow.TTFFont)}
}

func (l *Loader) addImage(img *ebiten.Image) assets.TextureHandle {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.images = append(l.images, img)
	return assets.TextureHandle(len(l.images))
}

func (l *Loader) SolidTexture(c assets.Color) (assets.TextureHandle, error) {
	img := ebiten.NewImage(1, 1)
	img.Fill(c)
	return l.addImage(img), nil
}

func (l *Loader) DecodeTexture(data []byte) (assets.TextureHandle, error) {
	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, &assets.TextureError{Source: "memory", Err: err}
	}
	return l.addImage(ebiten.NewImageFromImage(decoded)), nil
}

func (l *Loader) LoadTextureFile(path string) (assets.TextureHandle, error) {
	img, _, err := ebitenutil.NewImageFromFile(path)
	if err != nil {
		return 0, &assets.TextureError{Source: path, Err: err}
	}
	return l.addImage(img), nil
}

func (l *Loader) LoadFont(data []byte) (assets.FontHandle, error) {
	if _, err := willow.LoadTTFFont(data, validationSize); err != nil {
		return 0, fmt.Errorf("load font: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.fonts = append(l.fonts, data)
	return assets.FontHandle(len(l.fonts)), nil
}

func (l *Loader) LoadSpriteSheet(path string, frames int) (assets.SpriteSheetHandle, error) {
	if frames <= 0 {
		return 0, fmt.Errorf("load sprite sheet %q: frame count must be positive, got %d", path, frames)
	}

	var img *ebiten.Image
	if path == "" {
		img = placeholderSheet(frames)
	} else {
		var err error
		if img, _, err = ebitenutil.NewImageFromFile(path); err != nil {
			return 0, &assets.TextureError{Source: path, Err: err}
		}
	}

	b := img.Bounds()
	width := b.Dx() / frames
	if width == 0 {
		return 0, fmt.Errorf("load sprite sheet %q: %d px is too narrow for %d frames", path, b.Dx(), frames)
	}

	cut := make([]*ebiten.Image, frames)
	for i := range cut {
		r := image.Rect(b.Min.X+i*width, b.Min.Y, b.Min.X+(i+1)*width, b.Max.Y)
		cut[i] = img.SubImage(r).(*ebiten.Image)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.sheets = append(l.sheets, cut)
	return assets.SpriteSheetHandle(len(l.sheets)), nil
}

// placeholderSheet draws frames as squares of alternating color.
func placeholderSheet(frames int) *ebiten.Image {
	img := ebiten.NewImage(placeholderFrame*frames, placeholderFrame)
	colors := []assets.Color{assets.RGBA8(219, 112, 147, 1), assets.RGBA8(147, 112, 219, 1)}
	for i := range frames {
		r := image.Rect(i*placeholderFrame, 0, (i+1)*placeholderFrame, placeholderFrame)
		img.SubImage(r).(*ebiten.Image).Fill(colors[i%len(colors)])
	}
	return img
}

// Image returns the texture behind h, or nil for an unknown handle.
func (l *Loader) Image(h assets.TextureHandle) *ebiten.Image {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !h.Valid() || int(h) > len(l.images) {
		return nil
	}
	return l.images[h-1]
}

// Font returns a face of the font behind h at size, creating it on first use. Returns
// nil for an unknown handle.
func (l *Loader) Font(h assets.FontHandle, size float32) willow.Font {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !h.Valid() || int(h) > len(l.fonts) || size <= 0 {
		return nil
	}

	key := faceKey{font: h, size: size}
	if face, ok := l.faces[key]; ok {
		return face
	}
	face, err := willow.LoadTTFFont(l.fonts[h-1], float64(size))
	if err != nil {
		// the data parsed in LoadFont
		panic("host: font " + fmt.Sprint(h) + " stopped parsing: " + err.Error())
	}
	l.faces[key] = face
	return face
}

// Frame returns one frame of the sheet behind h, or nil when either is out of range.
func (l *Loader) Frame(h assets.SpriteSheetHandle, frame int) *ebiten.Image {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !h.Valid() || int(h) > len(l.sheets) {
		return nil
	}
	frames := l.sheets[h-1]
	if frame < 0 || frame >= len(frames) {
		return nil
	}
	return frames[frame]
}

var (
	_ assets.Loader = (*Loader)(nil)
	_ Library       = (*Loader)(nil)
)
