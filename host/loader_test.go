package host_test

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/DoumanAsh/vn/assets"
	"github.com/DoumanAsh/vn/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func TestLoaderTextures(t *testing.T) {
	l := host.NewLoader()

	solid, err := l.SolidTexture(assets.RGBA8(128, 0, 128, 0.75))
	require.NoError(t, err)
	require.NotNil(t, l.Image(solid))
	assert.Equal(t, image.Rect(0, 0, 1, 1), l.Image(solid).Bounds())

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 3, 2))))
	decoded, err := l.DecodeTexture(buf.Bytes())
	require.NoError(t, err)
	assert.NotEqual(t, solid, decoded)
	assert.Equal(t, image.Rect(0, 0, 3, 2), l.Image(decoded).Bounds())

	assert.Nil(t, l.Image(0))
	assert.Nil(t, l.Image(decoded+1))
}

func TestLoaderTextureErrors(t *testing.T) {
	l := host.NewLoader()

	_, err := l.DecodeTexture([]byte("not a png"))
	var texErr *assets.TextureError
	require.True(t, errors.As(err, &texErr))
	assert.Equal(t, "memory", texErr.Source)

	missing := filepath.Join(t.TempDir(), "missing.png")
	_, err = l.LoadTextureFile(missing)
	require.True(t, errors.As(err, &texErr))
	assert.Equal(t, missing, texErr.Source)
}

func TestLoaderFonts(t *testing.T) {
	l := host.NewLoader()

	_, err := l.LoadFont([]byte("garbage"))
	assert.Error(t, err)

	h, err := l.LoadFont(goregular.TTF)
	require.NoError(t, err)
	face := l.Font(h, 20)
	require.NotNil(t, face)
	assert.Same(t, face, l.Font(h, 20), "faces are cached per size")
	assert.NotSame(t, face, l.Font(h, 40))
	assert.Greater(t, face.LineHeight(), 0.0)

	assert.Nil(t, l.Font(h, 0))
	assert.Nil(t, l.Font(h+1, 20))
}

func TestLoaderPlaceholderSheet(t *testing.T) {
	l := host.NewLoader()

	_, err := l.LoadSpriteSheet("", 0)
	assert.Error(t, err)

	h, err := l.LoadSpriteSheet("", 3)
	require.NoError(t, err)
	for i := range 3 {
		frame := l.Frame(h, i)
		require.NotNil(t, frame, "frame %d", i)
		assert.Equal(t, 64, frame.Bounds().Dx())
		assert.Equal(t, 64, frame.Bounds().Dy())
		assert.Equal(t, 64*i, frame.Bounds().Min.X)
	}
	assert.Nil(t, l.Frame(h, 3))
	assert.Nil(t, l.Frame(h+1, 0))
}
