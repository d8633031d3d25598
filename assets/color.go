package assets

import "image/color"

// Color is a straight-alpha RGBA color with channels in [0, 1].
type Color [4]float32

// RGBA builds a color from channels in [0, 1]. Out of range values are clamped.
func RGBA(r, g, b, a float32) Color {
	return Color{clamp01(r), clamp01(g), clamp01(b), clamp01(a)}
}

// RGBA8 builds a color from 8-bit color channels and an alpha in [0, 1].
func RGBA8(r, g, b uint8, a float32) Color {
	return RGBA(float32(r)/255, float32(g)/255, float32(b)/255, a)
}

var (
	White       = Color{1, 1, 1, 1}
	Transparent = Color{}
)

func (c Color) R() float32 { return c[0] }
func (c Color) G() float32 { return c[1] }
func (c Color) B() float32 { return c[2] }
func (c Color) A() float32 { return c[3] }

// Lerp interpolates every channel towards to by t in [0, 1].
func (c Color) Lerp(to Color, t float32) Color {
	t = clamp01(t)
	var out Color
	for i := range c {
		out[i] = c[i] + (to[i]-c[i])*t
	}
	return out
}

// RGBA implements color.Color with alpha-premultiplied 16-bit channels.
func (c Color) RGBA() (r, g, b, a uint32) {
	alpha := clamp01(c[3])
	r = uint32(clamp01(c[0])*alpha*0xffff + 0.5)
	g = uint32(clamp01(c[1])*alpha*0xffff + 0.5)
	b = uint32(clamp01(c[2])*alpha*0xffff + 0.5)
	a = uint32(alpha*0xffff + 0.5)
	return r, g, b, a
}

var _ color.Color = Color{}

func clamp01(v float32) float32 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
