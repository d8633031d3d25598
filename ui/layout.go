package ui

// frame is an element's placement in Y-up screen space: center point and size.
type frame struct {
	cx, cy, w, h float32
}

func screenFrame(screen ScreenDimensions) frame {
	return frame{cx: screen.Width / 2, cy: screen.Height / 2, w: screen.Width, h: screen.Height}
}

// place positions t inside parent.
func place(t *Transform, parent frame) frame {
	w, h := t.Width, t.Height
	switch t.Stretch.Mode {
	case StretchX:
		w = parent.w - 2*t.Stretch.XMargin
	case StretchY:
		h = parent.h - 2*t.Stretch.YMargin
	case StretchXY:
		w = parent.w - 2*t.Stretch.XMargin
		h = parent.h - 2*t.Stretch.YMargin
	}

	ax, ay := t.Anchor.Offset()
	return frame{
		cx: parent.cx + ax*parent.w + t.LocalX,
		cy: parent.cy + ay*parent.h + t.LocalY,
		w:  max(w, 0),
		h:  max(h, 0),
	}
}

// rect converts a frame to a top-left, Y-down rectangle.
func (f frame) rect(screen ScreenDimensions) Rect {
	return Rect{
		X:      f.cx - f.w/2,
		Y:      screen.Height - (f.cy + f.h/2),
		Width:  f.w,
		Height: f.h,
	}
}

// ComputeRect returns where t lands on a screen of the given size when its parent is the
// rectangle parent (top-left, Y-down). Pass the whole screen for root elements.
func ComputeRect(t *Transform, parent Rect, screen ScreenDimensions) Rect {
	pf := frame{
		cx: parent.X + parent.Width/2,
		cy: screen.Height - (parent.Y + parent.Height/2),
		w:  parent.Width,
		h:  parent.Height,
	}
	return place(t, pf).rect(screen)
}

// ScreenRect is the rectangle covering the whole screen.
func ScreenRect(screen ScreenDimensions) Rect {
	return Rect{Width: screen.Width, Height: screen.Height}
}
