// Package view maps between world space, where strokes are stored, and
// viewport space, where pixels are painted.
package view

import "LiveBoard/internal/state"

// Default zoom limits and wheel sensitivity.
const (
	DefaultMinScale  = 0.1
	DefaultMaxScale  = 10
	DefaultZoomSpeed = 500
)

// Transform is the local pan/zoom state of one client. It is never sent
// over the wire.
type Transform struct {
	Offset state.Point
	Scale  float64

	Width, Height float64 // viewport size in pixels

	MinScale  float64
	MaxScale  float64
	ZoomSpeed float64
}

// New returns an identity transform for a viewport of the given size.
func New(width, height float64) *Transform {
	return &Transform{
		Scale:     1,
		Width:     width,
		Height:    height,
		MinScale:  DefaultMinScale,
		MaxScale:  DefaultMaxScale,
		ZoomSpeed: DefaultZoomSpeed,
	}
}

// WorldToViewport converts a world position to viewport pixels.
func (t *Transform) WorldToViewport(p state.Point) state.Point {
	return state.Point{
		X: (p.X + t.Offset.X) * t.Scale,
		Y: (p.Y + t.Offset.Y) * t.Scale,
	}
}

// ViewportToWorld converts viewport pixels to a world position.
func (t *Transform) ViewportToWorld(p state.Point) state.Point {
	return state.Point{
		X: p.X/t.Scale - t.Offset.X,
		Y: p.Y/t.Scale - t.Offset.Y,
	}
}

// VisibleWorldSize returns how many world units fit in the viewport.
func (t *Transform) VisibleWorldSize() (w, h float64) {
	return t.Width / t.Scale, t.Height / t.Scale
}

// Resize updates the viewport size.
func (t *Transform) Resize(width, height float64) {
	t.Width, t.Height = width, height
}

// Pan shifts the view by a viewport-space delta.
func (t *Transform) Pan(dx, dy float64) {
	t.Offset.X += dx / t.Scale
	t.Offset.Y += dy / t.Scale
}

// Zoom applies one wheel step anchored at pointer (viewport pixels). A
// negative deltaY zooms in. The world point under the pointer stays put.
func (t *Transform) Zoom(pointer state.Point, deltaY float64) {
	if t.ZoomSpeed == 0 || t.Width == 0 || t.Height == 0 {
		return
	}
	amount := -deltaY / t.ZoomSpeed
	oldW, oldH := t.VisibleWorldSize()

	t.Scale = clamp(t.Scale*(1+amount), t.MinScale, t.MaxScale)

	newW, newH := t.VisibleWorldSize()
	t.Offset.X += (newW - oldW) * (pointer.X / t.Width)
	t.Offset.Y += (newH - oldH) * (pointer.Y / t.Height)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
