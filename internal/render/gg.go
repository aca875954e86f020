package render

import (
	"image"
	"image/color"

	"github.com/gogpu/gg"
)

// GGSurface paints onto an in-memory gg context.
//
// gg has no destination-out operator, so erasure is painted with the last
// clear color. On the opaque board this matches cutting back to background.
type GGSurface struct {
	dc         *gg.Context
	background gg.RGBA
	composite  Composite
	fill       gg.RGBA
	stroke     gg.RGBA
}

var _ Surface = (*GGSurface)(nil)

// NewGGSurface allocates a w x h pixel surface.
func NewGGSurface(w, h int) *GGSurface {
	dc := gg.NewContext(w, h)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	return &GGSurface{
		dc:         dc,
		background: gg.White,
		fill:       gg.Black,
		stroke:     gg.Black,
	}
}

func (s *GGSurface) Size() (float64, float64) {
	return float64(s.dc.Width()), float64(s.dc.Height())
}

func (s *GGSurface) Clear(c color.Color) {
	s.background = gg.FromColor(c)
	s.dc.ClearWithColor(s.background)
}

func (s *GGSurface) SetComposite(c Composite) { s.composite = c }
func (s *GGSurface) BeginPath() { s.dc.ClearPath() }
func (s *GGSurface) MoveTo(x, y float64) { s.dc.MoveTo(x, y) }
func (s *GGSurface) LineTo(x, y float64) { s.dc.LineTo(x, y) }
func (s *GGSurface) Arc(x, y, r float64) { s.dc.DrawCircle(x, y, r) }
func (s *GGSurface) SetLineWidth(w float64) { s.dc.SetLineWidth(w) }

func (s *GGSurface) QuadraticTo(cx, cy, x, y float64) {
	s.dc.QuadraticTo(cx, cy, x, y)
}

func (s *GGSurface) SetFillColor(c color.Color) { s.fill = gg.FromColor(c) }
func (s *GGSurface) SetStrokeColor(c color.Color) { s.stroke = gg.FromColor(c) }

func (s *GGSurface) Fill() error {
	s.dc.SetFillBrush(gg.Solid(s.paint(s.fill)))
	return s.dc.Fill()
}

func (s *GGSurface) Stroke() error {
	s.dc.SetStrokeBrush(gg.Solid(s.paint(s.stroke)))
	return s.dc.Stroke()
}

// Image returns the rendered pixels.
func (s *GGSurface) Image() image.Image {
	return s.dc.Image()
}

// SavePNG writes the rendered pixels to path.
func (s *GGSurface) SavePNG(path string) error {
	return s.dc.SavePNG(path)
}

func (s *GGSurface) Close() error {
	return s.dc.Close()
}

func (s *GGSurface) paint(c gg.RGBA) gg.RGBA {
	if s.composite == DestinationOut {
		return s.background
	}
	return c
}
