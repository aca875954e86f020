// Package export writes the board to PDF and PNG files.
package export

import (
	"fmt"
	"image/color"
	"math"

	"github.com/jung-kurt/gofpdf"

	"LiveBoard/internal/render"
	"LiveBoard/internal/state"
	"LiveBoard/internal/view"
)

const (
	pageW  = 210.0 // A4 portrait, mm
	pageH  = 297.0
	margin = 10.0
)

// PDF writes strokes onto a single A4 page, scaled to fit.
func PDF(path string, strokes []state.Stroke) error {
	p := gofpdf.New("P", "mm", "A4", "")
	p.AddPage()

	s := newPDFSurface(p, pageW, pageH)
	t := Fit(strokes, pageW, pageH, margin)
	for i := range strokes {
		if err := render.DrawStroke(s, &t, &strokes[i]); err != nil {
			return fmt.Errorf("export pdf: %w", err)
		}
	}
	if err := p.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf %s: %w", path, err)
	}
	return nil
}

// Fit returns a transform that centers the bounding box of strokes inside a
// w x h page with the given margin.
func Fit(strokes []state.Stroke, w, h, margin float64) view.Transform {
	t := view.New(w, h)

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, st := range strokes {
		pad := st.Style.Width / 2
		for _, p := range st.Points {
			minX = math.Min(minX, p.X-pad)
			minY = math.Min(minY, p.Y-pad)
			maxX = math.Max(maxX, p.X+pad)
			maxY = math.Max(maxY, p.Y+pad)
		}
	}
	if math.IsInf(minX, 1) {
		return *t
	}

	bw := math.Max(maxX-minX, 1)
	bh := math.Max(maxY-minY, 1)
	t.Scale = math.Min((w-2*margin)/bw, (h-2*margin)/bh)
	t.Offset = state.Point{
		X: (w-bw*t.Scale)/2/t.Scale - minX,
		Y: (h-bh*t.Scale)/2/t.Scale - minY,
	}
	return *t
}

type circle struct{ x, y, r float64 }

// pdfSurface adapts a gofpdf page to render.Surface. Erasing paints white,
// the page color.
type pdfSurface struct {
	pdf     *gofpdf.Fpdf
	w, h    float64
	erasing bool
	fill    color.Color
	stroke  color.Color
	circles []circle
	path    bool
}

func newPDFSurface(p *gofpdf.Fpdf, w, h float64) *pdfSurface {
	p.SetLineCapStyle("round")
	p.SetLineJoinStyle("round")
	return &pdfSurface{pdf: p, w: w, h: h, fill: color.Black, stroke: color.Black}
}

func (s *pdfSurface) Size() (float64, float64) { return s.w, s.h }

func (s *pdfSurface) Clear(c color.Color) {
	r, g, b := rgb(c)
	s.pdf.SetFillColor(r, g, b)
	s.pdf.Rect(0, 0, s.w, s.h, "F")
}

func (s *pdfSurface) SetComposite(c render.Composite) { s.erasing = c == render.DestinationOut }

func (s *pdfSurface) BeginPath() {
	s.circles = s.circles[:0]
	s.path = false
}

func (s *pdfSurface) MoveTo(x, y float64) {
	s.pdf.MoveTo(x, y)
	s.path = true
}

func (s *pdfSurface) LineTo(x, y float64) { s.pdf.LineTo(x, y) }

func (s *pdfSurface) QuadraticTo(cx, cy, x, y float64) { s.pdf.CurveTo(cx, cy, x, y) }

func (s *pdfSurface) Arc(x, y, r float64) { s.circles = append(s.circles, circle{x, y, r}) }

func (s *pdfSurface) SetFillColor(c color.Color) { s.fill = c }

func (s *pdfSurface) SetStrokeColor(c color.Color) { s.stroke = c }

func (s *pdfSurface) SetLineWidth(w float64) { s.pdf.SetLineWidth(w) }

func (s *pdfSurface) Fill() error {
	r, g, b := rgb(s.ink(s.fill))
	s.pdf.SetFillColor(r, g, b)
	s.flush("F")
	return s.pdf.Error()
}

func (s *pdfSurface) Stroke() error {
	r, g, b := rgb(s.ink(s.stroke))
	s.pdf.SetDrawColor(r, g, b)
	s.flush("D")
	return s.pdf.Error()
}

func (s *pdfSurface) flush(style string) {
	for _, c := range s.circles {
		s.pdf.Circle(c.x, c.y, c.r, style)
	}
	if s.path {
		s.pdf.DrawPath(style)
	}
	s.BeginPath()
}

func (s *pdfSurface) ink(c color.Color) color.Color {
	if s.erasing {
		return color.White
	}
	return c
}

func rgb(c color.Color) (int, int, int) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return int(n.R), int(n.G), int(n.B)
}
