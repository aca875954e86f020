package render

import (
	"fmt"
	"image/color"
	"math"

	"LiveBoard/internal/presence"
	"LiveBoard/internal/state"
	"LiveBoard/internal/view"
)

const (
	cursorRadius       = 8
	cursorOutlineWidth = 2
)

var cursorOutline = color.White

// Frame is a consistent copy of everything a paint needs.
type Frame struct {
	Strokes    []state.Stroke
	Active     *state.Stroke
	Cursors    []presence.Cursor
	View       view.Transform
	Background color.Color
}

// Draw paints f onto s: board strokes in order, the active stroke last,
// then remote cursors.
func Draw(s Surface, f Frame) error {
	bg := f.Background
	if bg == nil {
		bg = color.White
	}
	s.Clear(bg)
	s.SetComposite(SourceOver)

	for i := range f.Strokes {
		if err := DrawStroke(s, &f.View, &f.Strokes[i]); err != nil {
			return err
		}
	}
	if f.Active != nil {
		if err := DrawStroke(s, &f.View, f.Active); err != nil {
			return err
		}
	}
	for _, c := range f.Cursors {
		if err := drawCursor(s, &f.View, c); err != nil {
			return err
		}
	}
	return nil
}

// DrawStroke paints one stroke. A single point is a disk of diameter
// width*scale; two or more points are one smoothed path.
func DrawStroke(s Surface, t *view.Transform, st *state.Stroke) error {
	if len(st.Points) == 0 {
		return nil
	}
	if st.Style.Eraser {
		s.SetComposite(DestinationOut)
		defer s.SetComposite(SourceOver)
	}

	col := ParseColor(st.Style.Color)
	if len(st.Points) == 1 {
		p := t.WorldToViewport(st.Points[0])
		s.BeginPath()
		s.Arc(p.X, p.Y, st.Style.Width*t.Scale/2)
		s.SetFillColor(col)
		if err := s.Fill(); err != nil {
			return fmt.Errorf("fill dot %s: %w", st.ID, err)
		}
		return nil
	}

	s.BeginPath()
	s.SetStrokeColor(col)
	s.SetLineWidth(st.Style.Width * t.Scale)

	first := t.WorldToViewport(st.Points[0])
	s.MoveTo(first.X, first.Y)
	for i := 1; i < len(st.Points)-1; i++ {
		p1 := t.WorldToViewport(st.Points[i])
		p2 := t.WorldToViewport(st.Points[i+1])
		s.QuadraticTo(p1.X, p1.Y, (p1.X+p2.X)/2, (p1.Y+p2.Y)/2)
	}
	last := t.WorldToViewport(st.Points[len(st.Points)-1])
	s.LineTo(last.X, last.Y)

	if err := s.Stroke(); err != nil {
		return fmt.Errorf("stroke path %s: %w", st.ID, err)
	}
	return nil
}

func drawCursor(s Surface, t *view.Transform, c presence.Cursor) error {
	p := t.WorldToViewport(c.Position)
	if math.IsNaN(p.X) || math.IsNaN(p.Y) {
		return nil
	}
	s.BeginPath()
	s.Arc(p.X, p.Y, cursorRadius)
	s.SetFillColor(ParseColor(c.Color))
	if err := s.Fill(); err != nil {
		return fmt.Errorf("fill cursor %s: %w", c.ConnectionID, err)
	}

	s.BeginPath()
	s.Arc(p.X, p.Y, cursorRadius)
	s.SetStrokeColor(cursorOutline)
	s.SetLineWidth(cursorOutlineWidth)
	if err := s.Stroke(); err != nil {
		return fmt.Errorf("outline cursor %s: %w", c.ConnectionID, err)
	}
	return nil
}
