package render

import (
	"image/color"
	"strings"

	"github.com/gogpu/gg"
	"golang.org/x/image/colornames"
)

// Composite selects how painted pixels combine with existing content.
type Composite int

const (
	// SourceOver paints normally.
	SourceOver Composite = iota
	// DestinationOut cuts the painted shape out of existing content.
	DestinationOut
)

func (c Composite) String() string {
	switch c {
	case SourceOver:
		return "source-over"
	case DestinationOut:
		return "destination-out"
	default:
		return "unknown"
	}
}

// Surface is a 2D immediate-mode paint target measured in pixels. Fill and
// Stroke consume the current path.
type Surface interface {
	Size() (w, h float64)
	Clear(c color.Color)
	SetComposite(c Composite)

	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	QuadraticTo(cx, cy, x, y float64)
	// Arc adds a full circle of radius r centered at (x, y).
	Arc(x, y, r float64)

	SetFillColor(c color.Color)
	SetStrokeColor(c color.Color)
	SetLineWidth(w float64)
	Fill() error
	Stroke() error
}

// ParseColor accepts #rgb, #rgba, #rrggbb, #rrggbbaa and CSS color names.
// Anything else is black.
func ParseColor(s string) color.Color {
	s = strings.TrimSpace(s)
	if s == "" {
		return color.Black
	}
	if s[0] == '#' {
		switch len(s) {
		case 4, 5, 7, 9:
			if isHex(s[1:]) {
				return gg.Hex(s).Color()
			}
		}
		return color.Black
	}
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return c
	}
	return color.Black
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
