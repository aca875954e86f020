package export

import (
	"fmt"

	"LiveBoard/internal/render"
)

// PNG rasterizes the strokes of f, as seen through f.View, into a w x h
// image. Remote cursors are left out.
func PNG(path string, f render.Frame, w, h int) error {
	s := render.NewGGSurface(w, h)
	defer s.Close()

	f.Cursors = nil
	f.View.Resize(float64(w), float64(h))
	if err := render.Draw(s, f); err != nil {
		return fmt.Errorf("export png: %w", err)
	}
	if err := s.SavePNG(path); err != nil {
		return fmt.Errorf("write png %s: %w", path, err)
	}
	return nil
}
