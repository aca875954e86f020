package session

import (
	"errors"

	"LiveBoard/internal/protocol"
	"LiveBoard/internal/state"
)

// Button identifies the pointer button of a press.
type Button int

const (
	// ButtonPrimary draws.
	ButtonPrimary Button = iota
	// ButtonSecondary pans.
	ButtonSecondary
)

// PointerDown starts a stroke (primary) or a pan (secondary) at viewport
// position p.
func (s *Session) PointerDown(b Button, p state.Point) {
	switch b {
	case ButtonPrimary:
		world := s.view.ViewportToWorld(p)
		_, err := s.board.BeginLocalStroke(world, s.userID, s.brush)
		if err != nil {
			if errors.Is(err, state.ErrStrokeInProgress) {
				s.log.Debug("pointer down ignored", "error", err)
				return
			}
			s.log.Warn("begin stroke failed", "error", err)
			return
		}
		s.drawing = true
		s.panning = false
		s.sendPoint(s.board.Active(), world)
		s.engine.RequestRedraw()
	case ButtonSecondary:
		if s.drawing {
			return
		}
		s.panning = true
		s.lastPos = p
	}
}

// PointerMove handles motion to viewport position p: a throttled cursor
// update, then stroke growth or panning.
func (s *Session) PointerMove(p state.Point) {
	world := s.view.ViewportToWorld(p)

	if s.cursorLimiter.AllowN(s.now(), 1) {
		s.send(protocol.Cursor{X: world.X, Y: world.Y})
	}

	if s.drawing {
		if a := s.board.Active(); a != nil {
			s.board.AppendLocalPoint(world)
			s.sendPoint(a, world)
			s.engine.RequestRedraw()
		}
	}

	if s.panning {
		s.view.Pan(p.X-s.lastPos.X, p.Y-s.lastPos.Y)
		s.lastPos = p
		s.engine.RequestRedraw()
	}
}

// PointerUp ends the current stroke or pan. Finishing a stroke discards the
// local redo history.
func (s *Session) PointerUp() {
	if s.drawing {
		if _, ok := s.board.FinalizeLocalStroke(); ok {
			s.history.Invalidate(s.userID)
			s.changed()
		}
	}
	s.drawing = false
	s.panning = false
}

// Wheel zooms around viewport position p.
func (s *Session) Wheel(p state.Point, deltaY float64) {
	s.view.Zoom(p, deltaY)
	s.engine.RequestRedraw()
}

// Drawing reports whether a local stroke is in progress.
func (s *Session) Drawing() bool { return s.drawing }

func (s *Session) sendPoint(st *state.Stroke, world state.Point) {
	if st == nil {
		return
	}
	s.send(protocol.Draw{
		ID:       st.ID,
		UserID:   st.Owner,
		X:        world.X,
		Y:        world.Y,
		Color:    st.Style.Color,
		Width:    st.Style.Width,
		IsEraser: st.Style.Eraser,
	})
}
