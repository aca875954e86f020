// Package session holds everything one client knows about a room and is
// the only place where local input and remote messages mutate it.
//
// A Session is not safe for concurrent use. Callers deliver pointer events,
// inbound messages and frames from a single goroutine.
package session

import (
	"image/color"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"LiveBoard/internal/history"
	"LiveBoard/internal/presence"
	"LiveBoard/internal/protocol"
	"LiveBoard/internal/render"
	"LiveBoard/internal/state"
	"LiveBoard/internal/view"
)

// Sender delivers outbound messages. Implementations drop messages when the
// channel is not open.
type Sender interface {
	Send(m protocol.Message)
}

// Config tunes a Session. Zero fields take the defaults.
type Config struct {
	CursorThrottle time.Duration
	MinScale       float64
	MaxScale       float64
	ZoomSpeed      float64
	Brush          state.Style
	Background     color.Color
}

// DefaultCursorThrottle is the minimum gap between two cursor messages.
const DefaultCursorThrottle = 60 * time.Millisecond

// DefaultBrush is the pen a new session starts with.
var DefaultBrush = state.Style{Color: "#000000", Width: 5}

// Session is the client-side aggregate for one room.
type Session struct {
	board    *state.Board
	history  *history.Manager
	presence *presence.Tracker
	view     *view.Transform
	engine   *render.Engine
	sender   Sender

	userID     string
	brush      state.Style
	background color.Color

	cursorLimiter *rate.Limiter
	now           func() time.Time

	drawing  bool
	panning  bool
	lastPos  state.Point
	onChange func()

	log *slog.Logger
}

// New creates a session. Each scheduled frame hands a consistent Frame to
// present.
func New(cfg Config, sender Sender, sched render.Scheduler, present func(render.Frame)) *Session {
	if cfg.CursorThrottle <= 0 {
		cfg.CursorThrottle = DefaultCursorThrottle
	}
	if cfg.Brush == (state.Style{}) {
		cfg.Brush = DefaultBrush
	}
	if cfg.Background == nil {
		cfg.Background = color.White
	}

	v := view.New(0, 0)
	if cfg.MinScale > 0 {
		v.MinScale = cfg.MinScale
	}
	if cfg.MaxScale > 0 {
		v.MaxScale = cfg.MaxScale
	}
	if cfg.ZoomSpeed > 0 {
		v.ZoomSpeed = cfg.ZoomSpeed
	}

	board := state.NewBoard()
	s := &Session{
		board:         board,
		history:       history.NewManager(board),
		presence:      presence.NewTracker(),
		view:          v,
		sender:        sender,
		brush:         cfg.Brush,
		background:    cfg.Background,
		cursorLimiter: rate.NewLimiter(rate.Every(cfg.CursorThrottle), 1),
		now:           time.Now,
		log:           slog.Default().With("component", "session"),
	}
	s.engine = render.NewEngine(sched, func() {
		if present != nil {
			present(s.Snapshot())
		}
	})
	return s
}

// SetClock replaces the time source used for cursor throttling.
func (s *Session) SetClock(now func() time.Time) { s.now = now }

// SetOnChange registers a callback fired when undo/redo availability may
// have changed.
func (s *Session) SetOnChange(fn func()) { s.onChange = fn }

// UserID returns the identity assigned by the relay, or "" before binding.
func (s *Session) UserID() string { return s.userID }

// Board exposes the underlying stroke model.
func (s *Session) Board() *state.Board { return s.board }

// Presence exposes the remote cursor map.
func (s *Session) Presence() *presence.Tracker { return s.presence }

// View exposes the local pan/zoom state.
func (s *Session) View() *view.Transform { return s.view }

// Brush returns the style applied to the next local stroke.
func (s *Session) Brush() state.Style { return s.brush }

// SetBrush changes the style for strokes started from now on.
func (s *Session) SetBrush(style state.Style) { s.brush = style }

// Resize updates the viewport size in pixels.
func (s *Session) Resize(w, h float64) {
	s.view.Resize(w, h)
	s.engine.RequestRedraw()
}

// Undo removes the newest local stroke and tells peers.
func (s *Session) Undo() {
	st, ok := s.history.Undo(s.userID)
	if !ok {
		return
	}
	s.send(protocol.Undo{ID: st.ID})
	s.changed()
}

// Redo restores the most recently undone local stroke and tells peers.
func (s *Session) Redo() {
	st, ok := s.history.Redo()
	if !ok {
		return
	}
	s.send(protocol.RedoFromStroke(st))
	s.changed()
}

func (s *Session) CanUndo() bool { return s.history.CanUndo(s.userID) }
func (s *Session) CanRedo() bool { return s.history.CanRedo() }

// Snapshot deep-copies the state a paint needs, so it can be used off the
// session goroutine.
func (s *Session) Snapshot() render.Frame {
	board := s.board.Strokes()
	f := render.Frame{
		Strokes:    make([]state.Stroke, 0, len(board)),
		Cursors:    s.presence.Cursors(),
		View:       *s.view,
		Background: s.background,
	}
	for _, st := range board {
		f.Strokes = append(f.Strokes, *st.Clone())
	}
	if a := s.board.Active(); a != nil {
		f.Active = a.Clone()
	}
	return f
}

func (s *Session) send(m protocol.Message) {
	if s.sender == nil {
		return
	}
	s.sender.Send(m)
}

// changed requests a redraw and notifies the toolbar.
func (s *Session) changed() {
	s.engine.RequestRedraw()
	if s.onChange != nil {
		s.onChange()
	}
}
