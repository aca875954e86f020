package state

import (
	"errors"
	"log/slog"
	"sync"
)

// ErrStrokeInProgress is returned when a local stroke is started while
// another one is still active.
var ErrStrokeInProgress = errors.New("local stroke already in progress")

// Board holds the finalized strokes of a room in paint order, the local
// in-progress stroke, and an index from stroke id to stroke.
type Board struct {
	strokes []*Stroke
	index   map[string]*Stroke
	active  *Stroke
	newID   func() string
	log     *slog.Logger
	mu      sync.RWMutex
}

// NewBoard creates an empty board.
func NewBoard() *Board {
	return &Board{
		strokes: make([]*Stroke, 0),
		index:   make(map[string]*Stroke),
		newID:   NewStrokeID,
		log:     slog.Default().With("component", "board"),
	}
}

// SetIDSource replaces the stroke id generator. Tests use it to get
// predictable ids.
func (b *Board) SetIDSource(fn func() string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.newID = fn
}

// BeginLocalStroke starts the local in-progress stroke with its first point.
func (b *Board) BeginLocalStroke(p Point, owner string, style Style) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.active != nil {
		return "", ErrStrokeInProgress
	}
	b.active = &Stroke{
		ID:     b.newID(),
		Owner:  owner,
		Points: []Point{p},
		Style:  style,
	}
	return b.active.ID, nil
}

// AppendLocalPoint extends the in-progress stroke. It does nothing when no
// local stroke is active.
func (b *Board) AppendLocalPoint(p Point) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active == nil {
		return
	}
	b.active.AddPoint(p)
}

// FinalizeLocalStroke moves the in-progress stroke onto the board.
func (b *Board) FinalizeLocalStroke() (*Stroke, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.active
	if s == nil {
		return nil, false
	}
	b.active = nil
	b.insert(s)
	return s, true
}

// Active returns the local in-progress stroke, or nil.
func (b *Board) Active() *Stroke {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.active
}

// ApplyRemotePoint appends a point to stroke id, creating the stroke with
// the given owner and style if this is the first point seen for it.
func (b *Board) ApplyRemotePoint(id, owner string, p Point, style Style) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.index[id]
	if !ok {
		s = &Stroke{ID: id, Owner: owner, Style: style}
		b.insert(s)
		b.log.Debug("remote stroke created", "id", id, "owner", owner)
	}
	s.AddPoint(p)
}

// RemoveStroke deletes stroke id. A miss is not an error.
func (b *Board) RemoveStroke(id string) (*Stroke, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.index[id]
	if !ok {
		return nil, false
	}
	delete(b.index, id)
	for i, cur := range b.strokes {
		if cur == s {
			b.strokes = append(b.strokes[:i], b.strokes[i+1:]...)
			break
		}
	}
	b.log.Debug("stroke removed", "id", id)
	return s, true
}

// ReplaceStroke stores a complete stroke in one step. An existing stroke
// with the same id is overwritten in place and keeps its paint position.
func (b *Board) ReplaceStroke(id, owner string, points []Point, style Style) *Stroke {
	b.mu.Lock()
	defer b.mu.Unlock()

	pts := make([]Point, len(points))
	copy(pts, points)

	if s, ok := b.index[id]; ok {
		s.Owner = owner
		s.Points = pts
		s.Style = style
		return s
	}
	s := &Stroke{ID: id, Owner: owner, Points: pts, Style: style}
	b.insert(s)
	return s
}

// Get looks a stroke up by id.
func (b *Board) Get(id string) (*Stroke, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.index[id]
	return s, ok
}

// Strokes returns the finalized strokes in paint order.
func (b *Board) Strokes() []*Stroke {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*Stroke, len(b.strokes))
	copy(out, b.strokes)
	return out
}

// Len returns the number of finalized strokes.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.strokes)
}

// LastOwnedBy returns the most recently inserted stroke owned by owner.
func (b *Board) LastOwnedBy(owner string) (*Stroke, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for i := len(b.strokes) - 1; i >= 0; i-- {
		if b.strokes[i].Owner == owner {
			return b.strokes[i], true
		}
	}
	return nil, false
}

func (b *Board) insert(s *Stroke) {
	b.strokes = append(b.strokes, s)
	b.index[s.ID] = s
}

// Adopt hands every stroke owned by from to owner and returns how many
// changed hands.
func (b *Board) Adopt(from, owner string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, s := range b.strokes {
		if s.Owner == from {
			s.Owner = owner
			n++
		}
	}
	if b.active != nil && b.active.Owner == from {
		b.active.Owner = owner
	}
	return n
}
