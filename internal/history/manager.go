// Package history implements per-user undo and redo over a shared board.
//
// The undo side is implicit: it is the board itself filtered by owner. The
// redo side is an explicit local stack. Neither is synchronized; callers
// broadcast only the resulting removals and re-insertions.
package history

import (
	"LiveBoard/internal/state"
)

// Manager holds the local redo stack for one client.
type Manager struct {
	board *state.Board
	redo  []*state.Stroke
}

func NewManager(board *state.Board) *Manager {
	return &Manager{board: board}
}

// Undo removes the newest stroke owned by user from the board and pushes it
// onto the redo stack. Strokes of other users are skipped, so this is LIFO
// over the user's own strokes only.
func (m *Manager) Undo(user string) (*state.Stroke, bool) {
	s, ok := m.board.LastOwnedBy(user)
	if !ok {
		return nil, false
	}
	if _, ok := m.board.RemoveStroke(s.ID); !ok {
		return nil, false
	}
	m.redo = append(m.redo, s)
	return s, true
}

// Redo re-inserts the most recently undone stroke with its full point list.
func (m *Manager) Redo() (*state.Stroke, bool) {
	if len(m.redo) == 0 {
		return nil, false
	}
	s := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	return m.board.ReplaceStroke(s.ID, s.Owner, s.Points, s.Style), true
}

// Invalidate drops redo entries owned by user. It is called when user
// finalizes a new stroke.
func (m *Manager) Invalidate(user string) {
	kept := m.redo[:0]
	for _, s := range m.redo {
		if s.Owner != user {
			kept = append(kept, s)
		}
	}
	for i := len(kept); i < len(m.redo); i++ {
		m.redo[i] = nil
	}
	m.redo = kept
}

// Adopt re-owns strokes of from, on the board and on the redo stack, to
// owner.
func (m *Manager) Adopt(from, owner string) {
	m.board.Adopt(from, owner)
	for _, s := range m.redo {
		if s.Owner == from {
			s.Owner = owner
		}
	}
}

// CanUndo reports whether user has a stroke on the board.
func (m *Manager) CanUndo(user string) bool {
	_, ok := m.board.LastOwnedBy(user)
	return ok
}

func (m *Manager) CanRedo() bool {
	return len(m.redo) > 0
}

// RedoLen returns the depth of the redo stack.
func (m *Manager) RedoLen() int {
	return len(m.redo)
}
