// Package presence keeps the latest cursor position of every remote
// participant for display.
package presence

import (
	"sort"
	"sync"

	"LiveBoard/internal/state"
)

// Cursor is the last known pointer position of one remote connection.
type Cursor struct {
	ConnectionID string
	Position     state.Point
	Color        string
}

// Tracker maps connection ids to cursors. Entries are overwritten on every
// update and are never evicted.
type Tracker struct {
	cursors map[string]Cursor
	mu      sync.RWMutex
}

func NewTracker() *Tracker {
	return &Tracker{cursors: make(map[string]Cursor)}
}

// Upsert records the cursor of connID, replacing any earlier entry.
func (t *Tracker) Upsert(connID string, pos state.Point, color string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cursors[connID] = Cursor{ConnectionID: connID, Position: pos, Color: color}
}

// Cursors returns all cursors ordered by connection id.
func (t *Tracker) Cursors() []Cursor {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Cursor, 0, len(t.cursors))
	for _, c := range t.cursors {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConnectionID < out[j].ConnectionID })
	return out
}

func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.cursors)
}
