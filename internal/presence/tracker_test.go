package presence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"LiveBoard/internal/state"
)

func TestUpsertOverwrites(t *testing.T) {
	tr := NewTracker()
	tr.Upsert("c2", state.Point{X: 1, Y: 1}, "#111111")
	tr.Upsert("c1", state.Point{X: 2, Y: 2}, "#222222")
	tr.Upsert("c2", state.Point{X: 3, Y: 3}, "#333333")

	assert.Equal(t, 2, tr.Len())
	assert.Equal(t, []Cursor{
		{ConnectionID: "c1", Position: state.Point{X: 2, Y: 2}, Color: "#222222"},
		{ConnectionID: "c2", Position: state.Point{X: 3, Y: 3}, Color: "#333333"},
	}, tr.Cursors())
}
