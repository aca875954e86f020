package state

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("s%d", n)
	}
}

func ids(strokes []*Stroke) []string {
	out := make([]string, 0, len(strokes))
	for _, s := range strokes {
		out = append(out, s.ID)
	}
	return out
}

func TestLocalStrokeLifecycle(t *testing.T) {
	b := NewBoard()
	b.SetIDSource(sequentialIDs())
	style := Style{Color: "#ff0000", Width: 4}

	id, err := b.BeginLocalStroke(Point{1, 2}, "u1", style)
	require.NoError(t, err)
	assert.Equal(t, "s1", id)
	assert.Equal(t, 0, b.Len(), "in-progress stroke is not on the board yet")

	_, err = b.BeginLocalStroke(Point{0, 0}, "u1", style)
	assert.ErrorIs(t, err, ErrStrokeInProgress)

	b.AppendLocalPoint(Point{3, 4})
	s, ok := b.FinalizeLocalStroke()
	require.True(t, ok)
	assert.Equal(t, []Point{{1, 2}, {3, 4}}, s.Points)
	assert.Nil(t, b.Active())
	assert.Equal(t, []string{"s1"}, ids(b.Strokes()))

	got, ok := b.Get("s1")
	require.True(t, ok)
	assert.Same(t, s, got)
}

func TestAppendWithoutActiveStrokeIsNoop(t *testing.T) {
	b := NewBoard()
	b.AppendLocalPoint(Point{1, 1})
	_, ok := b.FinalizeLocalStroke()
	assert.False(t, ok)
	assert.Equal(t, 0, b.Len())
}

func TestApplyRemotePointCreatesLazily(t *testing.T) {
	b := NewBoard()
	style := Style{Color: "blue", Width: 3, Eraser: true}

	b.ApplyRemotePoint("s1", "u2", Point{0, 0}, style)
	b.ApplyRemotePoint("s1", "u2", Point{1, 1}, Style{Color: "ignored"})

	s, ok := b.Get("s1")
	require.True(t, ok)
	assert.Equal(t, "u2", s.Owner)
	assert.Equal(t, style, s.Style)
	assert.Equal(t, []Point{{0, 0}, {1, 1}}, s.Points)
}

func TestInterleavedRemotePointsRouteByID(t *testing.T) {
	b := NewBoard()
	b.ApplyRemotePoint("a", "u1", Point{0, 0}, Style{})
	b.ApplyRemotePoint("b", "u2", Point{10, 10}, Style{})
	b.ApplyRemotePoint("a", "u1", Point{1, 1}, Style{})
	b.ApplyRemotePoint("b", "u2", Point{11, 11}, Style{})

	a, _ := b.Get("a")
	bb, _ := b.Get("b")
	assert.Equal(t, []Point{{0, 0}, {1, 1}}, a.Points)
	assert.Equal(t, []Point{{10, 10}, {11, 11}}, bb.Points)
	assert.Equal(t, []string{"a", "b"}, ids(b.Strokes()))
}

func TestRemoveStrokeMissIsSilent(t *testing.T) {
	b := NewBoard()
	b.ApplyRemotePoint("a", "u1", Point{0, 0}, Style{})

	_, ok := b.RemoveStroke("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"a"}, ids(b.Strokes()))

	_, ok = b.RemoveStroke("a")
	assert.True(t, ok)
	_, ok = b.RemoveStroke("a")
	assert.False(t, ok)
	assert.Equal(t, 0, b.Len())
	_, found := b.Get("a")
	assert.False(t, found)
}

func TestReplaceStroke(t *testing.T) {
	b := NewBoard()
	b.ApplyRemotePoint("a", "u1", Point{0, 0}, Style{})
	b.ApplyRemotePoint("b", "u1", Point{0, 0}, Style{})

	pts := []Point{{5, 5}, {6, 6}}
	b.ReplaceStroke("a", "u1", pts, Style{Color: "red", Width: 2})
	pts[0] = Point{99, 99}

	a, _ := b.Get("a")
	assert.Equal(t, []Point{{5, 5}, {6, 6}}, a.Points, "points are copied")
	assert.Equal(t, []string{"a", "b"}, ids(b.Strokes()), "overwrite keeps position")

	b.ReplaceStroke("c", "u2", []Point{{1, 1}}, Style{})
	assert.Equal(t, []string{"a", "b", "c"}, ids(b.Strokes()))
}

func TestLastOwnedBy(t *testing.T) {
	b := NewBoard()
	b.ApplyRemotePoint("A", "user1", Point{}, Style{})
	b.ApplyRemotePoint("B", "user2", Point{}, Style{})
	b.ApplyRemotePoint("C", "user1", Point{}, Style{})

	s, ok := b.LastOwnedBy("user1")
	require.True(t, ok)
	assert.Equal(t, "C", s.ID)

	_, ok = b.LastOwnedBy("user3")
	assert.False(t, ok)
}

func TestStrokeClone(t *testing.T) {
	s := &Stroke{ID: "a", Points: []Point{{1, 1}}}
	c := s.Clone()
	c.Points[0] = Point{2, 2}
	assert.Equal(t, Point{1, 1}, s.Points[0])
}

func TestIDs(t *testing.T) {
	a, b := NewStrokeID(), NewStrokeID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)

	code := NewRoomCode()
	assert.Len(t, code, 6)
	assert.Regexp(t, `^[0-9A-F]{6}$`, code)
	assert.NotEmpty(t, NewUserID())
}

func TestAdopt(t *testing.T) {
	b := NewBoard()
	b.ApplyRemotePoint("A", "", Point{}, Style{})
	b.ApplyRemotePoint("B", "user2", Point{}, Style{})
	_, err := b.BeginLocalStroke(Point{}, "", Style{})
	require.NoError(t, err)

	assert.Equal(t, 1, b.Adopt("", "user1"))
	a, _ := b.Get("A")
	assert.Equal(t, "user1", a.Owner)
	other, _ := b.Get("B")
	assert.Equal(t, "user2", other.Owner)
	assert.Equal(t, "user1", b.Active().Owner)
}
