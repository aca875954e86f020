package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LiveBoard/internal/protocol"
	"LiveBoard/internal/render"
	"LiveBoard/internal/state"
)

type fakeSender struct {
	sent []protocol.Message
}

func (f *fakeSender) Send(m protocol.Message) { f.sent = append(f.sent, m) }

func (f *fakeSender) ofType(t protocol.Type) []protocol.Message {
	var out []protocol.Message
	for _, m := range f.sent {
		if m.Type() == t {
			out = append(out, m)
		}
	}
	return out
}

type harness struct {
	s      *Session
	sender *fakeSender
	sched  *render.ManualScheduler
	frames []render.Frame
	clock  time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		sender: &fakeSender{},
		sched:  &render.ManualScheduler{},
		clock:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	h.s = New(Config{}, h.sender, h.sched, func(f render.Frame) { h.frames = append(h.frames, f) })
	h.s.SetClock(func() time.Time { return h.clock })
	h.s.Resize(800, 600)

	n := 0
	h.s.Board().SetIDSource(func() string {
		n++
		return fmt.Sprintf("local%d", n)
	})
	return h
}

func (h *harness) receive(t *testing.T, raw string) {
	t.Helper()
	require.NoError(t, h.s.HandleMessage([]byte(raw)))
}

func (h *harness) stroke(pts ...state.Point) {
	h.s.PointerDown(ButtonPrimary, pts[0])
	for _, p := range pts[1:] {
		h.clock = h.clock.Add(5 * time.Millisecond)
		h.s.PointerMove(p)
	}
	h.s.PointerUp()
}

func boardIDs(s *Session) []string {
	var out []string
	for _, st := range s.Board().Strokes() {
		out = append(out, st.ID)
	}
	return out
}

func TestConnectedRequestsIdentity(t *testing.T) {
	h := newHarness(t)
	h.s.Connected()
	require.Len(t, h.sender.sent, 1)
	assert.Equal(t, protocol.GetUserID{}, h.sender.sent[0])

	h.receive(t, `{"type":"userId","userId":"user1"}`)
	assert.Equal(t, "user1", h.s.UserID())
}

func TestLocalStrokeIsOptimisticAndStreamed(t *testing.T) {
	h := newHarness(t)
	h.receive(t, `{"type":"userId","userId":"user1"}`)
	h.s.SetBrush(state.Style{Color: "#ff0000", Width: 3})

	h.s.PointerDown(ButtonPrimary, state.Point{X: 10, Y: 10})
	require.NotNil(t, h.s.Board().Active(), "applied before any acknowledgment")
	assert.True(t, h.s.Drawing())

	h.s.PointerMove(state.Point{X: 20, Y: 20})
	h.s.SetBrush(state.Style{Color: "#00ff00", Width: 9})
	h.s.PointerMove(state.Point{X: 30, Y: 30})

	draws := h.sender.ofType(protocol.TypeDraw)
	require.Len(t, draws, 3, "one message per point, first point included")
	for i, m := range draws {
		d := m.(protocol.Draw)
		assert.Equal(t, "local1", d.ID)
		assert.Equal(t, "user1", d.UserID)
		assert.Equal(t, "#ff0000", d.Color, "style is fixed at stroke start")
		assert.Equal(t, float64(10*(i+1)), d.X)
	}

	h.s.PointerUp()
	assert.Nil(t, h.s.Board().Active())
	assert.Equal(t, []string{"local1"}, boardIDs(h.s))
	st, _ := h.s.Board().Get("local1")
	assert.Len(t, st.Points, 3)
}

func TestLazyRemoteCreation(t *testing.T) {
	h := newHarness(t)
	h.receive(t, `{"type":"draw","id":"s1","userId":"user2","x":0,"y":0,"color":"#123456","width":4,"isEraser":false}`)
	h.receive(t, `{"type":"draw","id":"s1","userId":"user2","x":1,"y":1,"color":"#123456","width":4,"isEraser":false}`)

	st, ok := h.s.Board().Get("s1")
	require.True(t, ok)
	assert.Equal(t, "user2", st.Owner)
	assert.Equal(t, state.Style{Color: "#123456", Width: 4}, st.Style)
	assert.Equal(t, []state.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}, st.Points)
}

func TestUndoScopeAndRedoInvalidation(t *testing.T) {
	h := newHarness(t)
	h.receive(t, `{"type":"userId","userId":"user1"}`)

	h.stroke(state.Point{X: 0, Y: 0}, state.Point{X: 1, Y: 1}) // local1 = A
	h.receive(t, `{"type":"draw","id":"B","userId":"user2","x":5,"y":5,"color":"#000","width":2,"isEraser":false}`)
	h.stroke(state.Point{X: 2, Y: 2}, state.Point{X: 3, Y: 3}) // local2 = C
	require.Equal(t, []string{"local1", "B", "local2"}, boardIDs(h.s))

	h.s.Undo()
	assert.Equal(t, []string{"local1", "B"}, boardIDs(h.s))
	assert.True(t, h.s.CanRedo())
	undos := h.sender.ofType(protocol.TypeUndo)
	require.Len(t, undos, 1)
	assert.Equal(t, protocol.Undo{ID: "local2"}, undos[0])

	h.stroke(state.Point{X: 7, Y: 7}) // D
	assert.False(t, h.s.CanRedo(), "new work discards redo history")
	h.s.Redo()
	assert.Empty(t, h.sender.ofType(protocol.TypeRedo))
	assert.Equal(t, []string{"local1", "B", "local3"}, boardIDs(h.s))
}

func TestRedoBroadcastsWholeStroke(t *testing.T) {
	h := newHarness(t)
	h.receive(t, `{"type":"userId","userId":"user1"}`)
	h.s.SetBrush(state.Style{Color: "#abcdef", Width: 6, Eraser: true})
	h.stroke(state.Point{X: 0, Y: 0}, state.Point{X: 4, Y: 0}, state.Point{X: 8, Y: 0})

	h.s.Undo()
	assert.Empty(t, boardIDs(h.s))
	h.s.Redo()
	assert.Equal(t, []string{"local1"}, boardIDs(h.s))

	redos := h.sender.ofType(protocol.TypeRedo)
	require.Len(t, redos, 1)
	assert.Equal(t, protocol.Redo{
		ID:       "local1",
		UserID:   "user1",
		Points:   []state.Point{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 8, Y: 0}},
		Color:    "#abcdef",
		Width:    6,
		IsEraser: true,
	}, redos[0])
}

func TestUndoWithoutOwnStrokes(t *testing.T) {
	h := newHarness(t)
	h.receive(t, `{"type":"userId","userId":"user1"}`)
	h.receive(t, `{"type":"draw","id":"B","userId":"user2","x":5,"y":5,"color":"#000","width":2,"isEraser":false}`)
	assert.False(t, h.s.CanUndo())
	h.s.Undo()
	assert.Equal(t, []string{"B"}, boardIDs(h.s))
	assert.Empty(t, h.sender.ofType(protocol.TypeUndo))
}

func TestRemoteUndoAndRedo(t *testing.T) {
	h := newHarness(t)
	h.receive(t, `{"type":"draw","id":"s1","userId":"user2","x":0,"y":0,"color":"#000","width":2,"isEraser":false}`)
	h.receive(t, `{"type":"draw","id":"s2","userId":"user3","x":0,"y":0,"color":"#000","width":2,"isEraser":false}`)

	h.receive(t, `{"type":"undo","id":"s1","userId":"user3"}`)
	assert.Equal(t, []string{"s1", "s2"}, boardIDs(h.s), "only the owner may remove")

	h.receive(t, `{"type":"undo","id":"s1","userId":"user2"}`)
	assert.Equal(t, []string{"s2"}, boardIDs(h.s))

	h.receive(t, `{"type":"undo","id":"s1"}`)
	h.receive(t, `{"type":"undo","id":"never-seen"}`)
	assert.Equal(t, []string{"s2"}, boardIDs(h.s), "misses are silent")

	h.receive(t, `{"type":"redo","id":"s1","userId":"user2","points":[{"x":1,"y":1},{"x":2,"y":2}],"color":"red","width":3,"isEraser":false}`)
	assert.Equal(t, []string{"s2", "s1"}, boardIDs(h.s))
	st, _ := h.s.Board().Get("s1")
	assert.Len(t, st.Points, 2)
}

func TestCursorThrottle(t *testing.T) {
	h := newHarness(t)
	h.s.PointerMove(state.Point{X: 1, Y: 1})
	h.clock = h.clock.Add(10 * time.Millisecond)
	h.s.PointerMove(state.Point{X: 2, Y: 2})
	h.clock = h.clock.Add(10 * time.Millisecond)
	h.s.PointerMove(state.Point{X: 3, Y: 3})
	h.clock = h.clock.Add(DefaultCursorThrottle)
	h.s.PointerMove(state.Point{X: 4, Y: 4})

	cursors := h.sender.ofType(protocol.TypeCursor)
	require.Len(t, cursors, 2)
	assert.Equal(t, protocol.Cursor{X: 1, Y: 1}, cursors[0])
	assert.Equal(t, protocol.Cursor{X: 4, Y: 4}, cursors[1])
}

func TestCursorMessagesCarryWorldCoordinates(t *testing.T) {
	h := newHarness(t)
	h.s.View().Scale = 2
	h.s.PointerMove(state.Point{X: 100, Y: 50})
	cursors := h.sender.ofType(protocol.TypeCursor)
	require.Len(t, cursors, 1)
	assert.Equal(t, protocol.Cursor{X: 50, Y: 25}, cursors[0])
}

func TestRemoteCursorPresence(t *testing.T) {
	h := newHarness(t)
	h.receive(t, `{"type":"cursor","x":1,"y":2,"connectionId":"c1","color":"#ff0000"}`)
	h.receive(t, `{"type":"cursor","x":3,"y":4,"connectionId":"c1","color":"#ff0000"}`)
	require.Equal(t, 1, h.s.Presence().Len())
	assert.Equal(t, state.Point{X: 3, Y: 4}, h.s.Presence().Cursors()[0].Position)
}

func TestPanWithSecondaryButton(t *testing.T) {
	h := newHarness(t)
	h.s.PointerDown(ButtonSecondary, state.Point{X: 100, Y: 100})
	h.s.PointerMove(state.Point{X: 150, Y: 80})
	h.s.PointerUp()
	assert.Equal(t, state.Point{X: 50, Y: -20}, h.s.View().Offset)
	assert.Empty(t, h.sender.ofType(protocol.TypeDraw))
	assert.Zero(t, h.s.Board().Len())
}

func TestWheelZooms(t *testing.T) {
	h := newHarness(t)
	h.s.Wheel(state.Point{X: 400, Y: 300}, -250)
	assert.InDelta(t, 1.5, h.s.View().Scale, 1e-9)
}

func TestRedrawsCoalescePerFrame(t *testing.T) {
	h := newHarness(t)
	h.sched.Flush()
	h.frames = nil

	for i := 0; i < 20; i++ {
		h.receive(t, fmt.Sprintf(`{"type":"draw","id":"s1","userId":"u","x":%d,"y":0,"color":"#000","width":1,"isEraser":false}`, i))
		h.receive(t, fmt.Sprintf(`{"type":"cursor","x":%d,"y":0,"connectionId":"c","color":"#000"}`, i))
	}
	assert.Empty(t, h.frames)
	h.sched.Flush()
	require.Len(t, h.frames, 1)
	require.Len(t, h.frames[0].Strokes, 1)
	assert.Len(t, h.frames[0].Strokes[0].Points, 20)
	assert.Len(t, h.frames[0].Cursors, 1)
}

func TestSnapshotIncludesActiveStroke(t *testing.T) {
	h := newHarness(t)
	h.s.PointerDown(ButtonPrimary, state.Point{X: 1, Y: 1})
	f := h.s.Snapshot()
	require.NotNil(t, f.Active)
	assert.Equal(t, "local1", f.Active.ID)
	assert.Empty(t, f.Strokes)

	h.s.PointerMove(state.Point{X: 2, Y: 2})
	assert.Len(t, f.Active.Points, 1, "snapshot is not affected by later input")
}

func TestSecondPointerDownWhileDrawingIgnored(t *testing.T) {
	h := newHarness(t)
	h.s.PointerDown(ButtonPrimary, state.Point{X: 1, Y: 1})
	h.s.PointerDown(ButtonPrimary, state.Point{X: 9, Y: 9})
	h.s.PointerUp()
	assert.Equal(t, []string{"local1"}, boardIDs(h.s))
}

func TestMalformedMessage(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.s.HandleMessage([]byte(`{"type":"explode"}`)), protocol.ErrUnknownType)
	assert.Error(t, h.s.HandleMessage([]byte(`{`)))
	assert.Zero(t, h.s.Board().Len())
}

func TestNilSenderDropsSilently(t *testing.T) {
	s := New(Config{}, nil, render.ImmediateScheduler{}, nil)
	s.Resize(100, 100)
	s.Connected()
	s.PointerDown(ButtonPrimary, state.Point{X: 1, Y: 1})
	s.PointerMove(state.Point{X: 2, Y: 2})
	s.PointerUp()
	s.Undo()
	s.Redo()
	assert.Equal(t, 1, s.Board().Len())
}

func TestSnapshotDoesNotShareBoardPoints(t *testing.T) {
	h := newHarness(t)
	h.stroke(state.Point{X: 1, Y: 1}, state.Point{X: 2, Y: 2})
	f := h.s.Snapshot()
	f.Strokes[0].Points[0] = state.Point{X: 99, Y: 99}

	st, _ := h.s.Board().Get("local1")
	assert.Equal(t, state.Point{X: 1, Y: 1}, st.Points[0])
}

func TestReconnectWithResumedIdentityKeepsUndo(t *testing.T) {
	h := newHarness(t)
	h.s.Connected()
	h.receive(t, `{"type":"userId","userId":"conn-a"}`)
	h.stroke(state.Point{X: 0, Y: 0}, state.Point{X: 1, Y: 1})

	h.s.Connected()
	h.receive(t, `{"type":"userId","userId":"conn-a"}`)
	require.True(t, h.s.CanUndo())

	h.s.Undo()
	assert.Empty(t, boardIDs(h.s))
	assert.Equal(t, []protocol.Message{protocol.Undo{ID: "local1"}}, h.sender.ofType(protocol.TypeUndo))
}

func TestStrokesBeforeBindingAreAdopted(t *testing.T) {
	h := newHarness(t)
	h.stroke(state.Point{X: 0, Y: 0})
	h.receive(t, `{"type":"userId","userId":"user1"}`)

	st, _ := h.s.Board().Get("local1")
	assert.Equal(t, "user1", st.Owner)
	require.True(t, h.s.CanUndo())
	h.s.Undo()
	assert.Empty(t, boardIDs(h.s))
}

func TestPeerAppliesUndoAfterOwnerReconnects(t *testing.T) {
	h := newHarness(t)
	h.receive(t, `{"type":"userId","userId":"me"}`)
	h.receive(t, `{"type":"draw","id":"x","userId":"conn-a","x":0,"y":0,"color":"#000","width":2,"isEraser":false}`)

	// The relay stamps the resumed identity, so it still matches the owner.
	h.receive(t, `{"type":"undo","id":"x","userId":"conn-a"}`)
	assert.Empty(t, boardIDs(h.s))
}
