package ui

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LiveBoard/internal/protocol"
	"LiveBoard/internal/render"
	"LiveBoard/internal/session"
)

type recorder struct{ sent []protocol.Message }

func (r *recorder) Send(m protocol.Message) { r.sent = append(r.sent, m) }

func mouse(x, y float32, b desktop.MouseButton) *desktop.MouseEvent {
	return &desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)}, Button: b}
}

func drag(x, y float32) *fyne.DragEvent {
	return &fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)}}
}

func newTestBoard(t *testing.T) (*BoardWidget, *recorder, *render.ManualScheduler) {
	t.Helper()
	test.NewTempApp(t)
	rec := &recorder{}
	sched := &render.ManualScheduler{}
	b := NewBoardWidget(session.Config{}, rec, sched)
	b.Resize(fyne.NewSize(200, 100))
	return b, rec, sched
}

func TestBoardWidgetDraws(t *testing.T) {
	b, rec, sched := newTestBoard(t)

	b.MouseDown(mouse(10, 10, desktop.MouseButtonPrimary))
	b.Dragged(drag(30, 30))
	b.MouseUp(mouse(30, 30, desktop.MouseButtonPrimary))
	b.DragEnd()

	require.Equal(t, 1, b.Session().Board().Len())
	var draws int
	for _, m := range rec.sent {
		if m.Type() == protocol.TypeDraw {
			draws++
		}
	}
	assert.Equal(t, 2, draws)

	sched.Flush()
	img := b.generate(200, 100)
	require.Equal(t, 200, img.Bounds().Dx())
	r, g, bl, _ := img.At(20, 20).RGBA()
	assert.Less(t, r+g+bl, uint32(3*0x4000), "ink along the stroke")
	r, g, bl, _ = img.At(150, 80).RGBA()
	assert.Equal(t, uint32(3*0xffff), r+g+bl, "background elsewhere")
}

func TestBoardWidgetPansAndZooms(t *testing.T) {
	b, rec, _ := newTestBoard(t)

	b.MouseDown(mouse(50, 50, desktop.MouseButtonSecondary))
	b.Dragged(drag(70, 40))
	b.MouseUp(mouse(70, 40, desktop.MouseButtonSecondary))
	assert.Zero(t, b.Session().Board().Len())
	assert.Equal(t, 20.0, b.Session().View().Offset.X)
	assert.Equal(t, -10.0, b.Session().View().Offset.Y)

	b.Scrolled(&fyne.ScrollEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(100, 50)}, Scrolled: fyne.NewDelta(0, 10)})
	assert.Greater(t, b.Session().View().Scale, 1.0)

	for _, m := range rec.sent {
		assert.NotEqual(t, protocol.TypeDraw, m.Type())
	}
}

func TestToolbarTracksHistory(t *testing.T) {
	b, _, _ := newTestBoard(t)
	w := test.NewWindow(b)
	defer w.Close()
	tb := NewToolbar(b, w)

	assert.True(t, tb.undo.Disabled())
	assert.True(t, tb.redo.Disabled())

	b.MouseDown(mouse(10, 10, desktop.MouseButtonPrimary))
	b.MouseUp(mouse(10, 10, desktop.MouseButtonPrimary))
	assert.False(t, tb.undo.Disabled())

	test.Tap(tb.undo)
	assert.Zero(t, b.Session().Board().Len())
	assert.True(t, tb.undo.Disabled())
	assert.False(t, tb.redo.Disabled())
}

func TestEraserToggle(t *testing.T) {
	b, _, _ := newTestBoard(t)
	w := test.NewWindow(b)
	defer w.Close()
	tb := NewToolbar(b, w)

	tb.setEraser(true)
	assert.True(t, b.Session().Brush().Eraser)
	tb.setEraser(false)
	assert.False(t, b.Session().Brush().Eraser)
}
