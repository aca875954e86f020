package ui

import (
	"image"
	"log/slog"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"LiveBoard/internal/render"
	"LiveBoard/internal/session"
	"LiveBoard/internal/state"
)

// wheelFactor converts fyne scroll deltas to wheel units.
const wheelFactor = 5

// BoardWidget shows a session on a raster and feeds it pointer input.
type BoardWidget struct {
	widget.BaseWidget

	session *session.Session
	raster  *canvas.Raster

	surface *render.GGSurface
	img     image.Image
	mu      sync.Mutex

	log *slog.Logger
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ fyne.Scrollable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ desktop.Hoverable = (*BoardWidget)(nil)

// NewBoardWidget creates the widget and the session behind it. Frames are
// scheduled through sched.
func NewBoardWidget(cfg session.Config, sender session.Sender, sched render.Scheduler) *BoardWidget {
	b := &BoardWidget{log: slog.Default().With("component", "board")}
	b.session = session.New(cfg, sender, sched, b.present)
	b.raster = canvas.NewRaster(b.generate)
	b.ExtendBaseWidget(b)
	return b
}

// Session returns the session displayed by the widget.
func (b *BoardWidget) Session() *session.Session { return b.session }

// present paints one frame. It runs on the fyne goroutine.
func (b *BoardWidget) present(f render.Frame) {
	px := b.pixelScale()
	w := int(f.View.Width * px)
	h := int(f.View.Height * px)
	if w <= 0 || h <= 0 {
		return
	}
	f.View.Scale *= px
	f.View.Width, f.View.Height = float64(w), float64(h)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.surface == nil || b.img == nil || b.img.Bounds().Dx() != w || b.img.Bounds().Dy() != h {
		if b.surface != nil {
			b.surface.Close()
		}
		b.surface = render.NewGGSurface(w, h)
	}
	if err := render.Draw(b.surface, f); err != nil {
		b.log.Warn("paint failed", "error", err)
	}
	b.img = b.surface.Image()
	b.raster.Refresh()
}

func (b *BoardWidget) generate(w, h int) image.Image {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.img == nil {
		return image.NewRGBA(image.Rect(0, 0, w, h))
	}
	return b.img
}

func (b *BoardWidget) pixelScale() float64 {
	app := fyne.CurrentApp()
	if app == nil {
		return 1
	}
	if c := app.Driver().CanvasForObject(b); c != nil && c.Scale() > 0 {
		return float64(c.Scale())
	}
	return 1
}

func (b *BoardWidget) Resize(size fyne.Size) {
	b.BaseWidget.Resize(size)
	b.session.Resize(float64(size.Width), float64(size.Height))
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(b.raster)
}

func (b *BoardWidget) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	switch e.Button {
	case desktop.MouseButtonPrimary:
		b.session.PointerDown(session.ButtonPrimary, pos(e.Position))
	case desktop.MouseButtonSecondary:
		b.session.PointerDown(session.ButtonSecondary, pos(e.Position))
	}
}

func (b *BoardWidget) MouseUp(*desktop.MouseEvent) {
	b.session.PointerUp()
}

func (b *BoardWidget) MouseIn(*desktop.MouseEvent) {}
func (b *BoardWidget) MouseOut() {}

func (b *BoardWidget) MouseMoved(e *desktop.MouseEvent) {
	b.session.PointerMove(pos(e.Position))
}

// Dragged replaces MouseMoved while a button is held.
func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	b.session.PointerMove(pos(e.Position))
}

func (b *BoardWidget) DragEnd() {
	b.session.PointerUp()
}

func (b *BoardWidget) Scrolled(e *fyne.ScrollEvent) {
	b.session.Wheel(pos(e.Position), -float64(e.Scrolled.DY)*wheelFactor)
}

func pos(p fyne.Position) state.Point {
	return state.Point{X: float64(p.X), Y: float64(p.Y)}
}
