package ui

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"LiveBoard/internal/export"
	"LiveBoard/internal/render"
)

// Swatches are the quick-pick pen colors.
var Swatches = []string{"#000000", "#FF0000", "#008000", "#0000FF", "#FFA500", "#800080"}

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Hex      string
	OnTapped func(string)
}

func newColorSwatch(hex string, tapped func(string)) *colorSwatch {
	s := &colorSwatch{Hex: hex, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(render.ParseColor(s.Hex))
	rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Hex)
	}
}

// Toolbar holds the drawing controls for one board.
type Toolbar struct {
	board  *BoardWidget
	win    fyne.Window
	undo   *widget.Button
	redo   *widget.Button
	status *widget.Label
	root   fyne.CanvasObject
}

// NewToolbar builds the controls for board inside win.
func NewToolbar(board *BoardWidget, win fyne.Window) *Toolbar {
	t := &Toolbar{board: board, win: win, status: widget.NewLabel("Connecting...")}
	s := board.Session()

	tools := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), func() { t.setEraser(false) }),
		widget.NewToolbarAction(theme.DeleteIcon(), func() { t.setEraser(true) }),
	)

	swatches := container.NewHBox()
	for _, hex := range Swatches {
		swatches.Add(newColorSwatch(hex, func(hex string) {
			brush := s.Brush()
			brush.Color = hex
			brush.Eraser = false
			s.SetBrush(brush)
		}))
	}

	width := widget.NewSlider(1, 50)
	width.SetValue(s.Brush().Width)
	width.OnChanged = func(v float64) {
		brush := s.Brush()
		brush.Width = v
		s.SetBrush(brush)
	}
	sliderBox := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), width)

	t.undo = widget.NewButtonWithIcon("", theme.ContentUndoIcon(), s.Undo)
	t.redo = widget.NewButtonWithIcon("", theme.ContentRedoIcon(), s.Redo)
	pdf := widget.NewButton("PDF", t.exportPDF)
	png := widget.NewButton("PNG", t.exportPNG)

	s.SetOnChange(t.SyncHistory)
	t.SyncHistory()

	t.root = container.NewHBox(
		widget.NewLabel("Tool:"),
		tools,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		swatches,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderBox,
		widget.NewSeparator(),
		t.undo,
		t.redo,
		widget.NewSeparator(),
		pdf,
		png,
		layout.NewSpacer(),
		t.status,
	)
	return t
}

// Object returns the toolbar's canvas object.
func (t *Toolbar) Object() fyne.CanvasObject { return t.root }

// SetStatus shows text at the end of the toolbar. Call it on the fyne
// goroutine.
func (t *Toolbar) SetStatus(text string) { t.status.SetText(text) }

// SyncHistory enables undo and redo according to the session.
func (t *Toolbar) SyncHistory() {
	s := t.board.Session()
	setEnabled(t.undo, s.CanUndo())
	setEnabled(t.redo, s.CanRedo())
}

func (t *Toolbar) setEraser(on bool) {
	s := t.board.Session()
	brush := s.Brush()
	brush.Eraser = on
	s.SetBrush(brush)
}

func (t *Toolbar) exportPDF() {
	t.saveAs("board.pdf", func(path string) error {
		return export.PDF(path, t.board.Session().Snapshot().Strokes)
	})
}

func (t *Toolbar) exportPNG() {
	t.saveAs("board.png", func(path string) error {
		f := t.board.Session().Snapshot()
		return export.PNG(path, f, int(f.View.Width), int(f.View.Height))
	})
}

func (t *Toolbar) saveAs(name string, write func(path string) error) {
	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, t.win)
			return
		}
		if w == nil {
			return
		}
		path := w.URI().Path()
		w.Close()
		if err := write(path); err != nil {
			dialog.ShowError(err, t.win)
			return
		}
		t.SetStatus(fmt.Sprintf("Exported %s", path))
	}, t.win)
	d.SetFileName(name)
	d.Show()
}

func setEnabled(b *widget.Button, on bool) {
	if on {
		b.Enable()
	} else {
		b.Disable()
	}
}
