package ui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	lbnet "LiveBoard/internal/net"
	"LiveBoard/internal/session"
)

// Options configures the board window.
type Options struct {
	Title         string
	ShareLink     string // shown with a copy button when hosting
	FrameInterval time.Duration
	Session       session.Config
}

// RunApp opens the board window and keeps client connected until the
// window is closed. It blocks for the lifetime of the app.
func RunApp(opts Options, client *lbnet.Client) {
	log := slog.Default().With("component", "app")
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = 16 * time.Millisecond
	}

	a := app.NewWithID("io.liveboard.desktop")
	w := a.NewWindow(opts.Title)
	w.Resize(fyne.NewSize(1024, 768))

	board := NewBoardWidget(opts.Session, client, FrameScheduler{Interval: opts.FrameInterval})
	toolbar := NewToolbar(board, w)
	bindShortcuts(w, board.Session())

	top := toolbar.Object()
	if opts.ShareLink != "" {
		link := widget.NewEntry()
		link.SetText(opts.ShareLink)
		link.Disable()
		copyBtn := widget.NewButtonWithIcon("Copy link", theme.ContentCopyIcon(), func() {
			w.Clipboard().SetContent(opts.ShareLink)
			toolbar.SetStatus("Link copied")
		})
		top = container.NewVBox(top, container.NewBorder(nil, nil, widget.NewLabel("Share:"), copyBtn, link))
	}
	w.SetContent(container.NewBorder(top, nil, nil, nil, board))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.SetOnClosed(cancel)

	go func() {
		onOpen := func() {
			fyne.Do(func() {
				board.Session().Connected()
				toolbar.SetStatus("Connected")
			})
		}
		onMessage := func(data []byte) {
			fyne.Do(func() {
				s := board.Session()
				if err := s.HandleMessage(data); err != nil {
					log.Warn("skipping inbound frame", "error", err)
				}
				if id := s.UserID(); id != "" {
					client.Resume(id)
				}
			})
		}
		err := client.Run(ctx, onOpen, onMessage)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("connection ended", "error", err)
			fyne.Do(func() { toolbar.SetStatus("Disconnected") })
		}
	}()

	w.ShowAndRun()
}

func bindShortcuts(w fyne.Window, s *session.Session) {
	c := w.Canvas()
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { s.Undo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { s.Redo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault | fyne.KeyModifierShift},
		func(fyne.Shortcut) { s.Redo() })
}
