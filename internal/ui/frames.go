package ui

import (
	"time"

	"fyne.io/fyne/v2"
)

// FrameScheduler runs callbacks on the fyne goroutine roughly one display
// frame after they are scheduled.
type FrameScheduler struct {
	Interval time.Duration
}

func (s FrameScheduler) Schedule(fn func()) {
	time.AfterFunc(s.Interval, func() { fyne.Do(fn) })
}
