// Package render turns board state into pixels, at most once per display
// frame.
package render

import "sync"

// Scheduler runs a callback once, at the next display refresh.
type Scheduler interface {
	Schedule(fn func())
}

// Engine coalesces redraw requests. Any number of RequestRedraw calls
// between two frames produce exactly one paint.
type Engine struct {
	sched   Scheduler
	paint   func()
	dirty   bool
	pending bool
	frames  int
	mu      sync.Mutex
}

// NewEngine returns an engine that calls paint on frames scheduled by sched.
func NewEngine(sched Scheduler, paint func()) *Engine {
	return &Engine{sched: sched, paint: paint}
}

// RequestRedraw marks the scene dirty and schedules a frame unless one is
// already pending. It may be called from any goroutine.
func (e *Engine) RequestRedraw() {
	e.mu.Lock()
	e.dirty = true
	if e.pending {
		e.mu.Unlock()
		return
	}
	e.pending = true
	e.mu.Unlock()

	e.sched.Schedule(e.frame)
}

// Frames returns how many paints have run.
func (e *Engine) Frames() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

func (e *Engine) frame() {
	e.mu.Lock()
	e.pending = false
	if !e.dirty {
		e.mu.Unlock()
		return
	}
	e.dirty = false
	e.frames++
	e.mu.Unlock()

	if e.paint != nil {
		e.paint()
	}
}

// ManualScheduler queues callbacks until Flush is called. It stands in for
// the display refresh in tests and headless use.
type ManualScheduler struct {
	queue []func()
	mu    sync.Mutex
}

func (s *ManualScheduler) Schedule(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, fn)
}

// Pending returns the number of queued callbacks.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Flush runs the callbacks queued so far. Callbacks scheduled while flushing
// wait for the next Flush.
func (s *ManualScheduler) Flush() {
	s.mu.Lock()
	queue := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
}

// ImmediateScheduler runs callbacks synchronously.
type ImmediateScheduler struct{}

func (ImmediateScheduler) Schedule(fn func()) { fn() }
