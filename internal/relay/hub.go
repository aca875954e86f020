// Package relay is the room-scoped fan-out server. It holds no drawing
// state beyond an optional replay log; clients own all board semantics.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Config tunes the relay.
type Config struct {
	CursorThrottle  time.Duration // minimum gap between cursor frames per connection
	SendBuffer      int           // frames queued per connection before it is dropped
	ReplayHistory   bool          // replay a room's strokes to late joiners
	RoomIdleTTL     time.Duration
	CleanupInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		CursorThrottle:  33 * time.Millisecond,
		SendBuffer:      256,
		RoomIdleTTL:     time.Hour,
		CleanupInterval: 15 * time.Minute,
	}
}

// ErrMissingRoom is returned when a connection names no room.
var ErrMissingRoom = errors.New("room code missing")

// Palette assigns display colors to connections in join order.
var Palette = []string{
	"#FF0000", "#0000FF", "#008000", "#FFA500", "#800080", "#008080",
	"#FF00FF", "#A52A2A", "#4B0082", "#FF6347", "#808000", "#9370DB",
}

// Hub is the registry of rooms on this process.
type Hub struct {
	cfg    Config
	broker Broker
	rooms  map[string]*Room
	joined int

	ctx  context.Context
	stop context.CancelFunc
	now  func() time.Time
	mu   sync.Mutex
	log  *slog.Logger
}

func NewHub(cfg Config, broker Broker) *Hub {
	def := DefaultConfig()
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = def.SendBuffer
	}
	if cfg.RoomIdleTTL <= 0 {
		cfg.RoomIdleTTL = def.RoomIdleTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}
	if broker == nil {
		broker = NewLocalBroker()
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Hub{
		cfg:    cfg,
		broker: broker,
		rooms:  make(map[string]*Room),
		ctx:    ctx,
		stop:   stop,
		now:    time.Now,
		log:    slog.Default().With("component", "hub"),
	}
}

// join registers c in the room named code, creating and subscribing the
// room on first use.
func (h *Hub) join(code string, c *Client) (*Room, error) {
	if code == "" {
		return nil, ErrMissingRoom
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[code]
	if !ok {
		room = newRoom(code, h.cfg, h.now)
		unsub, err := h.broker.Subscribe(h.ctx, code, room.deliver)
		if err != nil {
			return nil, fmt.Errorf("open room %s: %w", code, err)
		}
		room.unsub = unsub
		h.rooms[code] = room
		h.log.Info("room opened", "room", code)
	}

	c.color = Palette[h.joined%len(Palette)]
	h.joined++
	room.join(c)
	return room, nil
}

func (h *Hub) publish(room, origin string, frame []byte) error {
	return h.broker.Publish(h.ctx, room, Envelope{Origin: origin, Payload: frame})
}

// Sweep closes rooms that have been empty for longer than the idle TTL and
// returns how many were closed.
func (h *Hub) Sweep() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	closed := 0
	for code, room := range h.rooms {
		if !room.idle(now, h.cfg.RoomIdleTTL) {
			continue
		}
		if room.unsub != nil {
			room.unsub()
		}
		delete(h.rooms, code)
		closed++
		h.log.Info("room expired", "room", code)
	}
	return closed
}

// RunCleanup sweeps on every cleanup interval until ctx is done.
func (h *Hub) RunCleanup(ctx context.Context) {
	ticker := time.NewTicker(h.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Sweep()
		}
	}
}

// Stats reports the number of open rooms and connected clients.
func (h *Hub) Stats() (rooms, clients int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.rooms {
		clients += r.size()
	}
	return len(h.rooms), clients
}

// Close drops every room subscription and closes the broker.
func (h *Hub) Close() error {
	h.mu.Lock()
	for code, room := range h.rooms {
		if room.unsub != nil {
			room.unsub()
		}
		delete(h.rooms, code)
	}
	h.mu.Unlock()
	h.stop()
	return h.broker.Close()
}
