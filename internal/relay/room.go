package relay

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"LiveBoard/internal/protocol"
)

// Room is the set of connections on this process that share a room code.
type Room struct {
	code       string
	clients    map[*Client]struct{}
	history    *strokeLog // nil unless late-join replay is enabled
	lastActive time.Time
	sendBuffer int
	unsub      func()

	now func() time.Time
	mu  sync.RWMutex
	log *slog.Logger
}

func newRoom(code string, cfg Config, now func() time.Time) *Room {
	r := &Room{
		code:       code,
		clients:    make(map[*Client]struct{}),
		lastActive: now(),
		sendBuffer: cfg.SendBuffer,
		now:        now,
		log:        slog.Default().With("component", "room", "room", code),
	}
	if cfg.ReplayHistory {
		r.history = newStrokeLog()
	}
	return r
}

// join adds c and queues the replay log ahead of any live traffic.
func (r *Room) join(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var backlog [][]byte
	if r.history != nil {
		backlog = r.history.replay()
	}
	c.send = make(chan []byte, r.sendBuffer+len(backlog))
	for _, frame := range backlog {
		c.send <- frame
	}
	r.clients[c] = struct{}{}
	r.lastActive = r.now()
	r.log.Info("client joined", "client", c.id, "clients", len(r.clients), "replayed", len(backlog))
}

func (r *Room) leave(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[c]; ok {
		delete(r.clients, c)
		close(c.send)
	}
	r.lastActive = r.now()
	r.log.Info("client left", "client", c.id, "clients", len(r.clients))
}

// direct queues frame for c alone.
func (r *Room) direct(c *Client, frame []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[c]; ok {
		r.enqueue(c, frame)
	}
}

// deliver records env in the replay log and queues it for every local
// connection except its origin.
func (r *Room) deliver(env Envelope) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.history != nil {
		if msg, err := protocol.Decode(env.Payload); err == nil {
			r.history.record(msg, env.Payload)
		}
	}
	r.lastActive = r.now()

	for c := range r.clients {
		if c.id == env.Origin {
			continue
		}
		r.enqueue(c, env.Payload)
	}
}

// enqueue must be called with r.mu held. A client that cannot keep up is
// dropped; its write pump then closes the connection.
func (r *Room) enqueue(c *Client, frame []byte) {
	select {
	case c.send <- frame:
	default:
		delete(r.clients, c)
		close(c.send)
		r.log.Warn("send buffer full, dropping client", "client", c.id)
	}
}

func (r *Room) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

func (r *Room) idle(now time.Time, ttl time.Duration) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients) == 0 && now.Sub(r.lastActive) > ttl
}

// strokeLog keeps the frames needed to rebuild a room's strokes, in
// z-order.
type strokeLog struct {
	order  []string
	frames map[string][][]byte
}

func newStrokeLog() *strokeLog {
	return &strokeLog{frames: make(map[string][][]byte)}
}

func (l *strokeLog) record(msg protocol.Message, frame []byte) {
	switch m := msg.(type) {
	case protocol.Draw:
		if _, ok := l.frames[m.ID]; !ok {
			l.order = append(l.order, m.ID)
		}
		l.frames[m.ID] = append(l.frames[m.ID], frame)
	case protocol.Redo:
		if _, ok := l.frames[m.ID]; !ok {
			l.order = append(l.order, m.ID)
		}
		l.frames[m.ID] = [][]byte{frame}
	case protocol.Undo:
		if _, ok := l.frames[m.ID]; !ok {
			return
		}
		delete(l.frames, m.ID)
		if i := slices.Index(l.order, m.ID); i >= 0 {
			l.order = slices.Delete(l.order, i, i+1)
		}
	}
}

func (l *strokeLog) replay() [][]byte {
	var out [][]byte
	for _, id := range l.order {
		out = append(out, l.frames[id]...)
	}
	return out
}
