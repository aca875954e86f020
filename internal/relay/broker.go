package relay

import (
	"context"
	"encoding/json"
	"sync"
)

// Envelope is one relayed frame. Origin is the connection that sent it, so
// the frame is not echoed back.
type Envelope struct {
	Origin  string          `json:"origin"`
	Payload json.RawMessage `json:"payload"`
}

// Broker fans room traffic out to every relay process serving the room.
// Deliveries for one room arrive in publish order.
type Broker interface {
	Publish(ctx context.Context, room string, env Envelope) error
	Subscribe(ctx context.Context, room string, deliver func(Envelope)) (cancel func(), err error)
	Close() error
}

// LocalBroker delivers in-process, synchronously on the publishing goroutine.
type LocalBroker struct {
	mu     sync.RWMutex
	subs   map[string]map[int]func(Envelope)
	nextID int
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{subs: make(map[string]map[int]func(Envelope))}
}

func (b *LocalBroker) Publish(_ context.Context, room string, env Envelope) error {
	b.mu.RLock()
	subs := make([]func(Envelope), 0, len(b.subs[room]))
	for _, fn := range b.subs[room] {
		subs = append(subs, fn)
	}
	b.mu.RUnlock()

	for _, fn := range subs {
		fn(env)
	}
	return nil
}

func (b *LocalBroker) Subscribe(_ context.Context, room string, deliver func(Envelope)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	if b.subs[room] == nil {
		b.subs[room] = make(map[int]func(Envelope))
	}
	b.subs[room][id] = deliver

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[room], id)
		if len(b.subs[room]) == 0 {
			delete(b.subs, room)
		}
	}, nil
}

func (b *LocalBroker) Close() error { return nil }
