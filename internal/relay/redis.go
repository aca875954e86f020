package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "liveboard:room:"

// RedisBroker shares rooms between relay processes over Redis pub/sub, one
// channel per room.
type RedisBroker struct {
	rdb *redis.Client
	log *slog.Logger
}

// NewRedisBroker connects to the Redis server at addr and checks it answers.
func NewRedisBroker(ctx context.Context, addr string) (*RedisBroker, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("could not connect to Redis at %s: %w", addr, err)
	}
	return &RedisBroker{
		rdb: rdb,
		log: slog.Default().With("component", "redis-broker"),
	}, nil
}

func (b *RedisBroker) Publish(ctx context.Context, room string, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := b.rdb.Publish(ctx, channelPrefix+room, data).Err(); err != nil {
		return fmt.Errorf("publish to room %s: %w", room, err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, room string, deliver func(Envelope)) (func(), error) {
	pubsub := b.rdb.Subscribe(ctx, channelPrefix+room)
	// Wait for the subscription to be confirmed so nothing published after
	// Subscribe returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe to room %s: %w", room, err)
	}

	ch := pubsub.Channel()
	go func() {
		for msg := range ch {
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.log.Warn("dropping malformed envelope", "room", room, "error", err)
				continue
			}
			deliver(env)
		}
	}()

	return func() { pubsub.Close() }, nil
}

func (b *RedisBroker) Close() error {
	return b.rdb.Close()
}
