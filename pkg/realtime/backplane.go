package realtime

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"

	"github.com/printlink/printlink-backend/pkg/logger"
)

// Backplane relays publishes through Redis Pub/Sub so subscribers on every
// API instance see events published on any of them. It preserves the
// at-most-once, best-effort contract; Redis only widens the audience.
type Backplane struct {
	hub     *Hub
	client  *redis.Client
	channel string
	origin  string
	logg    *logger.Logger
	pubsub  *redis.PubSub
	cancel  context.CancelFunc
	done    chan struct{}
}

type backplaneEnvelope struct {
	Origin string `json:"origin"`
	Event  Event  `json:"event"`
}

// NewBackplane wraps the hub with a Redis relay on the named Pub/Sub channel.
func NewBackplane(hub *Hub, client *redis.Client, channel string, logg *logger.Logger) *Backplane {
	return &Backplane{
		hub:     hub,
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		logg:    logg,
		done:    make(chan struct{}),
	}
}

// Start begins relaying remote publishes into the local hub.
func (b *Backplane) Start(ctx context.Context) {
	ctx, b.cancel = context.WithCancel(ctx)
	b.pubsub = b.client.Subscribe(ctx, b.channel)

	go func() {
		defer close(b.done)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-b.pubsub.Channel():
				if !ok {
					return
				}
				b.relayInbound(ctx, msg.Payload)
			}
		}
	}()
}

func (b *Backplane) relayInbound(ctx context.Context, payload string) {
	var env backplaneEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		if b.logg != nil {
			b.logg.Error(ctx, "backplane envelope decode failed", err)
		}
		return
	}
	// Our own publishes already hit the local hub.
	if env.Origin == b.origin {
		return
	}
	b.hub.Publish(ctx, env.Event.Channel, env.Event.Name, env.Event.Payload)
}

// Publish delivers locally and relays through Redis. Relay failures are
// logged, never surfaced; local delivery already happened.
func (b *Backplane) Publish(ctx context.Context, channel, name string, payload any) {
	b.hub.Publish(ctx, channel, name, payload)

	raw, err := json.Marshal(payload)
	if err != nil {
		if b.logg != nil {
			b.logg.Error(ctx, "backplane payload marshal failed", err)
		}
		return
	}

	env := backplaneEnvelope{
		Origin: b.origin,
		Event:  Event{Channel: channel, Name: name, Payload: raw},
	}
	encoded, err := json.Marshal(env)
	if err != nil {
		if b.logg != nil {
			b.logg.Error(ctx, "backplane envelope marshal failed", err)
		}
		return
	}

	if err := b.client.Publish(ctx, b.channel, encoded).Err(); err != nil {
		if b.logg != nil {
			b.logg.Error(ctx, "backplane relay publish failed", err)
		}
	}
}

// Close stops the relay loop and the Redis subscription. Closing a
// backplane that was never started is a no-op.
func (b *Backplane) Close() error {
	if b.cancel == nil {
		return nil
	}
	b.cancel()
	var errs error
	if b.pubsub != nil {
		errs = multierr.Append(errs, b.pubsub.Close())
	}
	<-b.done
	return errs
}
