package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/printlink/printlink-backend/pkg/logger"
)

const defaultSubscriberBuffer = 16

// Broadcaster fans domain events out to logical channels. Delivery is
// at-most-once and best effort: a subscriber connected at publish time
// receives the event, everyone else reconstructs state via a query.
type Broadcaster interface {
	Publish(ctx context.Context, channel, name string, payload any)
}

// Connection is one subscriber endpoint (typically an SSE stream). A
// connection may join any number of channels.
type Connection struct {
	events chan Event

	mu     sync.Mutex
	closed bool
}

// Events is the stream of events delivered to this connection.
func (c *Connection) Events() <-chan Event {
	return c.events
}

func (c *Connection) deliver(evt Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	// Publishes never block on a slow consumer; overflow is dropped.
	select {
	case c.events <- evt:
	default:
	}
}

func (c *Connection) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.events)
}

// Hub is the in-process Broadcaster. Channel membership is safe for
// concurrent subscribe/unsubscribe/publish.
type Hub struct {
	buffer int
	logg   *logger.Logger

	mu       sync.RWMutex
	channels map[string]map[*Connection]struct{}
}

// NewHub builds a hub with the given per-connection buffer size.
func NewHub(buffer int, logg *logger.Logger) *Hub {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	return &Hub{
		buffer:   buffer,
		logg:     logg,
		channels: make(map[string]map[*Connection]struct{}),
	}
}

// NewConnection creates a subscriber endpoint not yet joined to any channel.
func (h *Hub) NewConnection() *Connection {
	return &Connection{events: make(chan Event, h.buffer)}
}

// Subscribe joins the connection to a channel.
func (h *Hub) Subscribe(conn *Connection, channel string) {
	if conn == nil || channel == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.channels[channel]
	if !ok {
		members = make(map[*Connection]struct{})
		h.channels[channel] = members
	}
	members[conn] = struct{}{}
}

// Unsubscribe removes the connection from a channel.
func (h *Hub) Unsubscribe(conn *Connection, channel string) {
	if conn == nil || channel == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.channels[channel]; ok {
		delete(members, conn)
		if len(members) == 0 {
			delete(h.channels, channel)
		}
	}
}

// Disconnect removes the connection from every channel and closes its stream.
func (h *Hub) Disconnect(conn *Connection) {
	if conn == nil {
		return
	}
	h.mu.Lock()
	for channel, members := range h.channels {
		delete(members, conn)
		if len(members) == 0 {
			delete(h.channels, channel)
		}
	}
	h.mu.Unlock()
	conn.close()
}

// Publish delivers the event to every current member of the channel.
// It is fire and forget: marshal failures are logged, never returned.
func (h *Hub) Publish(ctx context.Context, channel, name string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		if h.logg != nil {
			h.logg.Error(ctx, "realtime payload marshal failed", err)
		}
		return
	}

	evt := Event{
		Channel:    channel,
		Name:       name,
		Payload:    raw,
		OccurredAt: time.Now().UTC(),
	}

	h.mu.RLock()
	members := make([]*Connection, 0, len(h.channels[channel]))
	for conn := range h.channels[channel] {
		members = append(members, conn)
	}
	h.mu.RUnlock()

	for _, conn := range members {
		conn.deliver(evt)
	}
}

// SubscriberCount reports the current membership of a channel.
func (h *Hub) SubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}
