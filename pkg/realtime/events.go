package realtime

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Channel names are logical string keys: one per order, one per print
// center, and a single administrative channel.
const AdminChannel = "admin"

// Event names published by the fulfillment core.
const (
	EventProductionAssigned      = "production_assigned"
	EventProductionStatusUpdated = "production_status_updated"
	EventOrderUpdated            = "order_updated"
	EventLocationUpdated         = "location_updated"
	EventAgentMoved              = "agent_moved"
)

// OrderChannel returns the tracking channel for one order.
func OrderChannel(orderID uuid.UUID) string {
	return "order:" + orderID.String()
}

// CenterChannel returns the dashboard channel for one print center.
func CenterChannel(centerID uuid.UUID) string {
	return "center:" + centerID.String()
}

// Event is the unit of delivery pushed to subscribers.
type Event struct {
	Channel    string          `json:"channel"`
	Name       string          `json:"name"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}
