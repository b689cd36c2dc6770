package models

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryAssignment binds an order to the agent carrying it out for
// delivery. At most one per order.
type DeliveryAssignment struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID  `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	AgentID     uuid.UUID  `gorm:"column:agent_id;type:uuid;not null"`
	PickedUpAt  *time.Time `gorm:"column:picked_up_at"`
	DeliveredAt *time.Time `gorm:"column:delivered_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
