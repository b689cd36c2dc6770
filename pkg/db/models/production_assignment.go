package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/printlink/printlink-backend/pkg/enums"
)

// ProductionAssignment binds an order to the print center producing it.
// The unique index on order_id is what makes assignment idempotent under
// concurrent matching.
type ProductionAssignment struct {
	ID          uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID              `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	CenterID    uuid.UUID              `gorm:"column:center_id;type:uuid;not null"`
	Status      enums.ProductionStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Notes       *string                `gorm:"column:notes"`
	AcceptedAt  *time.Time             `gorm:"column:accepted_at"`
	CompletedAt *time.Time             `gorm:"column:completed_at"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
