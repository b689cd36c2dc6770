package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/printlink/printlink-backend/pkg/enums"
)

// OrderLineItem captures the snapshot of each item within an order.
type OrderLineItem struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID             `gorm:"column:order_id;type:uuid;not null"`
	RefKind        enums.LineItemRefKind `gorm:"column:ref_kind;type:text;not null"`
	RefID          *uuid.UUID            `gorm:"column:ref_id;type:uuid"`
	Name           string                `gorm:"column:name;not null"`
	Qty            int                   `gorm:"column:qty;not null"`
	UnitPriceCents int64                 `gorm:"column:unit_price_cents;not null"`
	TotalCents     int64                 `gorm:"column:total_cents;not null"`
	Notes          *string               `gorm:"column:notes"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
