package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/printlink/printlink-backend/pkg/enums"
)

// Order is the order-service owned record this service reads but never
// mutates beyond its coarse status column.
type Order struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID    uuid.UUID         `gorm:"column:customer_id;type:uuid;not null"`
	Kind          enums.OrderKind   `gorm:"column:kind;type:text;not null;default:'print'"`
	Status        enums.OrderStatus `gorm:"column:status;type:text;not null;default:'created'"`
	TotalCents    int64             `gorm:"column:total_cents;not null;default:0"`
	Currency      string            `gorm:"column:currency;not null;default:'EGP'"`
	DeliveryLat   *float64          `gorm:"column:delivery_lat"`
	DeliveryLng   *float64          `gorm:"column:delivery_lng"`
	DeliveryNotes *string           `gorm:"column:delivery_notes"`
	PaidAt        *time.Time        `gorm:"column:paid_at"`
	Items         []OrderLineItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
