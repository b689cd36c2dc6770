package models

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryAgent is a courier that can be assigned orders for delivery.
type DeliveryAgent struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Name      string    `gorm:"column:name;not null"`
	Phone     *string   `gorm:"column:phone"`
	// No gorm default, same as PrintCenter.Active: the tag would make gorm
	// skip the column on inserts with a false value.
	Active    bool      `gorm:"column:active;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
