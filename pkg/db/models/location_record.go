package models

import (
	"time"

	"github.com/google/uuid"
)

// LocationRecord is one append-only ping from a delivery agent. Rows are
// never updated; the latest fix per agent is the newest row.
type LocationRecord struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AgentID   uuid.UUID  `gorm:"column:agent_id;type:uuid;not null;index:idx_location_records_agent_recent,priority:1"`
	OrderID   *uuid.UUID `gorm:"column:order_id;type:uuid;index"`
	Lat       float64    `gorm:"column:lat;not null"`
	Lng       float64    `gorm:"column:lng;not null"`
	Address   *string    `gorm:"column:address"`
	Heading   *float64   `gorm:"column:heading"`
	SpeedKMH  *float64   `gorm:"column:speed_kmh"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime;index:idx_location_records_agent_recent,priority:2,sort:desc"`
}
