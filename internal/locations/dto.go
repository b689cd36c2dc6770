package locations

import (
	"time"

	"github.com/google/uuid"

	"github.com/printlink/printlink-backend/pkg/db/models"
	"github.com/printlink/printlink-backend/pkg/types"
)

// ReportInput carries one position ping from an agent.
type ReportInput struct {
	AgentID  uuid.UUID
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Address  *string  `json:"address,omitempty"`
	Heading  *float64 `json:"heading,omitempty"`
	SpeedKMH *float64 `json:"speed_kmh,omitempty"`
}

// QueryFilters narrow a ledger history query.
type QueryFilters struct {
	AgentID *uuid.UUID
	OrderID *uuid.UUID
	From    *time.Time
	To      *time.Time
}

// RecordView is the API shape of one ledger row.
type RecordView struct {
	ID         uuid.UUID            `json:"id"`
	AgentID    uuid.UUID            `json:"agent_id"`
	OrderID    *uuid.UUID           `json:"order_id,omitempty"`
	Position   types.GeographyPoint `json:"position"`
	Address    *string              `json:"address,omitempty"`
	Heading    *float64             `json:"heading,omitempty"`
	SpeedKMH   *float64             `json:"speed_kmh,omitempty"`
	RecordedAt time.Time            `json:"recorded_at"`
}

// RecordPage is one page of ledger history.
type RecordPage struct {
	Records    []RecordView `json:"records"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// AgentMovedEvent is broadcast to the admin channel on every ping.
type AgentMovedEvent struct {
	AgentID    uuid.UUID            `json:"agent_id"`
	Position   types.GeographyPoint `json:"position"`
	RecordedAt time.Time            `json:"recorded_at"`
}

// LocationUpdatedEvent is broadcast to the active order channel on every ping.
type LocationUpdatedEvent struct {
	OrderID    uuid.UUID            `json:"order_id"`
	AgentID    uuid.UUID            `json:"agent_id"`
	Position   types.GeographyPoint `json:"position"`
	RecordedAt time.Time            `json:"recorded_at"`
}

func toRecordView(m *models.LocationRecord) *RecordView {
	if m == nil {
		return nil
	}
	return &RecordView{
		ID:         m.ID,
		AgentID:    m.AgentID,
		OrderID:    m.OrderID,
		Position:   types.GeographyPoint{Lat: m.Lat, Lng: m.Lng},
		Address:    m.Address,
		Heading:    m.Heading,
		SpeedKMH:   m.SpeedKMH,
		RecordedAt: m.CreatedAt,
	}
}
