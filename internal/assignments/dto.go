package assignments

import (
	"time"

	"github.com/google/uuid"

	"github.com/printlink/printlink-backend/pkg/db/models"
	"github.com/printlink/printlink-backend/pkg/enums"
)

// Actor identifies who is performing an operation, as decoded from the
// access token.
type Actor struct {
	UserID   uuid.UUID
	Role     enums.MemberRole
	CenterID *uuid.UUID
	AgentID  *uuid.UUID
}

// UpdateProductionInput carries a production state change request.
type UpdateProductionInput struct {
	AssignmentID uuid.UUID
	Status       enums.ProductionStatus
	Notes        *string
	Actor        Actor
}

// CreateDeliveryInput binds an agent to an order.
type CreateDeliveryInput struct {
	OrderID uuid.UUID
	AgentID uuid.UUID
	Actor   Actor
}

// UpdateDeliveryInput carries a delivery progress change request.
type UpdateDeliveryInput struct {
	AssignmentID uuid.UUID
	Status       enums.OrderStatus
	Actor        Actor
}

// ProductionAssignmentView is the API shape of a production assignment.
type ProductionAssignmentView struct {
	ID          uuid.UUID              `json:"id"`
	OrderID     uuid.UUID              `json:"order_id"`
	CenterID    uuid.UUID              `json:"center_id"`
	Status      enums.ProductionStatus `json:"status"`
	Notes       *string                `json:"notes,omitempty"`
	AcceptedAt  *time.Time             `json:"accepted_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

// DeliveryAssignmentView is the API shape of a delivery assignment. Status
// is derived from the pickup and delivery timestamps so callers do not need
// a second order lookup.
type DeliveryAssignmentView struct {
	ID          uuid.UUID         `json:"id"`
	OrderID     uuid.UUID         `json:"order_id"`
	AgentID     uuid.UUID         `json:"agent_id"`
	Status      enums.OrderStatus `json:"status"`
	PickedUpAt  *time.Time        `json:"picked_up_at,omitempty"`
	DeliveredAt *time.Time        `json:"delivered_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// ProductionAssignedEvent is broadcast when the matcher binds an order to a
// center.
type ProductionAssignedEvent struct {
	AssignmentID uuid.UUID              `json:"assignment_id"`
	OrderID      uuid.UUID              `json:"order_id"`
	CenterID     uuid.UUID              `json:"center_id"`
	Status       enums.ProductionStatus `json:"status"`
}

// ProductionStatusEvent is broadcast on every accepted production transition.
type ProductionStatusEvent struct {
	AssignmentID uuid.UUID              `json:"assignment_id"`
	OrderID      uuid.UUID              `json:"order_id"`
	CenterID     uuid.UUID              `json:"center_id"`
	Status       enums.ProductionStatus `json:"status"`
	Notes        *string                `json:"notes,omitempty"`
}

// OrderUpdatedEvent carries the coarse order progress for tracking clients.
type OrderUpdatedEvent struct {
	OrderID uuid.UUID         `json:"order_id"`
	Status  enums.OrderStatus `json:"status"`
}

func toProductionView(m *models.ProductionAssignment) *ProductionAssignmentView {
	if m == nil {
		return nil
	}
	return &ProductionAssignmentView{
		ID:          m.ID,
		OrderID:     m.OrderID,
		CenterID:    m.CenterID,
		Status:      m.Status,
		Notes:       m.Notes,
		AcceptedAt:  m.AcceptedAt,
		CompletedAt: m.CompletedAt,
		CreatedAt:   m.CreatedAt,
	}
}

func toDeliveryView(m *models.DeliveryAssignment) *DeliveryAssignmentView {
	if m == nil {
		return nil
	}
	return &DeliveryAssignmentView{
		ID:          m.ID,
		OrderID:     m.OrderID,
		AgentID:     m.AgentID,
		Status:      deliveryStatus(m),
		PickedUpAt:  m.PickedUpAt,
		DeliveredAt: m.DeliveredAt,
		CreatedAt:   m.CreatedAt,
	}
}

func deliveryStatus(m *models.DeliveryAssignment) enums.OrderStatus {
	switch {
	case m.DeliveredAt != nil:
		return enums.OrderStatusDelivered
	case m.PickedUpAt != nil:
		return enums.OrderStatusShipped
	default:
		return enums.OrderStatusProcessing
	}
}
