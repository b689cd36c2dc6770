package tracking

import (
	"time"

	"github.com/google/uuid"

	"github.com/printlink/printlink-backend/pkg/db/models"
	"github.com/printlink/printlink-backend/pkg/enums"
	"github.com/printlink/printlink-backend/pkg/routing"
	"github.com/printlink/printlink-backend/pkg/types"
)

// OrderSummary is the order slice exposed through tracking. Payment and
// customer contact fields stay out on purpose.
type OrderSummary struct {
	ID        uuid.UUID             `json:"id"`
	ShortID   string                `json:"short_id"`
	Kind      enums.OrderKind       `json:"kind"`
	Status    enums.OrderStatus     `json:"status"`
	Delivery  *types.GeographyPoint `json:"delivery,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}

// CenterSummary is the print-center slice exposed through tracking.
type CenterSummary struct {
	ID       uuid.UUID             `json:"id"`
	Name     string                `json:"name"`
	Position *types.GeographyPoint `json:"position,omitempty"`
}

// ProductionSummary is the production-assignment slice exposed through
// tracking.
type ProductionSummary struct {
	ID          uuid.UUID              `json:"id"`
	Status      enums.ProductionStatus `json:"status"`
	AssignedAt  time.Time              `json:"assigned_at"`
	AcceptedAt  *time.Time             `json:"accepted_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
}

// AgentSummary is the courier slice exposed through tracking.
type AgentSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// DeliverySummary is the delivery-assignment slice exposed through tracking.
type DeliverySummary struct {
	ID          uuid.UUID    `json:"id"`
	Agent       AgentSummary `json:"agent"`
	PickedUpAt  *time.Time   `json:"picked_up_at,omitempty"`
	DeliveredAt *time.Time   `json:"delivered_at,omitempty"`
}

// OrderTrackingView is the authorized tracking answer for one order.
type OrderTrackingView struct {
	Order      OrderSummary       `json:"order"`
	Production *ProductionSummary `json:"production,omitempty"`
	Center     *CenterSummary     `json:"center,omitempty"`
	Delivery   *DeliverySummary   `json:"delivery,omitempty"`
}

// PublicTrackingView is the anonymous tracking answer. It carries the center
// name and location plus coarse statuses only.
type PublicTrackingView struct {
	OrderShortID     string                  `json:"order_short_id"`
	OrderStatus      enums.OrderStatus       `json:"order_status"`
	ProductionStatus *enums.ProductionStatus `json:"production_status,omitempty"`
	CenterName       string                  `json:"center_name,omitempty"`
	CenterPosition   *types.GeographyPoint   `json:"center_position,omitempty"`
}

// PositionSummary is the latest courier position exposed through delivery
// tracking.
type PositionSummary struct {
	Position   types.GeographyPoint `json:"position"`
	RecordedAt time.Time            `json:"recorded_at"`
}

// DeliveryTrackingView composes assignment state with the courier's latest
// position and a route estimate to the drop-off point. Delivery, Position and
// Route are nil until a delivery assignment and pings exist.
type DeliveryTrackingView struct {
	Order      OrderSummary      `json:"order"`
	Center     *CenterSummary    `json:"center,omitempty"`
	Production ProductionSummary `json:"production"`
	Delivery   *DeliverySummary  `json:"delivery,omitempty"`
	Position   *PositionSummary  `json:"position,omitempty"`
	Route      *routing.Estimate `json:"route,omitempty"`
}

// shortOrderID is the first eight hex characters of the order id, the form
// printed on receipts and package labels.
func shortOrderID(id uuid.UUID) string {
	compact := make([]byte, 0, 32)
	for _, r := range id.String() {
		if r != '-' {
			compact = append(compact, byte(r))
		}
	}
	if len(compact) < 8 {
		return string(compact)
	}
	return string(compact[:8])
}

func toOrderSummary(order *models.Order) OrderSummary {
	summary := OrderSummary{
		ID:        order.ID,
		ShortID:   shortOrderID(order.ID),
		Kind:      order.Kind,
		Status:    order.Status,
		CreatedAt: order.CreatedAt,
	}
	if order.DeliveryLat != nil && order.DeliveryLng != nil {
		summary.Delivery = &types.GeographyPoint{Lat: *order.DeliveryLat, Lng: *order.DeliveryLng}
	}
	return summary
}

func toCenterSummary(center *models.PrintCenter) *CenterSummary {
	if center == nil {
		return nil
	}
	summary := &CenterSummary{ID: center.ID, Name: center.Name}
	if center.Lat != nil && center.Lng != nil {
		summary.Position = &types.GeographyPoint{Lat: *center.Lat, Lng: *center.Lng}
	}
	return summary
}

func toProductionSummary(assignment *models.ProductionAssignment) ProductionSummary {
	return ProductionSummary{
		ID:          assignment.ID,
		Status:      assignment.Status,
		AssignedAt:  assignment.CreatedAt,
		AcceptedAt:  assignment.AcceptedAt,
		CompletedAt: assignment.CompletedAt,
	}
}

func toDeliverySummary(assignment *models.DeliveryAssignment, agent *models.DeliveryAgent) *DeliverySummary {
	if assignment == nil {
		return nil
	}
	summary := &DeliverySummary{
		ID:          assignment.ID,
		PickedUpAt:  assignment.PickedUpAt,
		DeliveredAt: assignment.DeliveredAt,
	}
	if agent != nil {
		summary.Agent = AgentSummary{ID: agent.ID, Name: agent.Name}
	} else {
		summary.Agent = AgentSummary{ID: assignment.AgentID}
	}
	return summary
}
