package assignments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printlink/printlink-backend/internal/agents"
	"github.com/printlink/printlink-backend/internal/orders"
	"github.com/printlink/printlink-backend/pkg/db"
	"github.com/printlink/printlink-backend/pkg/db/models"
	"github.com/printlink/printlink-backend/pkg/enums"
	pkgerrors "github.com/printlink/printlink-backend/pkg/errors"
	"github.com/printlink/printlink-backend/pkg/logger"
	"github.com/printlink/printlink-backend/pkg/metrics"
	"github.com/printlink/printlink-backend/pkg/realtime"
)

// Lifecycle drives assignment state changes after the matcher has run.
type Lifecycle interface {
	UpdateProductionStatus(ctx context.Context, input UpdateProductionInput) (*ProductionAssignmentView, error)
	CreateDeliveryAssignment(ctx context.Context, input CreateDeliveryInput) (*DeliveryAssignmentView, error)
	UpdateDeliveryStatus(ctx context.Context, input UpdateDeliveryInput) (*DeliveryAssignmentView, error)
	GetProduction(ctx context.Context, id uuid.UUID, actor Actor) (*ProductionAssignmentView, error)
	ListCenterQueue(ctx context.Context, centerID uuid.UUID, actor Actor) ([]ProductionAssignmentView, error)
}

type lifecycle struct {
	repo        Repository
	orders      orders.Repository
	agents      agents.Repository
	tx          txRunner
	broadcaster realtime.Broadcaster
	metrics     *metrics.FulfillmentMetrics
	logg        *logger.Logger
}

// NewLifecycle builds the assignment lifecycle service.
func NewLifecycle(
	repo Repository,
	ordersRepo orders.Repository,
	agentsRepo agents.Repository,
	tx txRunner,
	broadcaster realtime.Broadcaster,
	m *metrics.FulfillmentMetrics,
	logg *logger.Logger,
) (Lifecycle, error) {
	if repo == nil {
		return nil, fmt.Errorf("assignments repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if agentsRepo == nil {
		return nil, fmt.Errorf("agents repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if broadcaster == nil {
		return nil, fmt.Errorf("broadcaster required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &lifecycle{
		repo:        repo,
		orders:      ordersRepo,
		agents:      agentsRepo,
		tx:          tx,
		broadcaster: broadcaster,
		metrics:     m,
		logg:        logg,
	}, nil
}

func (l *lifecycle) UpdateProductionStatus(ctx context.Context, input UpdateProductionInput) (*ProductionAssignmentView, error) {
	if input.AssignmentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid production status %q", input.Status))
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	assignment, err := l.repo.FindProductionByID(ctx, input.AssignmentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
	}

	if err := authorizeCenterActor(input.Actor, assignment.CenterID); err != nil {
		return nil, err
	}

	// Same-state re-entry is an acknowledged no-op.
	if assignment.Status == input.Status {
		return toProductionView(assignment), nil
	}

	if err := validateProductionTransition(assignment.Status, input.Status); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	assignment.Status = input.Status
	if input.Notes != nil {
		assignment.Notes = input.Notes
	}
	if input.Status == enums.ProductionStatusAccepted && assignment.AcceptedAt == nil {
		assignment.AcceptedAt = &now
	}
	if input.Status == enums.ProductionStatusCompleted {
		assignment.CompletedAt = &now
	}

	if err := l.repo.SaveProduction(ctx, assignment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save assignment")
	}

	ctx = l.logg.WithFields(ctx, map[string]any{
		"assignment_id": assignment.ID.String(),
		"status":        assignment.Status.String(),
	})
	l.logg.Info(ctx, "production status updated")
	l.metrics.IncTransition("production", assignment.Status.String())

	event := ProductionStatusEvent{
		AssignmentID: assignment.ID,
		OrderID:      assignment.OrderID,
		CenterID:     assignment.CenterID,
		Status:       assignment.Status,
		Notes:        assignment.Notes,
	}
	l.broadcaster.Publish(ctx, realtime.CenterChannel(assignment.CenterID), realtime.EventProductionStatusUpdated, event)
	// Order-channel subscribers listen for order_updated; production detail
	// stays on the center channel.
	l.broadcaster.Publish(ctx, realtime.OrderChannel(assignment.OrderID), realtime.EventOrderUpdated, OrderUpdatedEvent{
		OrderID: assignment.OrderID,
		Status:  enums.OrderStatusProcessing,
	})

	return toProductionView(assignment), nil
}

func (l *lifecycle) CreateDeliveryAssignment(ctx context.Context, input CreateDeliveryInput) (*DeliveryAssignmentView, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.AgentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	if input.Actor.Role != enums.RoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can assign deliveries")
	}

	if _, err := l.orders.FindByID(ctx, input.OrderID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	agent, err := l.agents.FindByID(ctx, input.AgentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery agent not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery agent")
	}
	if !agent.Active {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery agent is inactive")
	}

	assignment := &models.DeliveryAssignment{
		ID:      uuid.New(),
		OrderID: input.OrderID,
		AgentID: input.AgentID,
	}
	if err := l.repo.CreateDelivery(ctx, assignment); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "order already has a delivery assignment")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create delivery assignment")
	}

	l.logg.Info(l.logg.WithOrderID(ctx, input.OrderID.String()), "delivery assignment created")
	l.metrics.IncTransition("delivery", "assigned")

	return toDeliveryView(assignment), nil
}

func (l *lifecycle) UpdateDeliveryStatus(ctx context.Context, input UpdateDeliveryInput) (*DeliveryAssignmentView, error) {
	if input.AssignmentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", input.Status))
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	assignment, err := l.repo.FindDeliveryByID(ctx, input.AssignmentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery assignment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery assignment")
	}

	if err := authorizeAgentActor(input.Actor, assignment.AgentID); err != nil {
		return nil, err
	}

	order, err := l.orders.FindByID(ctx, assignment.OrderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	// Same-state re-entry is an acknowledged no-op.
	if order.Status == input.Status {
		return toDeliveryView(assignment), nil
	}

	if err := validateDeliveryTransition(order.Status, input.Status); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if input.Status == enums.OrderStatusShipped && assignment.PickedUpAt == nil {
		assignment.PickedUpAt = &now
	}
	if input.Status == enums.OrderStatusDelivered && assignment.DeliveredAt == nil {
		assignment.DeliveredAt = &now
	}

	err = l.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := l.repo.WithTx(tx).SaveDelivery(ctx, assignment); err != nil {
			return err
		}
		return l.orders.WithTx(tx).UpdateStatus(ctx, order.ID, input.Status)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save delivery status")
	}

	ctx = l.logg.WithOrderID(ctx, order.ID.String())
	l.logg.Info(ctx, "delivery status updated")
	l.metrics.IncTransition("delivery", input.Status.String())

	l.broadcaster.Publish(ctx, realtime.OrderChannel(order.ID), realtime.EventOrderUpdated, OrderUpdatedEvent{
		OrderID: order.ID,
		Status:  input.Status,
	})

	return toDeliveryView(assignment), nil
}

func (l *lifecycle) GetProduction(ctx context.Context, id uuid.UUID, actor Actor) (*ProductionAssignmentView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment id required")
	}
	assignment, err := l.repo.FindProductionByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
	}
	if err := authorizeCenterActor(actor, assignment.CenterID); err != nil {
		return nil, err
	}
	return toProductionView(assignment), nil
}

func (l *lifecycle) ListCenterQueue(ctx context.Context, centerID uuid.UUID, actor Actor) ([]ProductionAssignmentView, error) {
	if centerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "center id required")
	}
	if err := authorizeCenterActor(actor, centerID); err != nil {
		return nil, err
	}

	open := []enums.ProductionStatus{
		enums.ProductionStatusPending,
		enums.ProductionStatusAccepted,
		enums.ProductionStatusPrinting,
		enums.ProductionStatusReadyForPickup,
	}
	list, err := l.repo.ListProductionByCenter(ctx, centerID, open)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list center queue")
	}

	views := make([]ProductionAssignmentView, 0, len(list))
	for i := range list {
		views = append(views, *toProductionView(&list[i]))
	}
	return views, nil
}

// validateProductionTransition enforces the one-step-forward pipeline.
// Cancelled is reachable from any non-terminal state.
func validateProductionTransition(current, target enums.ProductionStatus) error {
	if current.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("assignment is %s and can no longer change", current))
	}
	if target == enums.ProductionStatusCancelled {
		return nil
	}
	if target.Rank() != current.Rank()+1 {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move from %s to %s", current, target))
	}
	return nil
}

// validateDeliveryTransition enforces forward-only coarse order progress.
func validateDeliveryTransition(current, target enums.OrderStatus) error {
	if current.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order is %s and can no longer change", current))
	}
	if target == enums.OrderStatusCancelled {
		return nil
	}
	if target.Rank() <= current.Rank() {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move from %s to %s", current, target))
	}
	return nil
}

func authorizeCenterActor(actor Actor, centerID uuid.UUID) error {
	if actor.Role == enums.RoleAdmin {
		return nil
	}
	if actor.Role == enums.RolePrintCenter && actor.CenterID != nil && *actor.CenterID == centerID {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "assignment does not belong to caller")
}

func authorizeAgentActor(actor Actor, agentID uuid.UUID) error {
	if actor.Role == enums.RoleAdmin {
		return nil
	}
	if actor.Role == enums.RoleAgent && actor.AgentID != nil && *actor.AgentID == agentID {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "assignment does not belong to caller")
}
