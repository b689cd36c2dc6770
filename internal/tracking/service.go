package tracking

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printlink/printlink-backend/internal/assignments"
	"github.com/printlink/printlink-backend/pkg/db/models"
	"github.com/printlink/printlink-backend/pkg/enums"
	pkgerrors "github.com/printlink/printlink-backend/pkg/errors"
	"github.com/printlink/printlink-backend/pkg/logger"
	"github.com/printlink/printlink-backend/pkg/routing"
	"github.com/printlink/printlink-backend/pkg/types"
)

// maxPrefixLength is the longest order-id fragment treated as a short-id
// prefix rather than a malformed full id.
const maxPrefixLength = 8

// Service answers tracking queries by composing order, assignment, courier
// position and routing state. It reads everything and owns nothing.
type Service interface {
	TrackByOrder(ctx context.Context, idOrPrefix string, actor assignments.Actor) (*OrderTrackingView, error)
	TrackPublic(ctx context.Context, idOrPrefix string) (*PublicTrackingView, error)
	DeliveryTrackingFor(ctx context.Context, productionAssignmentID uuid.UUID) (*DeliveryTrackingView, error)
}

type orderLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByIDPrefix(ctx context.Context, prefix string, limit int) ([]models.Order, error)
}

type assignmentLookup interface {
	FindProductionByID(ctx context.Context, id uuid.UUID) (*models.ProductionAssignment, error)
	FindProductionByOrderID(ctx context.Context, orderID uuid.UUID) (*models.ProductionAssignment, error)
	FindDeliveryByOrderID(ctx context.Context, orderID uuid.UUID) (*models.DeliveryAssignment, error)
}

type centerLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.PrintCenter, error)
}

type agentLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.DeliveryAgent, error)
}

type positionLookup interface {
	Latest(ctx context.Context, agentID uuid.UUID) (*models.LocationRecord, error)
}

type routeEstimator interface {
	RouteEstimate(ctx context.Context, path []types.GeographyPoint) (routing.Estimate, error)
}

type service struct {
	orders    orderLookup
	lookups   assignmentLookup
	centers   centerLookup
	agents    agentLookup
	positions positionLookup
	router    routeEstimator
	logg      *logger.Logger
}

// NewService wires the tracking facade. The lookups are satisfied by the
// orders, assignments, printcenters, agents and locations repositories.
func NewService(
	orders orderLookup,
	lookups assignmentLookup,
	centers centerLookup,
	agents agentLookup,
	positions positionLookup,
	router routeEstimator,
	logg *logger.Logger,
) (Service, error) {
	if orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if lookups == nil {
		return nil, fmt.Errorf("assignments repository required")
	}
	if centers == nil {
		return nil, fmt.Errorf("print centers repository required")
	}
	if agents == nil {
		return nil, fmt.Errorf("agents repository required")
	}
	if positions == nil {
		return nil, fmt.Errorf("locations repository required")
	}
	if router == nil {
		return nil, fmt.Errorf("routing client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		orders:    orders,
		lookups:   lookups,
		centers:   centers,
		agents:    agents,
		positions: positions,
		router:    router,
		logg:      logg,
	}, nil
}

// resolveOrder turns a full order id or an unambiguous short prefix into the
// order record. Prefixes with zero matches are not found; prefixes matching
// more than one order are rejected rather than silently picking one.
func (s *service) resolveOrder(ctx context.Context, idOrPrefix string) (*models.Order, error) {
	ref := strings.TrimSpace(idOrPrefix)
	if ref == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order reference required")
	}

	if id, err := uuid.Parse(ref); err == nil {
		order, err := s.orders.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		return order, nil
	}

	if len(ref) > maxPrefixLength || strings.ContainsAny(ref, "-_:. ") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order reference is neither an id nor a short prefix")
	}

	matches, err := s.orders.FindByIDPrefix(ctx, ref, 2)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve order prefix")
	}
	switch len(matches) {
	case 0:
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no order matches the given prefix")
	case 1:
		return &matches[0], nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order prefix is ambiguous")
	}
}

func (s *service) TrackByOrder(ctx context.Context, idOrPrefix string, actor assignments.Actor) (*OrderTrackingView, error) {
	order, err := s.resolveOrder(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}

	production, center, err := s.productionState(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	delivery, agent, err := s.deliveryState(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	if err := authorizeTracking(actor, order, production, delivery); err != nil {
		return nil, err
	}

	view := &OrderTrackingView{Order: toOrderSummary(order)}
	if production != nil {
		summary := toProductionSummary(production)
		view.Production = &summary
		view.Center = toCenterSummary(center)
	}
	view.Delivery = toDeliverySummary(delivery, agent)
	return view, nil
}

func (s *service) TrackPublic(ctx context.Context, idOrPrefix string) (*PublicTrackingView, error) {
	order, err := s.resolveOrder(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}

	view := &PublicTrackingView{
		OrderShortID: shortOrderID(order.ID),
		OrderStatus:  order.Status,
	}

	production, center, err := s.productionState(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if production != nil {
		status := production.Status
		view.ProductionStatus = &status
	}
	if center != nil {
		view.CenterName = center.Name
		if center.Lat != nil && center.Lng != nil {
			view.CenterPosition = &types.GeographyPoint{Lat: *center.Lat, Lng: *center.Lng}
		}
	}
	return view, nil
}

func (s *service) DeliveryTrackingFor(ctx context.Context, productionAssignmentID uuid.UUID) (*DeliveryTrackingView, error) {
	if productionAssignmentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "production assignment id required")
	}

	production, err := s.lookups.FindProductionByID(ctx, productionAssignmentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "production assignment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load production assignment")
	}

	order, err := s.orders.FindByID(ctx, production.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assigned order")
	}

	center, err := s.centers.FindByID(ctx, production.CenterID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load print center")
	}

	view := &DeliveryTrackingView{
		Order:      toOrderSummary(order),
		Center:     toCenterSummary(center),
		Production: toProductionSummary(production),
	}

	delivery, agent, err := s.deliveryState(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if delivery == nil {
		// No courier bound yet. The view itself is the "no delivery yet"
		// answer.
		return view, nil
	}
	view.Delivery = toDeliverySummary(delivery, agent)

	record, err := s.positions.Latest(ctx, delivery.AgentID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load latest position")
		}
		return view, nil
	}
	position := types.GeographyPoint{Lat: record.Lat, Lng: record.Lng}
	view.Position = &PositionSummary{Position: position, RecordedAt: record.CreatedAt}

	if view.Order.Delivery != nil {
		estimate, err := s.router.RouteEstimate(ctx, []types.GeographyPoint{position, *view.Order.Delivery})
		if err != nil {
			s.logg.Warn(s.logg.WithOrderID(ctx, order.ID.String()), "route estimate unavailable for delivery tracking")
		} else {
			view.Route = &estimate
		}
	}
	return view, nil
}

func (s *service) productionState(ctx context.Context, orderID uuid.UUID) (*models.ProductionAssignment, *models.PrintCenter, error) {
	production, err := s.lookups.FindProductionByOrderID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, nil
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load production assignment")
	}
	center, err := s.centers.FindByID(ctx, production.CenterID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return production, nil, nil
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load print center")
	}
	return production, center, nil
}

func (s *service) deliveryState(ctx context.Context, orderID uuid.UUID) (*models.DeliveryAssignment, *models.DeliveryAgent, error) {
	delivery, err := s.lookups.FindDeliveryByOrderID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, nil
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery assignment")
	}
	agent, err := s.agents.FindByID(ctx, delivery.AgentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return delivery, nil, nil
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery agent")
	}
	return delivery, agent, nil
}

// authorizeTracking admits the order's owner, the assigned print center, the
// assigned courier and admins. Everyone else is refused with an authorization
// error even when the order exists.
func authorizeTracking(actor assignments.Actor, order *models.Order, production *models.ProductionAssignment, delivery *models.DeliveryAssignment) error {
	switch actor.Role {
	case enums.RoleAdmin:
		return nil
	case enums.RoleCustomer:
		if actor.UserID == order.CustomerID {
			return nil
		}
	case enums.RolePrintCenter:
		if production != nil && actor.CenterID != nil && *actor.CenterID == production.CenterID {
			return nil
		}
	case enums.RoleAgent:
		if delivery != nil && actor.AgentID != nil && *actor.AgentID == delivery.AgentID {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to track this order")
}
