package assignments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printlink/printlink-backend/internal/orders"
	"github.com/printlink/printlink-backend/internal/printcenters"
	"github.com/printlink/printlink-backend/pkg/config"
	"github.com/printlink/printlink-backend/pkg/db"
	"github.com/printlink/printlink-backend/pkg/db/models"
	"github.com/printlink/printlink-backend/pkg/enums"
	pkgerrors "github.com/printlink/printlink-backend/pkg/errors"
	"github.com/printlink/printlink-backend/pkg/geo"
	"github.com/printlink/printlink-backend/pkg/logger"
	"github.com/printlink/printlink-backend/pkg/metrics"
	"github.com/printlink/printlink-backend/pkg/realtime"
	"github.com/printlink/printlink-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Matcher binds paid print orders to their nearest active print center.
type Matcher interface {
	AssignAndNotify(ctx context.Context, orderID uuid.UUID) (*ProductionAssignmentView, error)
}

type matcher struct {
	repo        Repository
	orders      orders.Repository
	centers     printcenters.Repository
	tx          txRunner
	broadcaster realtime.Broadcaster
	metrics     *metrics.FulfillmentMetrics
	logg        *logger.Logger
	cfg         config.AssignmentConfig
}

// NewMatcher builds the assignment matcher with the required dependencies.
func NewMatcher(
	repo Repository,
	ordersRepo orders.Repository,
	centersRepo printcenters.Repository,
	tx txRunner,
	broadcaster realtime.Broadcaster,
	m *metrics.FulfillmentMetrics,
	logg *logger.Logger,
	cfg config.AssignmentConfig,
) (Matcher, error) {
	if repo == nil {
		return nil, fmt.Errorf("assignments repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if centersRepo == nil {
		return nil, fmt.Errorf("print centers repository required")
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
	return &matcher{
		repo:        repo,
		orders:      ordersRepo,
		centers:     centersRepo,
		tx:          tx,
		broadcaster: broadcaster,
		metrics:     m,
		logg:        logg,
		cfg:         cfg,
	}, nil
}

// AssignAndNotify is idempotent: repeated calls for the same order return
// the existing assignment. Orders with no print work and windows with no
// active centers resolve to a nil view without error.
func (m *matcher) AssignAndNotify(ctx context.Context, orderID uuid.UUID) (*ProductionAssignmentView, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	ctx = m.logg.WithOrderID(ctx, orderID.String())

	if existing, err := m.repo.FindProductionByOrderID(ctx, orderID); err == nil {
		m.metrics.IncAssignment("existing")
		return toProductionView(existing), nil
	} else if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup existing assignment")
	}

	order, err := m.orders.FindByID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if !orders.RequiresProduction(order) {
		m.logg.Info(ctx, "order has no print work, skipping assignment")
		m.metrics.IncAssignment("skipped")
		return nil, nil
	}

	centers, err := m.centers.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list print centers")
	}
	if len(centers) == 0 {
		m.logg.Warn(ctx, "no active print centers available")
		m.metrics.IncAssignment("no_centers")
		return nil, nil
	}

	chosen := m.pickNearest(order, centers)

	assignment := &models.ProductionAssignment{
		ID:       uuid.New(),
		OrderID:  order.ID,
		CenterID: chosen.ID,
		Status:   enums.ProductionStatusPending,
	}

	err = m.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := m.repo.WithTx(tx)
		if err := repo.CreateProduction(ctx, assignment); err != nil {
			return err
		}
		if order.Status == enums.OrderStatusPaid {
			if err := m.orders.WithTx(tx).UpdateStatus(ctx, order.ID, enums.OrderStatusProcessing); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			// A concurrent call won the insert; the existing row is the
			// answer either way.
			existing, findErr := m.repo.FindProductionByOrderID(ctx, orderID)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "refetch raced assignment")
			}
			m.metrics.IncAssignment("raced")
			return toProductionView(existing), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create assignment")
	}

	ctx = m.logg.WithCenterID(ctx, chosen.ID.String())
	m.logg.Info(ctx, "production assignment created")
	m.metrics.IncAssignment("created")

	m.broadcaster.Publish(ctx, realtime.CenterChannel(chosen.ID), realtime.EventProductionAssigned, ProductionAssignedEvent{
		AssignmentID: assignment.ID,
		OrderID:      order.ID,
		CenterID:     chosen.ID,
		Status:       assignment.Status,
	})
	m.broadcaster.Publish(ctx, realtime.OrderChannel(order.ID), realtime.EventOrderUpdated, OrderUpdatedEvent{
		OrderID: order.ID,
		Status:  enums.OrderStatusProcessing,
	})

	return toProductionView(assignment), nil
}

// pickNearest selects the closest coordinate-bearing center to the order's
// delivery point. Centers are already ordered by creation time, so a strict
// comparison keeps the earliest center on distance ties. When no center has
// coordinates the lowest-id active center is used.
func (m *matcher) pickNearest(order *models.Order, centers []models.PrintCenter) models.PrintCenter {
	target := types.GeographyPoint{Lat: m.cfg.DefaultLat, Lng: m.cfg.DefaultLng}
	if order.DeliveryLat != nil && order.DeliveryLng != nil {
		target = types.GeographyPoint{Lat: *order.DeliveryLat, Lng: *order.DeliveryLng}
	}

	var best *models.PrintCenter
	bestDist := 0.0
	for i := range centers {
		c := centers[i]
		if c.Lat == nil || c.Lng == nil {
			continue
		}
		dist := geo.Distance(target, types.GeographyPoint{Lat: *c.Lat, Lng: *c.Lng})
		if best == nil || dist < bestDist {
			best = &centers[i]
			bestDist = dist
		}
	}
	if best != nil {
		return *best
	}

	lowest := centers[0]
	for _, c := range centers[1:] {
		if c.ID.String() < lowest.ID.String() {
			lowest = c
		}
	}
	return lowest
}
