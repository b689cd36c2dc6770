package tracking

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/printlink/printlink-backend/internal/assignments"
	"github.com/printlink/printlink-backend/pkg/db/models"
	"github.com/printlink/printlink-backend/pkg/enums"
	pkgerrors "github.com/printlink/printlink-backend/pkg/errors"
	"github.com/printlink/printlink-backend/pkg/logger"
	"github.com/printlink/printlink-backend/pkg/routing"
	"github.com/printlink/printlink-backend/pkg/types"
)

type trackingFixture struct {
	orders      map[uuid.UUID]*models.Order
	productions map[uuid.UUID]*models.ProductionAssignment
	deliveries  map[uuid.UUID]*models.DeliveryAssignment
	centers     map[uuid.UUID]*models.PrintCenter
	agents      map[uuid.UUID]*models.DeliveryAgent
	positions   map[uuid.UUID]*models.LocationRecord
	estimate    routing.Estimate
}

func newTrackingFixture() *trackingFixture {
	return &trackingFixture{
		orders:      map[uuid.UUID]*models.Order{},
		productions: map[uuid.UUID]*models.ProductionAssignment{},
		deliveries:  map[uuid.UUID]*models.DeliveryAssignment{},
		centers:     map[uuid.UUID]*models.PrintCenter{},
		agents:      map[uuid.UUID]*models.DeliveryAgent{},
		positions:   map[uuid.UUID]*models.LocationRecord{},
		estimate: routing.Estimate{
			DistanceMeters:  1200,
			DurationSeconds: 240,
			Source:          routing.SourceRouted,
		},
	}
}

func (f *trackingFixture) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if order, ok := f.orders[id]; ok {
		return order, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *trackingFixture) FindByIDPrefix(ctx context.Context, prefix string, limit int) ([]models.Order, error) {
	normalized := strings.ToLower(strings.ReplaceAll(prefix, "-", ""))
	var matches []models.Order
	for _, order := range f.orders {
		compact := strings.ReplaceAll(order.ID.String(), "-", "")
		if strings.HasPrefix(compact, normalized) {
			matches = append(matches, *order)
			if len(matches) >= limit {
				break
			}
		}
	}
	return matches, nil
}

func (f *trackingFixture) FindProductionByID(ctx context.Context, id uuid.UUID) (*models.ProductionAssignment, error) {
	for _, p := range f.productions {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *trackingFixture) FindProductionByOrderID(ctx context.Context, orderID uuid.UUID) (*models.ProductionAssignment, error) {
	if p, ok := f.productions[orderID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *trackingFixture) FindDeliveryByOrderID(ctx context.Context, orderID uuid.UUID) (*models.DeliveryAssignment, error) {
	if d, ok := f.deliveries[orderID]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type centerFixture struct{ f *trackingFixture }

func (c centerFixture) FindByID(ctx context.Context, id uuid.UUID) (*models.PrintCenter, error) {
	if center, ok := c.f.centers[id]; ok {
		return center, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type agentFixture struct{ f *trackingFixture }

func (a agentFixture) FindByID(ctx context.Context, id uuid.UUID) (*models.DeliveryAgent, error) {
	if agent, ok := a.f.agents[id]; ok {
		return agent, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type positionFixture struct{ f *trackingFixture }

func (p positionFixture) Latest(ctx context.Context, agentID uuid.UUID) (*models.LocationRecord, error) {
	if record, ok := p.f.positions[agentID]; ok {
		return record, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type routerFixture struct{ f *trackingFixture }

func (r routerFixture) RouteEstimate(ctx context.Context, path []types.GeographyPoint) (routing.Estimate, error) {
	return r.f.estimate, nil
}

func newTestService(t *testing.T, f *trackingFixture) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "tracking-test", Output: io.Discard})
	svc, err := NewService(f, f, centerFixture{f}, agentFixture{f}, positionFixture{f}, routerFixture{f}, logg)
	require.NoError(t, err)
	return svc
}

func seedAssignedOrder(f *trackingFixture) (*models.Order, *models.ProductionAssignment, *models.PrintCenter) {
	lat, lng := 30.0300, 31.2100
	centerLat, centerLng := 30.0280, 31.2080
	center := &models.PrintCenter{
		ID:     uuid.New(),
		Name:   "Downtown Print Hub",
		Lat:    &centerLat,
		Lng:    &centerLng,
		Active: true,
	}
	order := &models.Order{
		ID:          uuid.New(),
		CustomerID:  uuid.New(),
		Kind:        enums.OrderKindPrint,
		Status:      enums.OrderStatusProcessing,
		DeliveryLat: &lat,
		DeliveryLng: &lng,
		CreatedAt:   time.Now().UTC(),
	}
	production := &models.ProductionAssignment{
		ID:       uuid.New(),
		OrderID:  order.ID,
		CenterID: center.ID,
		Status:   enums.ProductionStatusPrinting,
	}
	f.centers[center.ID] = center
	f.orders[order.ID] = order
	f.productions[order.ID] = production
	return order, production, center
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

func TestTrackByOrderAsAdmin(t *testing.T) {
	f := newTrackingFixture()
	order, production, center := seedAssignedOrder(f)
	svc := newTestService(t, f)

	view, err := svc.TrackByOrder(context.Background(), order.ID.String(), assignments.Actor{
		UserID: uuid.New(),
		Role:   enums.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, order.ID, view.Order.ID)
	require.NotNil(t, view.Production)
	assert.Equal(t, production.ID, view.Production.ID)
	require.NotNil(t, view.Center)
	assert.Equal(t, center.Name, view.Center.Name)
	assert.Nil(t, view.Delivery)
}

func TestTrackByOrderAsOwner(t *testing.T) {
	f := newTrackingFixture()
	order, _, _ := seedAssignedOrder(f)
	svc := newTestService(t, f)

	view, err := svc.TrackByOrder(context.Background(), order.ID.String(), assignments.Actor{
		UserID: order.CustomerID,
		Role:   enums.RoleCustomer,
	})
	require.NoError(t, err)
	assert.Equal(t, order.ID, view.Order.ID)
}

func TestTrackByOrderStrangerIsForbidden(t *testing.T) {
	f := newTrackingFixture()
	order, _, _ := seedAssignedOrder(f)
	svc := newTestService(t, f)

	_, err := svc.TrackByOrder(context.Background(), order.ID.String(), assignments.Actor{
		UserID: uuid.New(),
		Role:   enums.RoleCustomer,
	})
	assertCode(t, err, pkgerrors.CodeForbidden)

	otherCenter := uuid.New()
	_, err = svc.TrackByOrder(context.Background(), order.ID.String(), assignments.Actor{
		UserID:   uuid.New(),
		Role:     enums.RolePrintCenter,
		CenterID: &otherCenter,
	})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestTrackByOrderAssignedCenter(t *testing.T) {
	f := newTrackingFixture()
	order, production, _ := seedAssignedOrder(f)
	svc := newTestService(t, f)

	view, err := svc.TrackByOrder(context.Background(), order.ID.String(), assignments.Actor{
		UserID:   uuid.New(),
		Role:     enums.RolePrintCenter,
		CenterID: &production.CenterID,
	})
	require.NoError(t, err)
	assert.Equal(t, order.ID, view.Order.ID)
}

func TestTrackByOrderShortPrefix(t *testing.T) {
	f := newTrackingFixture()
	order, _, _ := seedAssignedOrder(f)
	svc := newTestService(t, f)

	prefix := strings.ReplaceAll(order.ID.String(), "-", "")[:8]
	view, err := svc.TrackByOrder(context.Background(), prefix, assignments.Actor{
		UserID: uuid.New(),
		Role:   enums.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, order.ID, view.Order.ID)
	assert.Equal(t, prefix, view.Order.ShortID)
}

func TestTrackByOrderPrefixZeroMatches(t *testing.T) {
	f := newTrackingFixture()
	seedAssignedOrder(f)
	svc := newTestService(t, f)

	_, err := svc.TrackByOrder(context.Background(), "ffffffff", assignments.Actor{Role: enums.RoleAdmin})
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestTrackByOrderPrefixAmbiguous(t *testing.T) {
	f := newTrackingFixture()
	svc := newTestService(t, f)

	// Two orders sharing the first eight hex characters.
	first := uuid.MustParse("aabbccdd-0000-4000-8000-000000000001")
	second := uuid.MustParse("aabbccdd-0000-4000-8000-000000000002")
	f.orders[first] = &models.Order{ID: first, CustomerID: uuid.New(), Status: enums.OrderStatusPaid}
	f.orders[second] = &models.Order{ID: second, CustomerID: uuid.New(), Status: enums.OrderStatusPaid}

	_, err := svc.TrackByOrder(context.Background(), "aabbccdd", assignments.Actor{Role: enums.RoleAdmin})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestTrackByOrderRejectsMalformedReference(t *testing.T) {
	f := newTrackingFixture()
	svc := newTestService(t, f)

	_, err := svc.TrackByOrder(context.Background(), "aab-bccd", assignments.Actor{Role: enums.RoleAdmin})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.TrackByOrder(context.Background(), "aabbccdd0011", assignments.Actor{Role: enums.RoleAdmin})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestTrackPublic(t *testing.T) {
	f := newTrackingFixture()
	order, production, center := seedAssignedOrder(f)
	svc := newTestService(t, f)

	view, err := svc.TrackPublic(context.Background(), order.ID.String())
	require.NoError(t, err)
	assert.Equal(t, shortOrderID(order.ID), view.OrderShortID)
	assert.Equal(t, order.Status, view.OrderStatus)
	require.NotNil(t, view.ProductionStatus)
	assert.Equal(t, production.Status, *view.ProductionStatus)
	assert.Equal(t, center.Name, view.CenterName)
	require.NotNil(t, view.CenterPosition)
	assert.Equal(t, *center.Lat, view.CenterPosition.Lat)
}

func TestTrackPublicUnassignedOrder(t *testing.T) {
	f := newTrackingFixture()
	order := &models.Order{ID: uuid.New(), CustomerID: uuid.New(), Status: enums.OrderStatusPaid}
	f.orders[order.ID] = order
	svc := newTestService(t, f)

	view, err := svc.TrackPublic(context.Background(), order.ID.String())
	require.NoError(t, err)
	assert.Nil(t, view.ProductionStatus)
	assert.Empty(t, view.CenterName)
	assert.Nil(t, view.CenterPosition)
}

func TestDeliveryTrackingNoDeliveryYet(t *testing.T) {
	f := newTrackingFixture()
	_, production, center := seedAssignedOrder(f)
	svc := newTestService(t, f)

	view, err := svc.DeliveryTrackingFor(context.Background(), production.ID)
	require.NoError(t, err)
	assert.Equal(t, production.ID, view.Production.ID)
	require.NotNil(t, view.Center)
	assert.Equal(t, center.ID, view.Center.ID)
	assert.Nil(t, view.Delivery)
	assert.Nil(t, view.Position)
	assert.Nil(t, view.Route)
}

func TestDeliveryTrackingComposesPositionAndRoute(t *testing.T) {
	f := newTrackingFixture()
	order, production, _ := seedAssignedOrder(f)

	agent := &models.DeliveryAgent{ID: uuid.New(), UserID: uuid.New(), Name: "Hossam", Active: true}
	f.agents[agent.ID] = agent
	pickedUp := time.Now().UTC().Add(-10 * time.Minute)
	f.deliveries[order.ID] = &models.DeliveryAssignment{
		ID:         uuid.New(),
		OrderID:    order.ID,
		AgentID:    agent.ID,
		PickedUpAt: &pickedUp,
	}
	f.positions[agent.ID] = &models.LocationRecord{
		ID:        uuid.New(),
		AgentID:   agent.ID,
		Lat:       30.0290,
		Lng:       31.2090,
		CreatedAt: time.Now().UTC(),
	}
	svc := newTestService(t, f)

	view, err := svc.DeliveryTrackingFor(context.Background(), production.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Delivery)
	assert.Equal(t, agent.Name, view.Delivery.Agent.Name)
	require.NotNil(t, view.Position)
	assert.Equal(t, 30.0290, view.Position.Position.Lat)
	require.NotNil(t, view.Route)
	assert.Equal(t, routing.SourceRouted, view.Route.Source)
	assert.Equal(t, float64(1200), view.Route.DistanceMeters)
}

func TestDeliveryTrackingUnknownAssignment(t *testing.T) {
	f := newTrackingFixture()
	svc := newTestService(t, f)

	_, err := svc.DeliveryTrackingFor(context.Background(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}
