package locations

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/printlink/printlink-backend/pkg/db/models"
	pkgerrors "github.com/printlink/printlink-backend/pkg/errors"
	"github.com/printlink/printlink-backend/pkg/logger"
	"github.com/printlink/printlink-backend/pkg/pagination"
	"github.com/printlink/printlink-backend/pkg/realtime"
)

type stubLedgerRepo struct {
	appended []*models.LocationRecord
	latest   *models.LocationRecord
}

func (s *stubLedgerRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubLedgerRepo) Append(ctx context.Context, record *models.LocationRecord) error {
	record.ID = uuid.New()
	record.CreatedAt = time.Now().UTC()
	s.appended = append(s.appended, record)
	return nil
}

func (s *stubLedgerRepo) Latest(ctx context.Context, agentID uuid.UUID) (*models.LocationRecord, error) {
	if s.latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.latest, nil
}

func (s *stubLedgerRepo) Query(ctx context.Context, filters QueryFilters, params pagination.Params) ([]models.LocationRecord, string, error) {
	return nil, "", nil
}

type stubDeliveryLookup struct {
	delivery *models.DeliveryAssignment
}

func (s *stubDeliveryLookup) FindActiveDeliveryByAgent(ctx context.Context, agentID uuid.UUID) (*models.DeliveryAssignment, error) {
	if s.delivery == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.delivery, nil
}

type publishedEvent struct {
	channel string
	name    string
	payload any
}

type stubPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (s *stubPublisher) Publish(ctx context.Context, channel, name string, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, publishedEvent{channel: channel, name: name, payload: payload})
}

func (s *stubPublisher) published() []publishedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]publishedEvent, len(s.events))
	copy(out, s.events)
	return out
}

func newTestService(t *testing.T, repo *stubLedgerRepo, deliveries *stubDeliveryLookup, publisher *stubPublisher) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "locations-test", Output: io.Discard})
	svc, err := NewService(repo, deliveries, publisher, logg)
	require.NoError(t, err)
	return svc
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

func TestReportBroadcastsToOrderChannelWithActiveDelivery(t *testing.T) {
	repo := &stubLedgerRepo{}
	orderID := uuid.New()
	agentID := uuid.New()
	deliveries := &stubDeliveryLookup{delivery: &models.DeliveryAssignment{
		ID:      uuid.New(),
		OrderID: orderID,
		AgentID: agentID,
	}}
	publisher := &stubPublisher{}
	svc := newTestService(t, repo, deliveries, publisher)

	view, err := svc.Report(context.Background(), ReportInput{
		AgentID: agentID,
		Lat:     30.0444,
		Lng:     31.2357,
	})
	require.NoError(t, err)
	require.NotNil(t, view)
	require.NotNil(t, view.OrderID)
	assert.Equal(t, orderID, *view.OrderID)
	assert.Equal(t, 30.0444, view.Position.Lat)

	events := publisher.published()
	require.Len(t, events, 2)
	assert.Equal(t, realtime.AdminChannel, events[0].channel)
	assert.Equal(t, realtime.EventAgentMoved, events[0].name)
	assert.Equal(t, realtime.OrderChannel(orderID), events[1].channel)
	assert.Equal(t, realtime.EventLocationUpdated, events[1].name)
}

func TestReportWithoutActiveDeliveryIsAdminOnly(t *testing.T) {
	repo := &stubLedgerRepo{}
	publisher := &stubPublisher{}
	svc := newTestService(t, repo, &stubDeliveryLookup{}, publisher)

	view, err := svc.Report(context.Background(), ReportInput{
		AgentID: uuid.New(),
		Lat:     30.01,
		Lng:     31.22,
	})
	require.NoError(t, err)
	assert.Nil(t, view.OrderID)

	events := publisher.published()
	require.Len(t, events, 1)
	assert.Equal(t, realtime.AdminChannel, events[0].channel)
	assert.Equal(t, realtime.EventAgentMoved, events[0].name)
}

func TestReportValidation(t *testing.T) {
	svc := newTestService(t, &stubLedgerRepo{}, &stubDeliveryLookup{}, &stubPublisher{})
	ctx := context.Background()

	_, err := svc.Report(ctx, ReportInput{Lat: 30, Lng: 31})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Report(ctx, ReportInput{AgentID: uuid.New(), Lat: 91, Lng: 31})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Report(ctx, ReportInput{AgentID: uuid.New(), Lat: 30, Lng: -181})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestLatestMapsNotFound(t *testing.T) {
	svc := newTestService(t, &stubLedgerRepo{}, &stubDeliveryLookup{}, &stubPublisher{})

	_, err := svc.Latest(context.Background(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}
