package assignments

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/printlink/printlink-backend/pkg/db/models"
	"github.com/printlink/printlink-backend/pkg/enums"
	"github.com/printlink/printlink-backend/pkg/logger"
)

func setupAssignmentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  kind TEXT NOT NULL DEFAULT 'print',
  status TEXT NOT NULL DEFAULT 'created',
  total_cents INTEGER NOT NULL DEFAULT 0,
  currency TEXT NOT NULL DEFAULT 'EGP',
  delivery_lat REAL,
  delivery_lng REAL,
  delivery_notes TEXT,
  paid_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS order_line_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  ref_kind TEXT NOT NULL,
  ref_id TEXT,
  name TEXT NOT NULL,
  qty INTEGER NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  total_cents INTEGER NOT NULL,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS print_centers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  phone TEXT,
  address TEXT,
  lat REAL,
  lng REAL,
  active INTEGER NOT NULL DEFAULT 1,
  owner_id TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS production_assignments (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL UNIQUE,
  center_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  notes TEXT,
  accepted_at DATETIME,
  completed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS delivery_agents (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  phone TEXT,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS delivery_assignments (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL UNIQUE,
  agent_id TEXT NOT NULL,
  picked_up_at DATETIME,
  delivered_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type publishedEvent struct {
	Channel string
	Name    string
	Payload any
}

type stubBroadcaster struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (b *stubBroadcaster) Publish(_ context.Context, channel, name string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, publishedEvent{Channel: channel, Name: name, Payload: payload})
}

func (b *stubBroadcaster) published() []publishedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]publishedEvent, len(b.events))
	copy(out, b.events)
	return out
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func seedPaidPrintOrder(t *testing.T, db *gorm.DB, lat, lng *float64) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:          uuid.New(),
		CustomerID:  uuid.New(),
		Kind:        enums.OrderKindPrint,
		Status:      enums.OrderStatusPaid,
		TotalCents:  1500,
		Currency:    "EGP",
		DeliveryLat: lat,
		DeliveryLng: lng,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func seedCenter(t *testing.T, db *gorm.DB, name string, lat, lng *float64, active bool) *models.PrintCenter {
	t.Helper()
	center := &models.PrintCenter{
		ID:      uuid.New(),
		Name:    name,
		Lat:     lat,
		Lng:     lng,
		Active:  active,
		OwnerID: uuid.New(),
	}
	require.NoError(t, db.Create(center).Error)
	return center
}

func seedAgent(t *testing.T, db *gorm.DB, active bool) *models.DeliveryAgent {
	t.Helper()
	agent := &models.DeliveryAgent{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Name:   "Test Agent",
		Active: active,
	}
	require.NoError(t, db.Create(agent).Error)
	return agent
}

func floatPtr(v float64) *float64 { return &v }
