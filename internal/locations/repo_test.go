package locations

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/printlink/printlink-backend/pkg/db/models"
	"github.com/printlink/printlink-backend/pkg/pagination"
)

func setupLocationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	table := `
CREATE TABLE IF NOT EXISTS location_records (
  id TEXT PRIMARY KEY,
  agent_id TEXT NOT NULL,
  order_id TEXT,
  lat REAL NOT NULL,
  lng REAL NOT NULL,
  address TEXT,
  heading REAL,
  speed_kmh REAL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(table).Error)
	return db
}

func appendRecord(t *testing.T, db *gorm.DB, agentID uuid.UUID, lat, lng float64, at time.Time) *models.LocationRecord {
	t.Helper()
	record := &models.LocationRecord{
		ID:        uuid.New(),
		AgentID:   agentID,
		Lat:       lat,
		Lng:       lng,
		CreatedAt: at,
	}
	require.NoError(t, db.Create(record).Error)
	return record
}

func TestLatestReturnsNewestRecord(t *testing.T) {
	db := setupLocationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	agentID := uuid.New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	appendRecord(t, db, agentID, 30.01, 31.20, base)
	appendRecord(t, db, agentID, 30.02, 31.21, base.Add(time.Minute))
	newest := appendRecord(t, db, agentID, 30.03, 31.22, base.Add(2*time.Minute))

	// Another agent's pings must not bleed in.
	appendRecord(t, db, uuid.New(), 29.00, 30.00, base.Add(time.Hour))

	latest, err := repo.Latest(ctx, agentID)
	require.NoError(t, err)
	assert.Equal(t, newest.ID, latest.ID)
	assert.Equal(t, 30.03, latest.Lat)
}

func TestLatestBreaksTimestampTiesByInsertionOrder(t *testing.T) {
	db := setupLocationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	agentID := uuid.New()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Same created_at for both pings; the time-ordered v7 ids the service
	// mints keep the id tiebreaker chronological.
	for _, lat := range []float64{30.01, 30.02} {
		record := &models.LocationRecord{
			ID:        uuid.Must(uuid.NewV7()),
			AgentID:   agentID,
			Lat:       lat,
			Lng:       31.20,
			CreatedAt: at,
		}
		require.NoError(t, db.Create(record).Error)
	}

	latest, err := repo.Latest(ctx, agentID)
	require.NoError(t, err)
	assert.Equal(t, 30.02, latest.Lat)
}

func TestLatestNoRecords(t *testing.T) {
	db := setupLocationsTestDB(t)
	repo := NewRepository(db)

	_, err := repo.Latest(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestQueryPaginatesNewestFirst(t *testing.T) {
	db := setupLocationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	agentID := uuid.New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		appendRecord(t, db, agentID, 30.0+float64(i)/100, 31.2, base.Add(time.Duration(i)*time.Minute))
	}

	filters := QueryFilters{AgentID: &agentID}
	first, next, err := repo.Query(ctx, filters, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotEmpty(t, next)
	assert.True(t, first[0].CreatedAt.After(first[1].CreatedAt))

	second, next2, err := repo.Query(ctx, filters, pagination.Params{Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, second, 2)
	require.NotEmpty(t, next2)
	assert.True(t, first[1].CreatedAt.After(second[0].CreatedAt))

	third, next3, err := repo.Query(ctx, filters, pagination.Params{Limit: 2, Cursor: next2})
	require.NoError(t, err)
	require.Len(t, third, 1)
	assert.Empty(t, next3)
}

func TestQueryTimeWindow(t *testing.T) {
	db := setupLocationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	agentID := uuid.New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	appendRecord(t, db, agentID, 30.01, 31.20, base)
	inWindow := appendRecord(t, db, agentID, 30.02, 31.21, base.Add(time.Hour))
	appendRecord(t, db, agentID, 30.03, 31.22, base.Add(2*time.Hour))

	from := base.Add(30 * time.Minute)
	to := base.Add(90 * time.Minute)
	records, _, err := repo.Query(ctx, QueryFilters{AgentID: &agentID, From: &from, To: &to}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, inWindow.ID, records[0].ID)
}
