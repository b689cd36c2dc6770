package locations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printlink/printlink-backend/pkg/db/models"
	"github.com/printlink/printlink-backend/pkg/pagination"
)

// Repository manages the append-only location ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Append(ctx context.Context, record *models.LocationRecord) error
	Latest(ctx context.Context, agentID uuid.UUID) (*models.LocationRecord, error)
	Query(ctx context.Context, filters QueryFilters, params pagination.Params) ([]models.LocationRecord, string, error)
}
