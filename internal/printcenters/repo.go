package printcenters

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printlink/printlink-backend/pkg/db/models"
)

// Repository manages persistence for print centers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, center *models.PrintCenter) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.PrintCenter, error)
	ListActive(ctx context.Context) ([]models.PrintCenter, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a print center repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, center *models.PrintCenter) error {
	return r.db.WithContext(ctx).Create(center).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PrintCenter, error) {
	var center models.PrintCenter
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&center).Error; err != nil {
		return nil, err
	}
	return &center, nil
}

// ListActive returns active centers ordered by creation time so callers get
// a stable tie-break when distances are equal.
func (r *repository) ListActive(ctx context.Context) ([]models.PrintCenter, error) {
	var centers []models.PrintCenter
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at ASC, id ASC").
		Find(&centers).Error
	if err != nil {
		return nil, err
	}
	return centers, nil
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.PrintCenter{}).
		Where("id = ?", id).
		Update("active", active).Error
}
