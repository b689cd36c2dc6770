package orders

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printlink/printlink-backend/pkg/db/models"
	"github.com/printlink/printlink-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDPrefix matches orders whose id, with separators stripped, starts
// with prefix. Callers pass limit 2 to distinguish unique from ambiguous.
func (r *repository) FindByIDPrefix(ctx context.Context, prefix string, limit int) ([]models.Order, error) {
	normalized := strings.ToLower(strings.TrimSpace(prefix))
	if limit <= 0 {
		limit = 2
	}

	var matches []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("replace(lower(CAST(id AS TEXT)), '-', '') LIKE ?", normalized+"%").
		Order("created_at ASC").
		Limit(limit).
		Find(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}
