package assignments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printlink/printlink-backend/pkg/db/models"
	"github.com/printlink/printlink-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository returns an assignments repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateProduction(ctx context.Context, assignment *models.ProductionAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *repository) FindProductionByID(ctx context.Context, id uuid.UUID) (*models.ProductionAssignment, error) {
	var assignment models.ProductionAssignment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *repository) FindProductionByOrderID(ctx context.Context, orderID uuid.UUID) (*models.ProductionAssignment, error) {
	var assignment models.ProductionAssignment
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *repository) ListProductionByCenter(ctx context.Context, centerID uuid.UUID, statuses []enums.ProductionStatus) ([]models.ProductionAssignment, error) {
	query := r.db.WithContext(ctx).Where("center_id = ?", centerID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var list []models.ProductionAssignment
	if err := query.Order("created_at ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) SaveProduction(ctx context.Context, assignment *models.ProductionAssignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

func (r *repository) CreateDelivery(ctx context.Context, assignment *models.DeliveryAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *repository) FindDeliveryByID(ctx context.Context, id uuid.UUID) (*models.DeliveryAssignment, error) {
	var assignment models.DeliveryAssignment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *repository) FindDeliveryByOrderID(ctx context.Context, orderID uuid.UUID) (*models.DeliveryAssignment, error) {
	var assignment models.DeliveryAssignment
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

// FindActiveDeliveryByAgent returns the agent's most recent undelivered
// assignment, if any.
func (r *repository) FindActiveDeliveryByAgent(ctx context.Context, agentID uuid.UUID) (*models.DeliveryAssignment, error) {
	var assignment models.DeliveryAssignment
	err := r.db.WithContext(ctx).
		Where("agent_id = ? AND delivered_at IS NULL", agentID).
		Order("created_at DESC").
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *repository) SaveDelivery(ctx context.Context, assignment *models.DeliveryAssignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}
