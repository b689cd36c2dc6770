package assignments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printlink/printlink-backend/pkg/db/models"
	"github.com/printlink/printlink-backend/pkg/enums"
)

// Repository defines persistence operations for production and delivery
// assignments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateProduction(ctx context.Context, assignment *models.ProductionAssignment) error
	FindProductionByID(ctx context.Context, id uuid.UUID) (*models.ProductionAssignment, error)
	FindProductionByOrderID(ctx context.Context, orderID uuid.UUID) (*models.ProductionAssignment, error)
	ListProductionByCenter(ctx context.Context, centerID uuid.UUID, statuses []enums.ProductionStatus) ([]models.ProductionAssignment, error)
	SaveProduction(ctx context.Context, assignment *models.ProductionAssignment) error

	CreateDelivery(ctx context.Context, assignment *models.DeliveryAssignment) error
	FindDeliveryByID(ctx context.Context, id uuid.UUID) (*models.DeliveryAssignment, error)
	FindDeliveryByOrderID(ctx context.Context, orderID uuid.UUID) (*models.DeliveryAssignment, error)
	FindActiveDeliveryByAgent(ctx context.Context, agentID uuid.UUID) (*models.DeliveryAssignment, error)
	SaveDelivery(ctx context.Context, assignment *models.DeliveryAssignment) error
}
