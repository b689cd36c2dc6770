package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printlink/printlink-backend/pkg/db/models"
	pkgerrors "github.com/printlink/printlink-backend/pkg/errors"
)

// Service exposes the read surface other domains need on orders.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type service struct {
	repo Repository
}

// NewService wires an orders service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// RequiresProduction reports whether an order needs a print center at all.
// The order kind gates first; mixed orders fall through to the line items,
// where any print-producible reference makes the order eligible.
func RequiresProduction(order *models.Order) bool {
	if order == nil {
		return false
	}
	if !order.Kind.RequiresProduction() {
		return false
	}
	if len(order.Items) == 0 {
		// A print-kind order with no loaded items is assumed eligible.
		return true
	}
	for _, item := range order.Items {
		if item.RefKind.RequiresProduction() {
			return true
		}
	}
	return false
}
