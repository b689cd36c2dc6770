package printcenters

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printlink/printlink-backend/pkg/db/models"
	pkgerrors "github.com/printlink/printlink-backend/pkg/errors"
)

// Service exposes the print center directory.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.PrintCenter, error)
	Get(ctx context.Context, id uuid.UUID) (*models.PrintCenter, error)
	ListActive(ctx context.Context) ([]models.PrintCenter, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// RegisterInput captures the data needed to add a center to the directory.
type RegisterInput struct {
	Name    string   `json:"name"`
	Phone   *string  `json:"phone,omitempty"`
	Address *string  `json:"address,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
	OwnerID uuid.UUID
}

type service struct {
	repo Repository
}

// NewService wires a print center service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("print center repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.PrintCenter, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "center name required")
	}
	if input.OwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if (input.Lat == nil) != (input.Lng == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lat and lng must be provided together")
	}
	if input.Lat != nil {
		if *input.Lat < -90 || *input.Lat > 90 || *input.Lng < -180 || *input.Lng > 180 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "coordinates out of range")
		}
	}

	center := &models.PrintCenter{
		ID:      uuid.New(),
		Name:    name,
		Phone:   input.Phone,
		Address: input.Address,
		Lat:     input.Lat,
		Lng:     input.Lng,
		Active:  true,
		OwnerID: input.OwnerID,
	}
	if err := s.repo.Create(ctx, center); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create print center")
	}
	return center, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.PrintCenter, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "center id required")
	}
	center, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "print center not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load print center")
	}
	return center, nil
}

func (s *service) ListActive(ctx context.Context) ([]models.PrintCenter, error) {
	centers, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list print centers")
	}
	return centers, nil
}

func (s *service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "center id required")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update print center")
	}
	return nil
}
