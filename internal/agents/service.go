package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printlink/printlink-backend/pkg/db/models"
	pkgerrors "github.com/printlink/printlink-backend/pkg/errors"
)

// Service exposes the delivery agent directory.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.DeliveryAgent, error)
	Get(ctx context.Context, id uuid.UUID) (*models.DeliveryAgent, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.DeliveryAgent, error)
	ListActive(ctx context.Context) ([]models.DeliveryAgent, error)
}

// RegisterInput captures the data needed to add an agent to the directory.
type RegisterInput struct {
	UserID uuid.UUID
	Name   string  `json:"name"`
	Phone  *string `json:"phone,omitempty"`
}

type service struct {
	repo Repository
}

// NewService wires a delivery agent service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("agents repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.DeliveryAgent, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent name required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	agent := &models.DeliveryAgent{
		ID:     uuid.New(),
		UserID: input.UserID,
		Name:   name,
		Phone:  input.Phone,
		Active: true,
	}
	if err := s.repo.Create(ctx, agent); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create delivery agent")
	}
	return agent, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.DeliveryAgent, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	agent, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery agent not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery agent")
	}
	return agent, nil
}

func (s *service) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.DeliveryAgent, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	agent, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery agent not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery agent")
	}
	return agent, nil
}

func (s *service) ListActive(ctx context.Context) ([]models.DeliveryAgent, error) {
	list, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list delivery agents")
	}
	return list, nil
}
