package locations

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printlink/printlink-backend/pkg/db/models"
	pkgerrors "github.com/printlink/printlink-backend/pkg/errors"
	"github.com/printlink/printlink-backend/pkg/logger"
	"github.com/printlink/printlink-backend/pkg/pagination"
	"github.com/printlink/printlink-backend/pkg/realtime"
	"github.com/printlink/printlink-backend/pkg/types"
)

// Service is the location ledger: append-only writes plus the latest and
// history reads.
type Service interface {
	Report(ctx context.Context, input ReportInput) (*RecordView, error)
	Latest(ctx context.Context, agentID uuid.UUID) (*RecordView, error)
	Query(ctx context.Context, filters QueryFilters, params pagination.Params) (*RecordPage, error)
}

type deliveryLookup interface {
	FindActiveDeliveryByAgent(ctx context.Context, agentID uuid.UUID) (*models.DeliveryAssignment, error)
}

type service struct {
	repo        Repository
	deliveries  deliveryLookup
	broadcaster realtime.Broadcaster
	logg        *logger.Logger
}

// NewService wires the location ledger service. The deliveries lookup is
// satisfied by the assignments repository.
func NewService(repo Repository, deliveries deliveryLookup, broadcaster realtime.Broadcaster, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("locations repository required")
	}
	if deliveries == nil {
		return nil, fmt.Errorf("assignments repository required")
	}
	if broadcaster == nil {
		return nil, fmt.Errorf("broadcaster required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:        repo,
		deliveries:  deliveries,
		broadcaster: broadcaster,
		logg:        logg,
	}, nil
}

func (s *service) Report(ctx context.Context, input ReportInput) (*RecordView, error) {
	if input.AgentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	if input.Lat < -90 || input.Lat > 90 || input.Lng < -180 || input.Lng > 180 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coordinates out of range")
	}

	// V7 ids are time-ordered, so the id tiebreaker in Latest and Query
	// reflects insertion order when pings share a created_at.
	record := &models.LocationRecord{
		ID:       uuid.Must(uuid.NewV7()),
		AgentID:  input.AgentID,
		Lat:      input.Lat,
		Lng:      input.Lng,
		Address:  input.Address,
		Heading:  input.Heading,
		SpeedKMH: input.SpeedKMH,
	}

	// The ping is stamped with the agent's active order when one exists so
	// order-channel subscribers can follow the courier.
	var activeOrderID *uuid.UUID
	delivery, err := s.deliveries.FindActiveDeliveryByAgent(ctx, input.AgentID)
	switch {
	case err == nil:
		activeOrderID = &delivery.OrderID
		record.OrderID = activeOrderID
	case err == gorm.ErrRecordNotFound:
		// no active delivery, admin channel only
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup active delivery")
	}

	if err := s.repo.Append(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append location record")
	}

	position := types.GeographyPoint{Lat: record.Lat, Lng: record.Lng}
	s.broadcaster.Publish(ctx, realtime.AdminChannel, realtime.EventAgentMoved, AgentMovedEvent{
		AgentID:    record.AgentID,
		Position:   position,
		RecordedAt: record.CreatedAt,
	})
	if activeOrderID != nil {
		s.broadcaster.Publish(ctx, realtime.OrderChannel(*activeOrderID), realtime.EventLocationUpdated, LocationUpdatedEvent{
			OrderID:    *activeOrderID,
			AgentID:    record.AgentID,
			Position:   position,
			RecordedAt: record.CreatedAt,
		})
	}

	return toRecordView(record), nil
}

func (s *service) Latest(ctx context.Context, agentID uuid.UUID) (*RecordView, error) {
	if agentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	record, err := s.repo.Latest(ctx, agentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no recorded positions for agent")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load latest position")
	}
	return toRecordView(record), nil
}

func (s *service) Query(ctx context.Context, filters QueryFilters, params pagination.Params) (*RecordPage, error) {
	records, next, err := s.repo.Query(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query location history")
	}

	views := make([]RecordView, 0, len(records))
	for i := range records {
		views = append(views, *toRecordView(&records[i]))
	}
	return &RecordPage{Records: views, NextCursor: next}, nil
}
