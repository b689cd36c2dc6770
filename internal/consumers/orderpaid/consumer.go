package orderpaid

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/printlink/printlink-backend/internal/assignments"
	"github.com/printlink/printlink-backend/pkg/logger"
)

const (
	consumerScope  = "orderpaid"
	idempotencyTTL = 24 * time.Hour
)

// Envelope is the order-paid message published by the order service.
type Envelope struct {
	EventID    string    `json:"event_id"`
	OrderID    string    `json:"order_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type assigner interface {
	AssignAndNotify(ctx context.Context, orderID uuid.UUID) (*assignments.ProductionAssignmentView, error)
}

type idempotencyStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IdempotencyKey(scope, id string) string
}

// Service consumes order-paid events from Pub/Sub and triggers assignment
// matching, deduplicating redeliveries through Redis.
type Service struct {
	subscription *gcppubsub.Subscriber
	matcher      assigner
	store        idempotencyStore
	logg         *logger.Logger
}

// NewService creates the order-paid consumer service.
func NewService(subscription *gcppubsub.Subscriber, matcher assigner, store idempotencyStore, logg *logger.Logger) (*Service, error) {
	if subscription == nil {
		return nil, errors.New("orders subscription is required")
	}
	if matcher == nil {
		return nil, errors.New("assignment matcher is required")
	}
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}

	return &Service{
		subscription: subscription,
		matcher:      matcher,
		store:        store,
		logg:         logg,
	}, nil
}

type processResult struct {
	nack bool
}

// Run starts consuming order-paid messages until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		if s.process(innerCtx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (s *Service) process(ctx context.Context, msg *gcppubsub.Message) processResult {
	logCtx := s.logg.WithFields(ctx, map[string]any{"message_id": msg.ID})

	var envelope Envelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		s.logg.Warn(logCtx, "invalid order-paid envelope")
		return processResult{}
	}

	orderID, err := uuid.Parse(envelope.OrderID)
	if err != nil || orderID == uuid.Nil {
		s.logg.Warn(logCtx, "order-paid envelope missing order id")
		return processResult{}
	}
	logCtx = s.logg.WithOrderID(logCtx, orderID.String())

	// Redeliveries of the same event are deduplicated; a fresh event id per
	// publish still converges because AssignAndNotify itself is idempotent.
	dedupID := envelope.EventID
	if dedupID == "" {
		dedupID = msg.ID
	}
	key := s.store.IdempotencyKey(consumerScope, dedupID)
	fresh, err := s.store.SetNX(logCtx, key, time.Now().UTC().Format(time.RFC3339), idempotencyTTL)
	if err != nil {
		s.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if !fresh {
		s.logg.Info(logCtx, "order-paid event already processed")
		return processResult{}
	}

	if _, err := s.matcher.AssignAndNotify(logCtx, orderID); err != nil {
		s.logg.Error(logCtx, "assignment matching failed", err)
		_ = s.store.Del(logCtx, key)
		return processResult{nack: true}
	}

	s.logg.Info(logCtx, "order-paid event handled")
	return processResult{}
}
