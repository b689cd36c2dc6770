package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printlink/printlink-backend/internal/assignments"
	"github.com/printlink/printlink-backend/internal/tracking"
	"github.com/printlink/printlink-backend/pkg/enums"
	pkgerrors "github.com/printlink/printlink-backend/pkg/errors"
	"github.com/printlink/printlink-backend/pkg/types"
)

type stubTrackingService struct {
	lastRef   string
	lastActor assignments.Actor
	view      *tracking.OrderTrackingView
	public    *tracking.PublicTrackingView
	delivery  *tracking.DeliveryTrackingView
	err       error
}

func (s *stubTrackingService) TrackByOrder(ctx context.Context, idOrPrefix string, actor assignments.Actor) (*tracking.OrderTrackingView, error) {
	s.lastRef = idOrPrefix
	s.lastActor = actor
	return s.view, s.err
}

func (s *stubTrackingService) TrackPublic(ctx context.Context, idOrPrefix string) (*tracking.PublicTrackingView, error) {
	s.lastRef = idOrPrefix
	return s.public, s.err
}

func (s *stubTrackingService) DeliveryTrackingFor(ctx context.Context, id uuid.UUID) (*tracking.DeliveryTrackingView, error) {
	return s.delivery, s.err
}

func TestTrackOrderPassesActor(t *testing.T) {
	orderID := uuid.New()
	svc := &stubTrackingService{view: &tracking.OrderTrackingView{
		Order: tracking.OrderSummary{ID: orderID, Status: enums.OrderStatusProcessing},
	}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = withActor(req, enums.RoleCustomer, uuid.NewString(), nil, nil)
	req = withURLParam(req, "orderRef", orderID.String())
	rec := httptest.NewRecorder()

	TrackOrder(svc, testLogger())(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, orderID.String(), svc.lastRef)
	assert.Equal(t, enums.RoleCustomer, svc.lastActor.Role)
}

func TestTrackOrderForbiddenPassesThrough(t *testing.T) {
	svc := &stubTrackingService{err: pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to track this order")}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = withActor(req, enums.RoleCustomer, uuid.NewString(), nil, nil)
	req = withURLParam(req, "orderRef", uuid.NewString())
	rec := httptest.NewRecorder()

	TrackOrder(svc, testLogger())(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)

	var envelope types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, string(pkgerrors.CodeForbidden), envelope.Error.Code)
}

func TestTrackPublicOrderByPrefix(t *testing.T) {
	svc := &stubTrackingService{public: &tracking.PublicTrackingView{
		OrderShortID: "aabbccdd",
		OrderStatus:  enums.OrderStatusShipped,
	}}

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "orderRef", "aabbccdd")
	rec := httptest.NewRecorder()

	TrackPublicOrder(svc, testLogger())(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "aabbccdd", svc.lastRef)
}

func TestDeliveryTrackingRejectsBadID(t *testing.T) {
	svc := &stubTrackingService{}

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "assignmentID", "nope")
	rec := httptest.NewRecorder()

	DeliveryTracking(svc, testLogger())(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
