package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printlink/printlink-backend/internal/locations"
	"github.com/printlink/printlink-backend/pkg/enums"
	"github.com/printlink/printlink-backend/pkg/pagination"
)

type stubLocationsService struct {
	lastReport locations.ReportInput
	view       *locations.RecordView
	page       *locations.RecordPage
	err        error
}

func (s *stubLocationsService) Report(ctx context.Context, input locations.ReportInput) (*locations.RecordView, error) {
	s.lastReport = input
	return s.view, s.err
}

func (s *stubLocationsService) Latest(ctx context.Context, agentID uuid.UUID) (*locations.RecordView, error) {
	return s.view, s.err
}

func (s *stubLocationsService) Query(ctx context.Context, filters locations.QueryFilters, params pagination.Params) (*locations.RecordPage, error) {
	return s.page, s.err
}

func TestReportLocationAsAgent(t *testing.T) {
	agentID := uuid.New()
	svc := &stubLocationsService{view: &locations.RecordView{ID: uuid.New(), AgentID: agentID}}

	body := strings.NewReader(`{"lat":30.0444,"lng":31.2357}`)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	agentStr := agentID.String()
	req = withActor(req, enums.RoleAgent, uuid.NewString(), nil, &agentStr)
	rec := httptest.NewRecorder()

	ReportLocation(svc, testLogger())(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, agentID, svc.lastReport.AgentID)
	assert.Equal(t, 30.0444, svc.lastReport.Lat)
}

func TestReportLocationAdminOnBehalf(t *testing.T) {
	agentID := uuid.New()
	svc := &stubLocationsService{view: &locations.RecordView{ID: uuid.New(), AgentID: agentID}}

	body := strings.NewReader(`{"lat":30.0,"lng":31.2,"agent_id":"` + agentID.String() + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req = withActor(req, enums.RoleAdmin, uuid.NewString(), nil, nil)
	rec := httptest.NewRecorder()

	ReportLocation(svc, testLogger())(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, agentID, svc.lastReport.AgentID)
}

func TestReportLocationCustomerForbidden(t *testing.T) {
	svc := &stubLocationsService{}

	body := strings.NewReader(`{"lat":30.0,"lng":31.2}`)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req = withActor(req, enums.RoleCustomer, uuid.NewString(), nil, nil)
	rec := httptest.NewRecorder()

	ReportLocation(svc, testLogger())(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLocationHistoryAgentScopedToSelf(t *testing.T) {
	agentID := uuid.New()
	svc := &stubLocationsService{page: &locations.RecordPage{}}

	// The agent asks for someone else's trail.
	req := httptest.NewRequest(http.MethodGet, "/?agent_id="+uuid.NewString(), nil)
	agentStr := agentID.String()
	req = withActor(req, enums.RoleAgent, uuid.NewString(), nil, &agentStr)
	rec := httptest.NewRecorder()

	LocationHistory(svc, testLogger())(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Their own trail is fine.
	req = httptest.NewRequest(http.MethodGet, "/?agent_id="+agentStr, nil)
	req = withActor(req, enums.RoleAgent, uuid.NewString(), nil, &agentStr)
	rec = httptest.NewRecorder()

	LocationHistory(svc, testLogger())(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLocationHistoryRejectsBadTime(t *testing.T) {
	svc := &stubLocationsService{page: &locations.RecordPage{}}

	req := httptest.NewRequest(http.MethodGet, "/?from=yesterday", nil)
	req = withActor(req, enums.RoleAdmin, uuid.NewString(), nil, nil)
	rec := httptest.NewRecorder()

	LocationHistory(svc, testLogger())(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
