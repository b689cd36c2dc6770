package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printlink/printlink-backend/internal/agents"
	"github.com/printlink/printlink-backend/internal/printcenters"
	"github.com/printlink/printlink-backend/pkg/db/models"
	"github.com/printlink/printlink-backend/pkg/enums"
	pkgerrors "github.com/printlink/printlink-backend/pkg/errors"
)

type stubCentersService struct {
	registered *printcenters.RegisterInput
	setActive  map[uuid.UUID]bool
}

func (s *stubCentersService) Register(ctx context.Context, input printcenters.RegisterInput) (*models.PrintCenter, error) {
	s.registered = &input
	return &models.PrintCenter{ID: uuid.New(), Name: input.Name, Active: true, OwnerID: input.OwnerID}, nil
}

func (s *stubCentersService) Get(ctx context.Context, id uuid.UUID) (*models.PrintCenter, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "print center not found")
}

func (s *stubCentersService) ListActive(ctx context.Context) ([]models.PrintCenter, error) {
	return []models.PrintCenter{{ID: uuid.New(), Name: "Downtown Print Hub", Active: true}}, nil
}

func (s *stubCentersService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if s.setActive == nil {
		s.setActive = map[uuid.UUID]bool{}
	}
	s.setActive[id] = active
	return nil
}

type stubAgentsService struct{}

func (stubAgentsService) Register(ctx context.Context, input agents.RegisterInput) (*models.DeliveryAgent, error) {
	return &models.DeliveryAgent{ID: uuid.New(), Name: input.Name, Active: true}, nil
}

func (stubAgentsService) Get(ctx context.Context, id uuid.UUID) (*models.DeliveryAgent, error) {
	return &models.DeliveryAgent{ID: id, Active: true}, nil
}

func (stubAgentsService) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.DeliveryAgent, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery agent not found")
}

func (stubAgentsService) ListActive(ctx context.Context) ([]models.DeliveryAgent, error) {
	return []models.DeliveryAgent{{ID: uuid.New(), Name: "Hossam", Active: true}}, nil
}

func TestRegisterCenter(t *testing.T) {
	svc := &stubCentersService{}
	handler := RegisterCenter(svc, testLogger())

	adminID := uuid.NewString()
	body := `{"name":"Maadi Print Hub","lat":29.9602,"lng":31.2569}`
	req := httptest.NewRequest(http.MethodPost, "/centers", strings.NewReader(body))
	req = withActor(req, enums.RoleAdmin, adminID, nil, nil)
	resp := httptest.NewRecorder()
	handler(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)
	require.NotNil(t, svc.registered)
	assert.Equal(t, "Maadi Print Hub", svc.registered.Name)
	assert.Equal(t, adminID, svc.registered.OwnerID.String())
}

func TestRegisterCenterRejectsBadCoordinates(t *testing.T) {
	svc := &stubCentersService{}
	handler := RegisterCenter(svc, testLogger())

	body := `{"name":"Nowhere","lat":95.0,"lng":10.0}`
	req := httptest.NewRequest(http.MethodPost, "/centers", strings.NewReader(body))
	req = withActor(req, enums.RoleAdmin, uuid.NewString(), nil, nil)
	resp := httptest.NewRecorder()
	handler(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Nil(t, svc.registered)
}

func TestSetCenterActive(t *testing.T) {
	svc := &stubCentersService{}
	handler := SetCenterActive(svc, testLogger())

	centerID := uuid.New()
	req := httptest.NewRequest(http.MethodPatch, "/centers/"+centerID.String()+"/active", strings.NewReader(`{"active":false}`))
	req = withURLParam(req, "centerID", centerID.String())
	req = withActor(req, enums.RoleAdmin, uuid.NewString(), nil, nil)
	resp := httptest.NewRecorder()
	handler(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, false, svc.setActive[centerID])
}

func TestListCenters(t *testing.T) {
	handler := ListCenters(&stubCentersService{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/centers", nil)
	resp := httptest.NewRecorder()
	handler(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var envelope struct {
		Data struct {
			Centers []models.PrintCenter `json:"centers"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Centers, 1)
	assert.Equal(t, "Downtown Print Hub", envelope.Data.Centers[0].Name)
}

func TestListAgents(t *testing.T) {
	handler := ListAgents(stubAgentsService{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/agents", nil)
	resp := httptest.NewRecorder()
	handler(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var envelope struct {
		Data struct {
			Agents []models.DeliveryAgent `json:"agents"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Agents, 1)
	assert.Equal(t, "Hossam", envelope.Data.Agents[0].Name)
}
