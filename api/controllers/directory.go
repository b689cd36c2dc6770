package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/printlink/printlink-backend/api/responses"
	"github.com/printlink/printlink-backend/api/validators"
	"github.com/printlink/printlink-backend/internal/agents"
	"github.com/printlink/printlink-backend/internal/printcenters"
	"github.com/printlink/printlink-backend/pkg/logger"
)

type registerCenterRequest struct {
	Name    string   `json:"name" validate:"required,min=2,max=200"`
	Phone   *string  `json:"phone,omitempty" validate:"omitempty,max=30"`
	Address *string  `json:"address,omitempty" validate:"omitempty,max=500"`
	Lat     *float64 `json:"lat,omitempty" validate:"omitempty,latitude"`
	Lng     *float64 `json:"lng,omitempty" validate:"omitempty,longitude"`
}

// RegisterCenter adds a print center to the directory. Admin-only.
func RegisterCenter(svc printcenters.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerCenterRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := actorFromContext(r.Context())
		center, err := svc.Register(r.Context(), printcenters.RegisterInput{
			Name:    req.Name,
			Phone:   req.Phone,
			Address: req.Address,
			Lat:     req.Lat,
			Lng:     req.Lng,
			OwnerID: actor.UserID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, center)
	}
}

type setCenterActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// SetCenterActive flips a center in or out of the matching pool. Admin-only.
func SetCenterActive(svc printcenters.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		centerID, err := validators.ParsePathUUID(chi.URLParam(r, "centerID"), "centerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req setCenterActiveRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetActive(r.Context(), centerID, *req.Active); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": centerID, "active": *req.Active})
	}
}

// ListCenters returns the active print center directory.
func ListCenters(svc printcenters.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		centers, err := svc.ListActive(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"centers": centers})
	}
}

// GetCenter returns one print center by id.
func GetCenter(svc printcenters.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		centerID, err := validators.ParsePathUUID(chi.URLParam(r, "centerID"), "centerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		center, err := svc.Get(r.Context(), centerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, center)
	}
}

// ListAgents returns the active delivery agent roster. Admin-only.
func ListAgents(svc agents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roster, err := svc.ListActive(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"agents": roster})
	}
}
