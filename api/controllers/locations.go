package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/printlink/printlink-backend/api/middleware"
	"github.com/printlink/printlink-backend/api/responses"
	"github.com/printlink/printlink-backend/api/validators"
	"github.com/printlink/printlink-backend/internal/locations"
	"github.com/printlink/printlink-backend/pkg/enums"
	pkgerrors "github.com/printlink/printlink-backend/pkg/errors"
	"github.com/printlink/printlink-backend/pkg/logger"
	"github.com/printlink/printlink-backend/pkg/pagination"
)

type reportLocationRequest struct {
	Lat      float64  `json:"lat" validate:"latitude"`
	Lng      float64  `json:"lng" validate:"longitude"`
	Address  *string  `json:"address,omitempty" validate:"omitempty,max=500"`
	Heading  *float64 `json:"heading,omitempty" validate:"omitempty,min=0,max=360"`
	SpeedKMH *float64 `json:"speed_kmh,omitempty" validate:"omitempty,min=0"`
	// AgentID is honored for admin callers only; agents always report as
	// themselves.
	AgentID *uuid.UUID `json:"agent_id,omitempty"`
}

// ReportLocation appends one position ping to the ledger.
func ReportLocation(svc locations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reportLocationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := actorFromContext(r.Context())
		var agentID uuid.UUID
		switch {
		case actor.Role == enums.RoleAgent && actor.AgentID != nil:
			agentID = *actor.AgentID
		case actor.Role == enums.RoleAdmin && req.AgentID != nil:
			agentID = *req.AgentID
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "only agents report positions"))
			return
		}

		view, err := svc.Report(r.Context(), locations.ReportInput{
			AgentID:  agentID,
			Lat:      req.Lat,
			Lng:      req.Lng,
			Address:  req.Address,
			Heading:  req.Heading,
			SpeedKMH: req.SpeedKMH,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// LatestLocation returns the most recent ledger entry for one agent.
func LatestLocation(svc locations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agentID, err := validators.ParsePathUUID(chi.URLParam(r, "agentID"), "agentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Latest(r.Context(), agentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// LocationHistory returns a filtered, cursor-paged slice of the ledger.
func LocationHistory(svc locations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agentID, err := validators.ParseQueryUUID(r, "agent_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseQueryUUID(r, "order_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, err := validators.ParseQueryTime(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryTime(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// Agents may only read their own trail.
		actor := actorFromContext(r.Context())
		if middleware.RoleFromContext(r.Context()) == string(enums.RoleAgent) {
			if actor.AgentID == nil || agentID == nil || *agentID != *actor.AgentID {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "agents may only read their own history"))
				return
			}
		}

		page, err := svc.Query(r.Context(), locations.QueryFilters{
			AgentID: agentID,
			OrderID: orderID,
			From:    from,
			To:      to,
		}, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
