package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/printlink/printlink-backend/api/responses"
	"github.com/printlink/printlink-backend/api/validators"
	"github.com/printlink/printlink-backend/internal/assignments"
	"github.com/printlink/printlink-backend/pkg/enums"
	pkgerrors "github.com/printlink/printlink-backend/pkg/errors"
	"github.com/printlink/printlink-backend/pkg/logger"
)

// AssignOrder kicks off matching for one order. Admin-only; the normal entry
// point is the order-paid consumer, this endpoint covers replays and manual
// fixes.
func AssignOrder(matcher assignments.Matcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := matcher.AssignAndNotify(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if view == nil {
			// Non-print order or no active centers; nothing was assigned.
			responses.WriteSuccess(w, map[string]any{"assigned": false})
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type updateProductionRequest struct {
	Status string  `json:"status" validate:"required"`
	Notes  *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// UpdateProductionStatus advances one production assignment through its state
// machine.
func UpdateProductionStatus(svc assignments.Lifecycle, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assignmentID, err := validators.ParsePathUUID(chi.URLParam(r, "assignmentID"), "assignmentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateProductionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseProductionStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid production status"))
			return
		}

		view, err := svc.UpdateProductionStatus(r.Context(), assignments.UpdateProductionInput{
			AssignmentID: assignmentID,
			Status:       status,
			Notes:        req.Notes,
			Actor:        actorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// GetProductionAssignment returns one production assignment.
func GetProductionAssignment(svc assignments.Lifecycle, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assignmentID, err := validators.ParsePathUUID(chi.URLParam(r, "assignmentID"), "assignmentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.GetProduction(r.Context(), assignmentID, actorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// ListCenterQueue returns the open production assignments for one center.
func ListCenterQueue(svc assignments.Lifecycle, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		centerID, err := validators.ParsePathUUID(chi.URLParam(r, "centerID"), "centerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		queue, err := svc.ListCenterQueue(r.Context(), centerID, actorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"assignments": queue})
	}
}
