package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/printlink/printlink-backend/api/responses"
	"github.com/printlink/printlink-backend/api/validators"
	"github.com/printlink/printlink-backend/internal/assignments"
	"github.com/printlink/printlink-backend/pkg/enums"
	pkgerrors "github.com/printlink/printlink-backend/pkg/errors"
	"github.com/printlink/printlink-backend/pkg/logger"
)

type createDeliveryRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
	AgentID uuid.UUID `json:"agent_id" validate:"required"`
}

// CreateDeliveryAssignment binds a courier to an order. Admin-only.
func CreateDeliveryAssignment(svc assignments.Lifecycle, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createDeliveryRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.CreateDeliveryAssignment(r.Context(), assignments.CreateDeliveryInput{
			OrderID: req.OrderID,
			AgentID: req.AgentID,
			Actor:   actorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

type updateDeliveryRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateDeliveryStatus advances the coarse order progress for one delivery
// assignment.
func UpdateDeliveryStatus(svc assignments.Lifecycle, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assignmentID, err := validators.ParsePathUUID(chi.URLParam(r, "assignmentID"), "assignmentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateDeliveryRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		view, err := svc.UpdateDeliveryStatus(r.Context(), assignments.UpdateDeliveryInput{
			AssignmentID: assignmentID,
			Status:       status,
			Actor:        actorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
