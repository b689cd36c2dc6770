package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/printlink/printlink-backend/api/responses"
	"github.com/printlink/printlink-backend/api/validators"
	"github.com/printlink/printlink-backend/internal/tracking"
	"github.com/printlink/printlink-backend/pkg/logger"
)

// TrackOrder returns the authorized tracking view for one order, addressed by
// full id or short prefix.
func TrackOrder(svc tracking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := strings.TrimSpace(chi.URLParam(r, "orderRef"))

		view, err := svc.TrackByOrder(r.Context(), ref, actorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// TrackPublicOrder is the anonymous tracking endpoint used from receipts and
// package labels.
func TrackPublicOrder(svc tracking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := strings.TrimSpace(chi.URLParam(r, "orderRef"))

		view, err := svc.TrackPublic(r.Context(), ref)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// DeliveryTracking composes assignment, courier position and route estimate
// for one production assignment.
func DeliveryTracking(svc tracking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assignmentID, err := validators.ParsePathUUID(chi.URLParam(r, "assignmentID"), "assignmentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.DeliveryTrackingFor(r.Context(), assignmentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
