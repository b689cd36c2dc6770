package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/printlink/printlink-backend/api/middleware"
	"github.com/printlink/printlink-backend/pkg/enums"
	"github.com/printlink/printlink-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "controllers-test", Output: io.Discard})
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func withActor(r *http.Request, role enums.MemberRole, userID string, centerID, agentID *string) *http.Request {
	ctx := middleware.WithUserID(r.Context(), userID)
	ctx = middleware.WithRole(ctx, string(role))
	if centerID != nil {
		ctx = middleware.WithCenterID(ctx, *centerID)
	}
	if agentID != nil {
		ctx = middleware.WithAgentID(ctx, *agentID)
	}
	return r.WithContext(ctx)
}
