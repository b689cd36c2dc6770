package controllers

import (
	"context"

	"github.com/google/uuid"

	"github.com/printlink/printlink-backend/api/middleware"
	"github.com/printlink/printlink-backend/internal/assignments"
	"github.com/printlink/printlink-backend/pkg/enums"
)

// actorFromContext rebuilds the caller identity seeded by the auth
// middleware.
func actorFromContext(ctx context.Context) assignments.Actor {
	actor := assignments.Actor{
		Role: enums.MemberRole(middleware.RoleFromContext(ctx)),
	}
	if id, err := uuid.Parse(middleware.UserIDFromContext(ctx)); err == nil {
		actor.UserID = id
	}
	if id, err := uuid.Parse(middleware.CenterIDFromContext(ctx)); err == nil {
		actor.CenterID = &id
	}
	if id, err := uuid.Parse(middleware.AgentIDFromContext(ctx)); err == nil {
		actor.AgentID = &id
	}
	return actor
}
