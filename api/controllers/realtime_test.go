package controllers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/printlink/printlink-backend/internal/assignments"
	"github.com/printlink/printlink-backend/pkg/enums"
	pkgerrors "github.com/printlink/printlink-backend/pkg/errors"
	"github.com/printlink/printlink-backend/pkg/realtime"
)

func TestAuthorizeChannel(t *testing.T) {
	centerID := uuid.New()
	otherCenter := uuid.New()
	orderID := uuid.New()

	admin := assignments.Actor{UserID: uuid.New(), Role: enums.RoleAdmin}
	center := assignments.Actor{UserID: uuid.New(), Role: enums.RolePrintCenter, CenterID: &centerID}
	customer := assignments.Actor{UserID: uuid.New(), Role: enums.RoleCustomer}

	assert.NoError(t, authorizeChannel(admin, realtime.AdminChannel))
	assert.NoError(t, authorizeChannel(admin, realtime.CenterChannel(otherCenter)))

	assert.NoError(t, authorizeChannel(center, realtime.CenterChannel(centerID)))
	err := authorizeChannel(center, realtime.CenterChannel(otherCenter))
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	assert.NoError(t, authorizeChannel(customer, realtime.OrderChannel(orderID)))
	err = authorizeChannel(customer, realtime.AdminChannel)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	err = authorizeChannel(customer, "weird")
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
