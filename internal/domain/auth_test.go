package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAuthContext(t *testing.T) {
	t.Parallel()

	id := uuid.New()

	anon := Anonymous()
	assert.False(t, anon.IsAuthenticated)
	assert.Nil(t, anon.Identity)
	assert.False(t, anon.IsAdmin())
	assert.Equal(t, uuid.Nil, anon.UserID())

	admin := Authenticated(id, "admin@example.com", RoleAdmin)
	assert.True(t, admin.IsAuthenticated)
	assert.True(t, admin.IsAdmin())
	assert.Equal(t, id, admin.UserID())

	user := Authenticated(id, "user@example.com", RoleUser)
	assert.False(t, user.IsAdmin())
	assert.Equal(t, id, user.UserID())

	var nilCtx *AuthContext
	assert.False(t, nilCtx.IsAdmin())
	assert.Equal(t, uuid.Nil, nilCtx.UserID())
}
