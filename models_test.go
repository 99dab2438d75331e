package auth_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/userdir/go-auth"
)

func TestUserRoleHelpers(t *testing.T) {
	user := &auth.User{Roles: []auth.Role{auth.RoleUser}}

	assert.True(t, user.HasRole(auth.RoleUser))
	assert.False(t, user.HasRole(auth.RoleAdmin))

	user.AddRole(auth.RoleAdmin)
	user.AddRole(auth.RoleAdmin) // idempotent

	assert.True(t, user.HasRole(auth.RoleAdmin))
	assert.Len(t, user.Roles, 2)
}

func TestUserJSONHidesPasswordHash(t *testing.T) {
	user := &auth.User{
		ID:           uuid.New(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$12$secret",
		Roles:        []auth.Role{auth.RoleUser},
	}

	raw, err := json.Marshal(user)
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "password_hash")
	assert.NotContains(t, string(raw), "$2a$12$secret")
	assert.Contains(t, string(raw), "alice")
}

func TestResetTokenJSONHidesSecret(t *testing.T) {
	record := &auth.PasswordResetToken{
		ID:         uuid.New(),
		Token:      "the-secret-token",
		UserID:     uuid.New(),
		ExpiryDate: time.Now().Add(time.Hour),
	}

	raw, err := json.Marshal(record)
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "the-secret-token")
}

func TestResetTokenExpiryBoundary(t *testing.T) {
	expiry := time.Now()
	record := &auth.PasswordResetToken{ExpiryDate: expiry}

	assert.False(t, record.IsExpiredAt(expiry.Add(-time.Second)))
	// a token is unusable at the exact expiry instant
	assert.True(t, record.IsExpiredAt(expiry))
	assert.True(t, record.IsExpiredAt(expiry.Add(time.Second)))
}
