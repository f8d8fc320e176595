package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_Sanitized(t *testing.T) {
	user := &User{
		ID:           uuid.New(),
		Username:     "testuser",
		Email:        "test@example.com",
		PasswordHash: "hashed",
		RefreshToken: "token",
	}

	clean := user.Sanitized()

	require.NotSame(t, user, clean)
	assert.Equal(t, user.ID, clean.ID)
	assert.Equal(t, user.Username, clean.Username)
	assert.Empty(t, clean.PasswordHash)
	assert.Empty(t, clean.RefreshToken)

	// The original record keeps its credential material.
	assert.Equal(t, "hashed", user.PasswordHash)
	assert.Equal(t, "token", user.RefreshToken)
}

func TestUser_SanitizedNil(t *testing.T) {
	var user *User
	assert.Nil(t, user.Sanitized())
}
