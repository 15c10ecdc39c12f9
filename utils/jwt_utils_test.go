package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitepulse/api/models"
)

func TestUserJWTRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "dashboard-secret")

	user := &models.User{
		UserID:         "7f8a0a5e-1b2c-4d3e-9f00-123456789abc",
		Email:          "user@example.com",
		OrganizationID: "org-1",
	}

	tokenString, err := GenerateJWT(user)
	require.NoError(t, err)

	claims, err := ValidateJWT(tokenString)
	require.NoError(t, err)
	assert.Equal(t, user.UserID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, user.OrganizationID, claims.OrganizationID)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestUserJWTWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-a")
	tokenString, err := GenerateJWT(&models.User{UserID: "u1", Email: "u@example.com"})
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "secret-b")
	_, err = ValidateJWT(tokenString)
	assert.Error(t, err)
}
