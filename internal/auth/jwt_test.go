package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluentphrases/backend/internal/models"
)

func testUser() *models.User {
	return &models.User{
		ID:    "user-123",
		Email: "ana@example.com",
		Plan:  models.PlanFree,
	}
}

func TestGenerateAndValidate(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, err := svc.Generate(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, models.PlanFree, claims.Plan)
	assert.Equal(t, "fluent-phrases", claims.Issuer)
}

func TestValidateWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a", time.Hour).Generate(testUser())
	require.NoError(t, err)

	_, err = NewJWTService("secret-b", time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateExpired(t *testing.T) {
	svc := NewJWTService("test-secret", -time.Minute)

	token, err := svc.Generate(testUser())
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateGarbage(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	_, err := svc.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshValidToken(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, err := svc.Generate(testUser())
	require.NoError(t, err)

	refreshed, err := svc.Refresh(token)
	require.NoError(t, err)

	claims, err := svc.Validate(refreshed)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, models.PlanFree, claims.Plan)
}

func TestRefreshExpiredWithinGrace(t *testing.T) {
	// Expired an hour ago, well inside the 7-day grace period
	expired := NewJWTService("test-secret", -time.Hour)
	token, err := expired.Generate(testUser())
	require.NoError(t, err)

	svc := NewJWTService("test-secret", time.Hour)
	refreshed, err := svc.Refresh(token)
	require.NoError(t, err)

	_, err = svc.Validate(refreshed)
	assert.NoError(t, err)
}

func TestRefreshExpiredBeyondGrace(t *testing.T) {
	expired := NewJWTService("test-secret", -8*24*time.Hour)
	token, err := expired.Generate(testUser())
	require.NoError(t, err)

	svc := NewJWTService("test-secret", time.Hour)
	_, err = svc.Refresh(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
