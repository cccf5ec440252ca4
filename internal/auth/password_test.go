package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Contrasena1")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "Contrasena1", hash)

	assert.True(t, CheckPassword("Contrasena1", hash))
	assert.False(t, CheckPassword("contrasena1", hash))
	assert.False(t, CheckPassword("", hash))
}

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"valid", "Abcdef12", nil},
		{"too short", "Abc1", ErrPasswordTooShort},
		{"no uppercase", "abcdef12", ErrPasswordNoUpper},
		{"no lowercase", "ABCDEF12", ErrPasswordNoLower},
		{"no digit", "Abcdefgh", ErrPasswordNoDigit},
		{"common despite mixed case", "Password1", ErrPasswordCommon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePasswordStrength(tt.password)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	assert.ErrorIs(t, ValidatePasswordStrength("password123"), ErrPasswordCommon)
}
