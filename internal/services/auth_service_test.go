package services

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewAuthService("test-secret", zerolog.Nop())

	token, err := svc.GenerateToken("user-1", "ada@uni.edu")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ada@uni.edu", claims.Email)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc := NewAuthService("test-secret", zerolog.Nop())
	other := NewAuthService("different-secret", zerolog.Nop())

	token, err := svc.GenerateToken("user-1", "ada@uni.edu")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService("test-secret", zerolog.Nop())

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
