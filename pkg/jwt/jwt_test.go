package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	manager := NewManager("test-secret")

	token, err := manager.GenerateAccessToken("user-123", "poster@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := manager.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "poster@example.com", claims.Email)
	assert.Equal(t, "access", claims.Type)
}

func TestValidateAccessTokenRejectsWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a").GenerateAccessToken("user-123", "poster@example.com", time.Hour)
	require.NoError(t, err)

	_, err = NewManager("secret-b").ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestValidateAccessTokenRejectsExpired(t *testing.T) {
	manager := NewManager("test-secret")

	token, err := manager.GenerateAccessToken("user-123", "poster@example.com", -time.Minute)
	require.NoError(t, err)

	_, err = manager.ValidateAccessToken(token)
	assert.Error(t, err)
}
