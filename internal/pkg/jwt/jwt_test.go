package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	branch := uint(3)
	token, err := GenerateAccessToken(42, "admin@test.local", "ADMIN", &branch, "secret", 15)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "admin@test.local", claims.Email)
	assert.Equal(t, "ADMIN", claims.Role)
	require.NotNil(t, claims.BranchID)
	assert.Equal(t, branch, *claims.BranchID)

	_, err = ValidateAccessToken(token, "wrong-secret")
	assert.Error(t, err)
}

func TestAccessTokenExpired(t *testing.T) {
	token, err := GenerateAccessToken(42, "admin@test.local", "ADMIN", nil, "secret", -1)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, "secret")
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	token, err := GenerateRefreshToken(42, "token-id-1", "refresh-secret", 7)
	require.NoError(t, err)

	claims, err := ValidateRefreshToken(token, "refresh-secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "token-id-1", claims.TokenID)

	// An access token signed with the other secret must not pass.
	access, err := GenerateAccessToken(42, "a@test.local", "ADMIN", nil, "secret", 15)
	require.NoError(t, err)
	_, err = ValidateRefreshToken(access, "refresh-secret")
	assert.Error(t, err)
}
