package jwt

import (
	"testing"
	"time"

	"github.com/FranciscoSoares0/WatchMatch-Backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupConfig(t *testing.T) {
	t.Helper()
	config.AppConfig = &config.Config{
		JWTAccessSecret:        "unit-access-secret",
		JWTAccessExpirationMS:  15 * 60 * 1000,
		JWTRefreshSecret:       "unit-refresh-secret",
		JWTRefreshExpirationMS: 7 * 24 * 60 * 60 * 1000,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	setupConfig(t)

	token, expiresAt, err := GenerateAccessToken(42)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, time.Minute)

	userID, err := ParseAccessToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 42, userID)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	setupConfig(t)

	token, _, err := GenerateRefreshToken(7)
	require.NoError(t, err)

	userID, err := ParseRefreshToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 7, userID)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	setupConfig(t)

	access, _, err := GenerateAccessToken(1)
	require.NoError(t, err)
	refresh, _, err := GenerateRefreshToken(1)
	require.NoError(t, err)

	// Each kind is signed with its own secret.
	_, err = ParseRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = ParseAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	setupConfig(t)
	config.AppConfig.JWTAccessExpirationMS = -1000

	token, _, err := GenerateAccessToken(1)
	require.NoError(t, err)

	_, err = ParseAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	setupConfig(t)

	_, err := ParseAccessToken("definitely-not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashRefreshToken(t *testing.T) {
	a := HashRefreshToken("token-a")
	b := HashRefreshToken("token-b")

	assert.Len(t, a, 64)
	assert.Equal(t, a, HashRefreshToken("token-a"))
	assert.NotEqual(t, a, b)
}
