package server

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonathan/career-finder/internal/config"
	"github.com/jonathan/career-finder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

func setupTestJWTService(_ *testing.T, expirationHours int) *JWTService {
	cfg := &config.JWTConfig{
		Secret:          testJWTSecret,
		ExpirationHours: expirationHours,
	}
	return NewJWTService(cfg)
}

func TestJWTService_IssueToken(t *testing.T) {
	service := setupTestJWTService(t, 24)

	resp, err := service.IssueToken(types.TokenRequest{ClientID: "job-board-ui"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, "job-board-ui", resp.ClientID)

	parts := strings.Split(resp.Token, ".")
	assert.Equal(t, 3, len(parts), "JWT should have 3 parts separated by dots")

	expected := time.Now().Add(24 * time.Hour)
	assert.WithinDuration(t, expected, resp.ExpiresAt, 5*time.Second)
}

func TestJWTService_IssueToken_InvalidClient(t *testing.T) {
	service := setupTestJWTService(t, 24)

	_, err := service.IssueToken(types.TokenRequest{ClientID: "ab"})
	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "client_id", verr.Field)
}

func TestJWTService_RoundTripCarriesClientID(t *testing.T) {
	service := setupTestJWTService(t, 24)

	first, err := service.IssueToken(types.TokenRequest{ClientID: "cli-one"})
	require.NoError(t, err)
	second, err := service.IssueToken(types.TokenRequest{ClientID: "cli-two"})
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	claims, err := service.ValidateToken(first.Token)
	require.NoError(t, err)
	assert.Equal(t, "cli-one", claims.GetClientID())
	assert.Equal(t, tokenIssuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)

	validated, err := service.AsTokenValidator().ValidateToken(second.Token)
	require.NoError(t, err)
	assert.Equal(t, "cli-two", validated.GetClientID())
}

func TestJWTService_ValidateToken_Expired(t *testing.T) {
	service := setupTestJWTService(t, 1)
	resp, err := service.IssueToken(types.TokenRequest{ClientID: "cli"})
	require.NoError(t, err)

	service.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = service.ValidateToken(resp.Token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestJWTService_ValidateToken_WrongSecret(t *testing.T) {
	issuer := setupTestJWTService(t, 24)
	resp, err := issuer.IssueToken(types.TokenRequest{ClientID: "cli"})
	require.NoError(t, err)

	other := NewJWTService(&config.JWTConfig{Secret: "another-secret-of-enough-length", ExpirationHours: 24})
	_, err = other.ValidateToken(resp.Token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature")
}

func TestJWTService_ValidateToken_Rejects(t *testing.T) {
	service := setupTestJWTService(t, 24)

	_, err := service.ValidateToken("")
	assert.Error(t, err)

	_, err = service.ValidateToken("not.a.jwt")
	assert.Error(t, err)

	// foreign issuer
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "someone-else",
		Subject:   "cli",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := foreign.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	_, err = service.ValidateToken(signed)
	assert.Error(t, err)

	// no subject
	anonymous := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err = anonymous.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	_, err = service.ValidateToken(signed)
	assert.ErrorContains(t, err, "no client id")

	// unsigned
	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Issuer: tokenIssuer, Subject: "cli"})
	signed, err = none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = service.ValidateToken(signed)
	assert.Error(t, err)
}
