package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"dealdesk/internal/domain"
	"dealdesk/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHMACVerifier_RoundTrip(t *testing.T) {
	verifier, err := NewHMACVerifier("test-secret", testLogger())
	require.NoError(t, err)

	principal := &models.Principal{UserID: "user-1", Role: models.RoleBank, OrgID: "bank-1"}
	token, err := verifier.Sign(principal, "banker@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := verifier.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, principal, claims.Principal())
	assert.Equal(t, "banker@example.com", claims.Email)
}

func TestHMACVerifier_Rejects(t *testing.T) {
	verifier, err := NewHMACVerifier("test-secret", testLogger())
	require.NoError(t, err)
	other, err := NewHMACVerifier("other-secret", testLogger())
	require.NoError(t, err)

	valid := &models.Principal{UserID: "user-1", Role: models.RoleClient, OrgID: "client-1"}

	wrongSecret, err := other.Sign(valid, "", time.Hour)
	require.NoError(t, err)

	expired, err := verifier.Sign(valid, "", -time.Minute)
	require.NoError(t, err)

	badRole, err := verifier.Sign(&models.Principal{UserID: "user-1", Role: "admin", OrgID: "x"}, "", time.Hour)
	require.NoError(t, err)

	noOrg, err := verifier.Sign(&models.Principal{UserID: "user-1", Role: models.RoleInvestor}, "", time.Hour)
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
		Role:             models.RoleBank,
		OrgID:            "bank-1",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": wrongSecret,
		"expired":      expired,
		"unknown role": badRole,
		"missing org":  noOrg,
		"alg none":     noneAlg,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := verifier.VerifyToken(token)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}

func TestNewHMACVerifier_EmptySecret(t *testing.T) {
	_, err := NewHMACVerifier("", testLogger())
	assert.Error(t, err)
}

func TestNewJWKSVerifier_EmptyURL(t *testing.T) {
	_, err := NewJWKSVerifier(context.Background(), "", testLogger())
	assert.Error(t, err)
}
