package services_test

import (
	"errors"
	"testing"
	"time"

	"msgservice/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_jwt_secret"

func TestTokenService_IssueAndVerify(t *testing.T) {
	tokens := services.NewTokenService(testSecret, time.Hour)

	token, err := tokens.Issue("user-123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	v := tokens.Verify(token)
	require.True(t, v.Verified(), "rejected: %v", v.Reason)
	assert.Equal(t, "user-123", v.Identity.UserID)

	// The payload carries the id under the "id" claim
	claims := &services.Claims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestTokenService_Expiry(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	tokens := services.NewTokenService(testSecret, 30*time.Minute, services.WithClock(clock))

	token, err := tokens.Issue("user-123")
	require.NoError(t, err)

	now = now.Add(29 * time.Minute)
	assert.True(t, tokens.Verify(token).Verified())

	now = now.Add(2 * time.Minute)
	v := tokens.Verify(token)
	assert.False(t, v.Verified())
	assert.True(t, errors.Is(v.Reason, services.ErrExpiredToken))
}

func TestTokenService_DefaultTTL(t *testing.T) {
	tokens := services.NewTokenService(testSecret, 0)
	assert.Equal(t, services.DefaultTokenTTL, tokens.TTL())
}

func TestTokenService_Rejections(t *testing.T) {
	tokens := services.NewTokenService(testSecret, time.Hour)

	otherSecret, _ := services.NewTokenService("different-secret", time.Hour).Issue("user-123")

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "user-123"}).SignedString([]byte(testSecret))
	noID, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"id":  "user-123",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"id":  "user-123",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"garbage token", "not-a-jwt-token"},
		{"malformed JWT", "header.payload.signature"},
		{"wrong secret", otherSecret},
		{"missing exp", noExp},
		{"missing id", noID},
		{"other algorithm", hs512},
		{"alg none", none},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tokens.Verify(tt.token)
			assert.False(t, v.Verified())
			assert.Error(t, v.Reason)
			assert.Empty(t, v.Identity.UserID)
		})
	}
}
