package services_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"orderapi/internal/apperr"
	"orderapi/internal/models"
	"orderapi/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func TestTokenService_IssueAndVerify(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	ts := services.NewTokenService("test_jwt_secret", 120*time.Minute, services.WithClock(clock.Now))

	user := &models.User{ID: "user-123", Email: "test@example.com", Role: models.RoleCustomer}
	token, err := ts.Issue(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ts.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID())
	assert.Equal(t, "test@example.com", claims.Email)
	assert.Equal(t, models.RoleCustomer, claims.Role)
	assert.Equal(t, clock.t.Unix(), claims.IssuedAt)
	assert.Equal(t, clock.t.Add(120*time.Minute).Unix(), claims.ExpiresAt)
}

func TestTokenService_ExpiryBoundary(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: start}
	ttl := 30 * time.Minute
	ts := services.NewTokenService("test_jwt_secret", ttl, services.WithClock(clock.Now))

	token, err := ts.Issue(&models.User{ID: "u-1", Email: "a@b.c", Role: models.RoleAdmin})
	require.NoError(t, err)

	clock.t = start.Add(ttl - time.Second)
	_, err = ts.Verify(token)
	assert.NoError(t, err, "valid just before expiry")

	clock.t = start.Add(ttl)
	_, err = ts.Verify(token)
	assert.True(t, errors.Is(err, apperr.ErrExpiredToken), "expired once now reaches exp")

	clock.t = start.Add(ttl + time.Hour)
	_, err = ts.Verify(token)
	assert.True(t, errors.Is(err, apperr.ErrExpiredToken))
}

func TestTokenService_RejectsForgedOrMalformed(t *testing.T) {
	ts := services.NewTokenService("test_jwt_secret", time.Hour)
	other := services.NewTokenService("another_secret", time.Hour)

	forged, err := other.Issue(&models.User{ID: "u-1", Role: models.RoleAdmin})
	require.NoError(t, err)
	_, err = ts.Verify(forged)
	assert.True(t, errors.Is(err, apperr.ErrInvalidToken), "secret rotation invalidates tokens")

	_, err = ts.Verify("invalid.token.string")
	assert.True(t, errors.Is(err, apperr.ErrInvalidToken))

	valid, err := ts.Issue(&models.User{ID: "u-1", Role: models.RoleCustomer})
	require.NoError(t, err)
	parts := strings.Split(valid, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	_, err = ts.Verify(tampered)
	assert.True(t, errors.Is(err, apperr.ErrInvalidToken))
}

func TestTokenService_RejectsUnsignedAndExpiryless(t *testing.T) {
	ts := services.NewTokenService("test_jwt_secret", time.Hour)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "u-1", "role": "admin", "exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ts.Verify(s)
	assert.True(t, errors.Is(err, apperr.ErrInvalidToken))

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u-1", "role": "admin"})
	s, err = noExp.SignedString([]byte("test_jwt_secret"))
	require.NoError(t, err)
	_, err = ts.Verify(s)
	assert.True(t, errors.Is(err, apperr.ErrInvalidToken))
}
