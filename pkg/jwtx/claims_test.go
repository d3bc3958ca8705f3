package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/pulse/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "pulse"}}

	t.Run("matching issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer("pulse"))
	})

	t.Run("empty expected issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer(""))
	})

	t.Run("mismatched issuer", func(t *testing.T) {
		require.ErrorIs(t, c.ValidateIssuer("other"), jwtx.ErrIssuer)
	})
}

func TestValidateAudience(t *testing.T) {
	c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Audience: []string{"pulse-api", "pulse-web"}}}

	t.Run("contains match", func(t *testing.T) {
		require.NoError(t, c.ValidateAudience([]string{"pulse-api"}))
	})

	t.Run("no match", func(t *testing.T) {
		require.ErrorIs(t, c.ValidateAudience([]string{"admin"}), jwtx.ErrAudience)
	})

	t.Run("empty expected list", func(t *testing.T) {
		require.NoError(t, c.ValidateAudience(nil))
	})
}

func TestValidateExpiry(t *testing.T) {
	now := time.Now().UTC()

	t.Run("valid token", func(t *testing.T) {
		c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute))}}
		require.NoError(t, c.ValidateExpiry(now, 0))
	})

	t.Run("expired token", func(t *testing.T) {
		c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))}}
		require.ErrorIs(t, c.ValidateExpiry(now, 0), jwtx.ErrExpired)
	})

	t.Run("expired within leeway", func(t *testing.T) {
		c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-10 * time.Second))}}
		require.NoError(t, c.ValidateExpiry(now, 30*time.Second))
	})

	t.Run("not yet valid", func(t *testing.T) {
		c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{NotBefore: jwt.NewNumericDate(now.Add(time.Minute))}}
		require.ErrorIs(t, c.ValidateExpiry(now, 0), jwtx.ErrNotYetValid)
	})

	t.Run("no exp or nbf", func(t *testing.T) {
		require.NoError(t, (&jwtx.Claims{}).ValidateExpiry(now, 0))
	})
}

func TestNewAccessClaims(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	c := jwtx.NewAccessClaims(jwtx.ClaimsInput{
		Subject:   "user-1",
		CompanyID: "company-1",
		Email:     "a@example.com",
		Creator:   true,
	}, "pulse", []string{"pulse-api"}, time.Hour, now)

	require.Equal(t, "user-1", c.Subject)
	require.Equal(t, "company-1", c.CompanyID)
	require.True(t, c.Creator)
	require.Equal(t, now.Add(time.Hour), c.ExpiresAt.Time)
	require.NotEmpty(t, c.ID)
}
