package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL is the lifetime of a session token when none is
// configured.
const DefaultAccessTokenTTL = 24 * time.Hour

// Claims are the session token claims. The subject is always the user id.
type Claims struct {
	jwt.RegisteredClaims

	// CompanyID is the company the user works in.
	CompanyID string `json:"cid,omitempty"`

	// Email at the time the token was issued.
	Email string `json:"email,omitempty"`

	// Creator is informational only; authorization always reloads the user.
	Creator bool `json:"creator,omitempty"`
}

// ClaimsInput describes the user the token is issued for.
type ClaimsInput struct {
	Subject   string
	CompanyID string
	Email     string
	Creator   bool
}

// NewAccessClaims builds minimally-correct claims.
func NewAccessClaims(in ClaimsInput, issuer string, audience []string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   in.Subject,
			Audience:  jwt.ClaimStrings(audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		CompanyID: in.CompanyID,
		Email:     in.Email,
		Creator:   in.Creator,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience checks if at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil
	}
	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}
	return ErrAudience
}

// ValidateExpiry checks exp and nbf against now, allowing leeway for clock
// skew in both directions.
func (c *Claims) ValidateExpiry(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}
