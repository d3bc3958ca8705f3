package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/pulse/internal/pulse/domain"
	"github.com/aussiebroadwan/pulse/pkg/jwtx"
	"github.com/aussiebroadwan/pulse/pkg/slogx"
)

// Audience is the only audience tokens issued by pulse are valid for.
const Audience = "pulse"

type TokenService struct {
	Signer    jwtx.Signer
	Issuer    string
	AccessTTL time.Duration
}

// IssueToken signs an access token whose subject is the user id.
func (s *TokenService) IssueToken(ctx context.Context, user domain.User) (string, error) {
	ttl := s.ttl()
	claims := jwtx.NewAccessClaims(jwtx.ClaimsInput{
		Subject:   user.ID,
		CompanyID: user.CompanyID,
		Email:     user.Email,
		Creator:   user.IsCreator,
	}, s.Issuer, []string{Audience}, ttl, time.Now())

	token, err := s.Signer.Sign(claims)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to sign access token",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
		return "", err
	}
	return token, nil
}

// authenticated wraps user with a fresh token.
func (s *TokenService) authenticated(ctx context.Context, user domain.User) (domain.AuthenticatedUser, error) {
	token, err := s.IssueToken(ctx, user)
	if err != nil {
		return domain.AuthenticatedUser{}, err
	}
	return domain.AuthenticatedUser{User: user, Token: token, ExpiresIn: s.ttl()}, nil
}

func (s *TokenService) ttl() time.Duration {
	if s.AccessTTL <= 0 {
		return jwtx.DefaultAccessTokenTTL
	}
	return s.AccessTTL
}
