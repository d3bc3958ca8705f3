package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aussiebroadwan/pulse/internal/pulse/domain"
	"github.com/aussiebroadwan/pulse/internal/pulse/store"
	"github.com/aussiebroadwan/pulse/pkg/cryptox"
	"github.com/aussiebroadwan/pulse/pkg/idx"
	"github.com/aussiebroadwan/pulse/pkg/mailx"
	"github.com/aussiebroadwan/pulse/pkg/slogx"
)

const (
	DefaultInviteTTL         = 7 * 24 * time.Hour
	DefaultInviteConcurrency = 4

	inviteSubject = "Pulse Invite"
	inviteTag     = "invite"
)

type InviteService struct {
	Store  store.Store
	Mailer mailx.Sender
	Tokens *TokenService

	// TTL is how long an invite token stays redeemable.
	TTL time.Duration
	// Concurrency bounds the number of recipients processed at once.
	Concurrency int
	// AcceptURL, when set, is linked from the email with the token appended
	// as the "invite" query parameter.
	AcceptURL string
}

// InviteResult is the outcome for one recipient. Err is nil when the user
// was created and the notification was handed to the mailer.
type InviteResult struct {
	Email  string
	UserID string
	Err    error
}

// InviteUsers creates an inactive user in the actor's company for every
// distinct address in emails and mails each an invite token. Recipients are
// independent: a failure for one never affects another, and a failed
// delivery does not remove the created user. Results keep the order of the
// de-duplicated input.
func (s *InviteService) InviteUsers(ctx context.Context, actor domain.User, emails []string) ([]InviteResult, error) {
	log := slogx.FromContext(ctx)

	if err := Authorize(actor, PermInviteUsers); err != nil {
		return nil, err
	}

	recipients := dedupeEmails(emails)
	if len(recipients) == 0 {
		return nil, ErrInvalidRequest
	}

	results := make([]InviteResult, len(recipients))

	var g errgroup.Group
	g.SetLimit(s.concurrency())
	for i, email := range recipients {
		g.Go(func() error {
			results[i] = s.inviteOne(ctx, actor, email)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	log.Info("invitations processed",
		slog.String("company_id", actor.OwnCompanyID),
		slog.Int("recipients", len(results)),
		slog.Int("failed", failed),
	)
	return results, nil
}

func (s *InviteService) inviteOne(ctx context.Context, actor domain.User, email string) InviteResult {
	log := slogx.FromContext(ctx).With(slog.String("email", email))
	res := InviteResult{Email: email}

	if !mailx.ValidAddress(email) {
		res.Err = fmt.Errorf("%w: %q is not a valid address", ErrInvalidRequest, email)
		return res
	}

	// 1. Random credential nobody knows, replaced on acceptance
	placeholder, err := cryptox.UnusablePasswordHash()
	if err != nil {
		res.Err = err
		return res
	}

	// 2. Single use token, only the fingerprint is stored
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate invite token", slog.Any("error", err))
		res.Err = err
		return res
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.ttl())
	user := domain.User{
		ID:              idx.New().String(),
		Email:           email,
		FirstName:       email,
		LastName:        email,
		PasswordHash:    placeholder,
		CompanyID:       actor.OwnCompanyID,
		IsCreator:       false,
		IsActive:        false,
		InviteHash:      cryptox.FingerprintToken(token),
		InviteExpiresAt: &expiresAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// 3. Persist before anything leaves the process
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Info("invite skipped, email in use")
			res.Err = ErrUserAlreadyExists
			return res
		}
		log.Error("failed to create invited user", slog.Any("error", err))
		res.Err = err
		return res
	}
	res.UserID = user.ID

	// 4. Notify. The user stays even when delivery fails.
	if err := s.send(ctx, email, token, expiresAt); err != nil {
		log.Error("failed to send invite", slog.String("user_id", user.ID), slog.Any("error", err))
		res.Err = err
		return res
	}

	log.Info("user invited", slog.String("user_id", user.ID))
	return res
}

func (s *InviteService) send(ctx context.Context, email, token string, expiresAt time.Time) error {
	message := "Welcome to Pulse, " + email

	acceptURL := ""
	if s.AcceptURL != "" {
		acceptURL = s.AcceptURL + "?invite=" + url.QueryEscape(token)
	}

	body, err := mailx.Render("invite.html", map[string]string{
		"Message":   message,
		"AcceptURL": acceptURL,
		"InviteKey": token,
		"ExpiresAt": expiresAt.Format(time.RFC1123),
	})
	if err != nil {
		return err
	}

	return s.Mailer.Send(ctx, mailx.Message{
		To:       email,
		Subject:  inviteSubject,
		Tag:      inviteTag,
		HTMLBody: body,
		Data: map[string]string{
			"message":   message,
			"inviteKey": token,
		},
	})
}

// GetInvite returns the user a pending, unexpired invite token belongs to.
func (s *InviteService) GetInvite(ctx context.Context, token string) (domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.User{}, ErrInviteNotFound
	}

	user, err := s.Store.Users().GetPendingUserByInviteHash(ctx, cryptox.FingerprintToken(token), time.Now().UTC())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInviteNotFound
		}
		slogx.FromContext(ctx).Error("failed to fetch invite", slog.Any("error", err))
		return domain.User{}, err
	}
	return user, nil
}

// AcceptInvite redeems an invite token: it stores the chosen password and
// names, activates the user and makes the token unusable. The activated
// user is returned with an access token.
func (s *InviteService) AcceptInvite(
	ctx context.Context,
	token string,
	password string,
	firstName string,
	lastName string,
) (domain.AuthenticatedUser, error) {
	log := slogx.FromContext(ctx)

	token = strings.TrimSpace(token)
	if token == "" {
		return domain.AuthenticatedUser{}, ErrInviteNotFound
	}
	if password == "" {
		return domain.AuthenticatedUser{}, ErrInvalidRequest
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.AuthenticatedUser{}, err
	}

	var user domain.User
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 1. Token must match a pending invite
		u, err := tx.Users().GetPendingUserByInviteHash(ctx, cryptox.FingerprintToken(token), time.Now().UTC())
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInviteNotFound
			}
			return err
		}

		// 2. Activate and burn the token
		u.PasswordHash = hash
		if v := strings.TrimSpace(firstName); v != "" {
			u.FirstName = v
		}
		if v := strings.TrimSpace(lastName); v != "" {
			u.LastName = v
		}
		u.UpdatedAt = time.Now().UTC()
		if err := tx.Users().ActivateInvitedUser(ctx, u); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInviteNotFound
			}
			return err
		}

		u.IsActive = true
		u.InviteHash = ""
		u.InviteExpiresAt = nil
		user = u
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrInviteNotFound) {
			log.Error("failed to accept invite", slog.Any("error", err))
		}
		return domain.AuthenticatedUser{}, err
	}

	log.Info("invite accepted", slog.String("user_id", user.ID))
	return s.Tokens.authenticated(ctx, user)
}

func (s *InviteService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultInviteTTL
	}
	return s.TTL
}

func (s *InviteService) concurrency() int {
	if s.Concurrency <= 0 {
		return DefaultInviteConcurrency
	}
	return s.Concurrency
}

func dedupeEmails(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		e = normalizeEmail(e)
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}
