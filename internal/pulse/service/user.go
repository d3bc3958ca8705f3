package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/pulse/internal/pulse/domain"
	"github.com/aussiebroadwan/pulse/internal/pulse/store"
	"github.com/aussiebroadwan/pulse/pkg/cryptox"
	"github.com/aussiebroadwan/pulse/pkg/idx"
	"github.com/aussiebroadwan/pulse/pkg/slogx"
)

type UserService struct {
	Store  store.Store
	Tokens *TokenService
}

type SignupInput struct {
	Email          string
	Password       string
	FirstName      string
	LastName       string
	Phone          string
	CompanyName    string
	IsMultiCompany bool
	ProfileInput
}

type SettingsInput struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
	ProfileInput
}

// ProfileInput carries the optional profile fields shared by signup and
// settings. Birthday is a calendar date in YYYY-MM-DD form. Empty fields
// are left untouched.
type ProfileInput struct {
	City       string
	Hobby      string
	SocialLink string
	Birthday   string
	Language   string
}

// BirthdayLayout is the wire and storage form of a birthday.
const BirthdayLayout = "2006-01-02"

func applyProfile(u *domain.User, in ProfileInput) error {
	if v := strings.TrimSpace(in.Birthday); v != "" {
		day, err := time.Parse(BirthdayLayout, v)
		if err != nil {
			return fmt.Errorf("%w: birthday must be YYYY-MM-DD", ErrInvalidRequest)
		}
		u.Birthday = &day
	}
	if v := strings.TrimSpace(in.City); v != "" {
		u.City = v
	}
	if v := strings.TrimSpace(in.Hobby); v != "" {
		u.Hobby = v
	}
	if v := strings.TrimSpace(in.SocialLink); v != "" {
		u.SocialLink = v
	}
	if v := strings.TrimSpace(in.Language); v != "" {
		u.Language = v
	}
	return nil
}

// GetUserByID fetches a user by id. With activeOnly set, users that have
// not accepted their invite are reported as ErrUserNotFound.
func (s *UserService) GetUserByID(ctx context.Context, userID string, activeOnly bool) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID, activeOnly)
	return u, mapUserErr(err)
}

// GetUserByCompanyAndID fetches a user working in companyID with its roles
// and sub-roles.
func (s *UserService) GetUserByCompanyAndID(ctx context.Context, companyID, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByCompanyAndID(ctx, companyID, userID)
	return u, mapUserErr(err)
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByEmail(ctx, normalizeEmail(email))
	return u, mapUserErr(err)
}

// Signup creates a company together with its creator and returns the
// creator with an access token.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (domain.AuthenticatedUser, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input
	in.Email = normalizeEmail(in.Email)
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	if in.Email == "" || in.Password == "" || in.CompanyName == "" {
		return domain.AuthenticatedUser{}, ErrInvalidRequest
	}

	// 2. Hash the credential outside the transaction
	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.AuthenticatedUser{}, err
	}

	now := time.Now().UTC()
	company := domain.Company{
		ID:        idx.New().String(),
		Name:      in.CompanyName,
		IsMulti:   in.IsMultiCompany,
		CreatedAt: now,
		UpdatedAt: now,
	}
	user := domain.User{
		ID:           idx.New().String(),
		Email:        in.Email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
		CompanyID:    company.ID,
		OwnCompanyID: company.ID,
		IsCreator:    true,
		IsActive:     true,
		Roles:        []domain.Role{},
		SubRoles:     []domain.SubRole{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := applyProfile(&user, in.ProfileInput); err != nil {
		return domain.AuthenticatedUser{}, err
	}

	// 3. Company and creator are stored together
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Users().GetUserByEmail(ctx, user.Email); err == nil {
			return ErrUserAlreadyExists
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if err := tx.Companies().CreateCompany(ctx, company); err != nil {
			return err
		}
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrUserAlreadyExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrUserAlreadyExists) {
			log.Info("signup rejected, email in use")
		} else {
			log.Error("failed to create company and creator", slog.Any("error", err))
		}
		return domain.AuthenticatedUser{}, err
	}

	log.Info("company created",
		slog.String("company_id", company.ID),
		slog.String("user_id", user.ID),
	)

	// 4. Issue token
	return s.Tokens.authenticated(ctx, user)
}

// Authenticate checks an email and password pair and returns the user with
// an access token. Unknown and not yet activated users are ErrUserNotFound.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (domain.AuthenticatedUser, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.AuthenticatedUser{}, ErrUserNotFound
		}
		log.Error("failed to fetch user", slog.Any("error", err))
		return domain.AuthenticatedUser{}, err
	}
	if !user.IsActive {
		return domain.AuthenticatedUser{}, ErrUserNotFound
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		log.Info("password authentication failed", slog.String("user_id", user.ID))
		return domain.AuthenticatedUser{}, ErrIncorrectCredential
	}

	return s.Tokens.authenticated(ctx, user)
}

// UpdateSettings writes the profile fields of user. Empty fields keep their
// current value.
func (s *UserService) UpdateSettings(ctx context.Context, user domain.User, in SettingsInput) (domain.User, error) {
	log := slogx.FromContext(ctx)

	if email := normalizeEmail(in.Email); email != "" {
		user.Email = email
	}
	if v := strings.TrimSpace(in.FirstName); v != "" {
		user.FirstName = v
	}
	if v := strings.TrimSpace(in.LastName); v != "" {
		user.LastName = v
	}
	if v := strings.TrimSpace(in.Phone); v != "" {
		user.Phone = v
	}
	if err := applyProfile(&user, in.ProfileInput); err != nil {
		return domain.User{}, err
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.Store.Users().UpdateProfile(ctx, user); err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyExists):
			return domain.User{}, ErrUserAlreadyExists
		case errors.Is(err, store.ErrNotFound):
			return domain.User{}, ErrUserNotFound
		}
		log.Error("failed to update settings", slog.String("user_id", user.ID), slog.Any("error", err))
		return domain.User{}, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
