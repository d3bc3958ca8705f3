package pulsesdk

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Session is an authenticated client. Tokens are not refreshed: once the
// access token expires, authenticate again.
type Session struct {
	client *Client

	mu          sync.RWMutex
	accessToken string
	expiresAt   time.Time
	user        UserResponse
}

func newSession(c *Client, auth *AuthResponse) *Session {
	return &Session{
		client:      c,
		accessToken: auth.AccessToken,
		expiresAt:   time.Now().Add(time.Duration(auth.ExpiresIn) * time.Second),
		user:        auth.User,
	}
}

// AccessToken returns the bearer token of the session.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// ExpiresAt returns when the access token stops being accepted. It is the
// zero time for sessions created with NewSession.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// User returns the user the session was issued for, as reported at
// authentication time.
func (s *Session) User() UserResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	return s.client.doRequest(ctx, method, path, s.AccessToken(), body)
}

// Me returns the authenticated user with its roles and sub-roles.
func (s *Session) Me(ctx context.Context) (*UserResponse, error) {
	resp, err := s.do(ctx, http.MethodGet, "/v1/users/me", nil)
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateSettings writes profile fields of the authenticated user.
func (s *Session) UpdateSettings(ctx context.Context, req SettingsRequest) (*UserResponse, error) {
	resp, err := s.do(ctx, http.MethodPut, "/v1/users/settings", req)
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return &user, nil
}

// InviteUsers invites emails into the caller's company. Only company
// creators may invite. Per address outcomes are reported in the response.
func (s *Session) InviteUsers(ctx context.Context, emails ...string) (*InviteResponse, error) {
	resp, err := s.do(ctx, http.MethodPost, "/v1/users/invite", InviteRequest{Emails: emails})
	if err != nil {
		return nil, err
	}

	var out InviteResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
