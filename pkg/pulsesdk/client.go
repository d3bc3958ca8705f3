package pulsesdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a client for the Pulse service. It provides the endpoints that
// need no token and creates authenticated Sessions.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Signup creates a company and its creator and returns a session for the
// creator.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*Session, error) {
	return c.authenticate(ctx, "/v1/users/signup", req, http.StatusCreated)
}

// Authenticate signs in with email and password.
func (c *Client) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	return c.authenticate(ctx, "/v1/users/auth", AuthRequest{Email: email, Password: password}, http.StatusOK)
}

// AcceptInvite redeems an invite token and returns a session for the now
// active user.
func (c *Client) AcceptInvite(ctx context.Context, req AcceptInviteRequest) (*Session, error) {
	return c.authenticate(ctx, "/v1/users/accept-invite", req, http.StatusOK)
}

// GetInvite returns the pending user an invite token belongs to.
func (c *Client) GetInvite(ctx context.Context, invite string) (*UserResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/users/invite?invite="+url.QueryEscape(invite), "", nil)
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// NewSession wraps an access token obtained elsewhere.
func (c *Client) NewSession(accessToken string) *Session {
	return &Session{client: c, accessToken: accessToken}
}

func (c *Client) authenticate(ctx context.Context, path string, body any, expected int) (*Session, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, path, "", body)
	if err != nil {
		return nil, err
	}

	var auth AuthResponse
	if err := decodeJSON(resp, &auth, expected); err != nil {
		return nil, err
	}
	return newSession(c, &auth), nil
}
