package domain

import "time"

// AuthenticatedUser is a user together with a freshly issued access token.
// Signup, password authentication and invite acceptance all return one.
type AuthenticatedUser struct {
	User      User
	Token     string
	ExpiresIn time.Duration
}
