package service

import "errors"

var (
	ErrNotOwner            = errors.New("actor is not the company creator")
	ErrRoleNotFound        = errors.New("role not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrNoParentRole        = errors.New("user does not hold the parent role")
	ErrInviteNotFound      = errors.New("invite not found or expired")
	ErrIncorrectCredential = errors.New("incorrect credential")
	ErrUserAlreadyExists   = errors.New("user already exists")
	ErrInvalidRequest      = errors.New("invalid request")

	// ErrSubRoleNotFound also matches ErrRoleNotFound, so callers that only
	// care about "no such role" need a single check.
	ErrSubRoleNotFound error = &kindError{msg: "sub-role not found", parent: ErrRoleNotFound}
)

type kindError struct {
	msg    string
	parent error
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.parent }
