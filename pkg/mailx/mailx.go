// Package mailx delivers transactional email.
package mailx

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

var (
	ErrFailedToSend  = errors.New("mailx: failed to send email")
	ErrInvalidConfig = errors.New("mailx: invalid config")
	ErrInvalidParams = errors.New("mailx: invalid message")
)

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is one outbound email. Data holds the values the body was rendered
// from; loggers and dev senders may show it, transports ignore it.
type Message struct {
	To       string
	Subject  string
	Tag      string
	HTMLBody string
	Data     map[string]string
}

// Validate checks the fields every transport needs.
func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return fmt.Errorf("%w: recipient is required", ErrInvalidParams)
	}
	if !ValidAddress(m.To) {
		return fmt.Errorf("%w: recipient %q is not a valid address", ErrInvalidParams, m.To)
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidParams)
	}
	if strings.TrimSpace(m.HTMLBody) == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidParams)
	}
	return nil
}

// ValidAddress reports whether s is a bare email address such as
// "jane@example.com". Display names are rejected.
func ValidAddress(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s, "@")
}
