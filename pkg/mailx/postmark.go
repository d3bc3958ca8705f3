package mailx

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
)

// PostmarkConfig holds the Postmark credentials and sender identity.
type PostmarkConfig struct {
	ServerToken  string
	AccountToken string
	SenderEmail  string
	SupportEmail string
}

// PostmarkSender sends through Postmark's transactional API.
type PostmarkSender struct {
	client *postmark.Client
	cfg    PostmarkConfig
}

// NewPostmarkSender validates cfg and returns a ready sender.
func NewPostmarkSender(cfg PostmarkConfig) (*PostmarkSender, error) {
	switch {
	case cfg.ServerToken == "":
		return nil, fmt.Errorf("%w: ServerToken is required", ErrInvalidConfig)
	case cfg.AccountToken == "":
		return nil, fmt.Errorf("%w: AccountToken is required", ErrInvalidConfig)
	case !ValidAddress(cfg.SenderEmail):
		return nil, fmt.Errorf("%w: SenderEmail must be a valid email address", ErrInvalidConfig)
	case !ValidAddress(cfg.SupportEmail):
		return nil, fmt.Errorf("%w: SupportEmail must be a valid email address", ErrInvalidConfig)
	}

	return &PostmarkSender{
		client: postmark.NewClient(cfg.ServerToken, cfg.AccountToken),
		cfg:    cfg,
	}, nil
}

// Send delivers msg. Replies go to the support address.
func (s *PostmarkSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:       s.cfg.SenderEmail,
		ReplyTo:    s.cfg.SupportEmail,
		To:         msg.To,
		Subject:    msg.Subject,
		Tag:        msg.Tag,
		HTMLBody:   msg.HTMLBody,
		TrackOpens: true,
		TrackLinks: "HtmlOnly",
	})
	if err != nil {
		return errors.Join(ErrFailedToSend, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(ErrFailedToSend, fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message))
	}
	return nil
}
