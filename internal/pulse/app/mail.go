package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/pulse/pkg/mailx"
)

// NewMailer returns the sender selected by cfg.MailProvider.
func NewMailer(cfg Config, logger *slog.Logger) (mailx.Sender, error) {
	switch cfg.MailProvider {
	case "postmark":
		sender, err := mailx.NewPostmarkSender(mailx.PostmarkConfig{
			ServerToken:  cfg.PostmarkServerToken,
			AccountToken: cfg.PostmarkAccountToken,
			SenderEmail:  cfg.MailSender,
			SupportEmail: cfg.MailSupport,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to configure postmark: %w", err)
		}
		logger.Info("mail delivery via postmark", "sender", cfg.MailSender)
		return sender, nil

	case "log", "":
		logger.Warn("mail delivery disabled, invites are only logged")
		return mailx.LogSender{}, nil

	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.MailProvider)
	}
}
