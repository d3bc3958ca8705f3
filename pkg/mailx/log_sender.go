package mailx

import (
	"context"
	"log/slog"
	"sort"

	"github.com/aussiebroadwan/pulse/pkg/slogx"
)

// LogSender writes messages to the request logger instead of delivering
// them. It is meant for local development and tests.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	keys := make([]string, 0, len(msg.Data))
	for k := range msg.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]any, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.String(k, msg.Data[k]))
	}

	slogx.FromContext(ctx).Info("email not delivered (log sender)",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("tag", msg.Tag),
		slog.Group("data", attrs...),
	)
	return nil
}
