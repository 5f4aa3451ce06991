package alert

import (
	"context"
	"log/slog"
)

// LogNotifier writes notifications to the structured log. It is the default
// delivery channel when no queue is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, userID int64, subject, body string) error {
	n.logger.Info("alert notification",
		"user_id", userID,
		"subject", subject,
		"body", body,
	)
	return nil
}
