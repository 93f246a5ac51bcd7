package notifications

import (
	"context"
	"log/slog"
)

// LogNotifier writes alerts to the structured log. It stands in for a real
// channel (email, chat webhook) until one is wired up.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendDeadlineAlert(ctx context.Context, in DeadlineAlertInput) error {
	n.log.InfoContext(ctx, "notification.deadline_alert",
		"severity", in.Severity,
		"message", in.Message,
	)
	return nil
}
