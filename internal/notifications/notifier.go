package notifications

import "context"

type DeadlineAlertInput struct {
	Severity string
	Message  string
}

type Notifier interface {
	SendDeadlineAlert(ctx context.Context, input DeadlineAlertInput) error
}
