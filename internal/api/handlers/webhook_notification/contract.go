package webhook_notification

import "context"

type WebhookService interface {
	HandleNotification(ctx context.Context, channelID, resourceID, resourceState string) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
