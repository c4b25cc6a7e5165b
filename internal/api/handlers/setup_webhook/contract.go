package setup_webhook

import (
	"context"

	"github.com/lobba/scheduling-service/internal/service/webhookmgr"
)

type WebhookService interface {
	SetupWebhook(ctx context.Context, businessID int64, callbackURL string) (*webhookmgr.ChannelInfo, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
