package availability

import (
	"context"

	"github.com/lobba/scheduling-service/internal/integrations/settingsservice"
)

// SettingsServiceClient интерфейс клиента сервиса настроек бизнеса
type SettingsServiceClient interface {
	GetBusiness(ctx context.Context, businessID int64) (*settingsservice.Business, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
