package check_slot

import (
	"context"
	"time"

	"github.com/lobba/scheduling-service/internal/domain"
	"github.com/lobba/scheduling-service/internal/integrations/settingsservice"
)

// ReservationRepository интерфейс репозитория записей
type ReservationRepository interface {
	GetOverlappingWindow(ctx context.Context, businessID int64, from, to time.Time) ([]*domain.Reservation, error)
}

// BlockRepository интерфейс репозитория блокировок времени
type BlockRepository interface {
	GetActiveInWindow(ctx context.Context, businessID int64, from, to time.Time) ([]*domain.AvailabilityBlock, error)
}

// SettingsServiceClient интерфейс клиента сервиса настроек бизнеса
type SettingsServiceClient interface {
	GetBusiness(ctx context.Context, businessID int64) (*settingsservice.Business, error)
}

// TransactionManager интерфейс менеджера транзакций
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
