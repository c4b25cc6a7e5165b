package create_reservation

import (
	"context"
	"time"

	"github.com/lobba/scheduling-service/internal/domain"
	"github.com/lobba/scheduling-service/internal/integrations/settingsservice"
	"github.com/lobba/scheduling-service/internal/service/autoconfirm"
)

// ReservationRepository интерфейс репозитория записей
type ReservationRepository interface {
	Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error)
	// GetOverlappingWindow получает записи, чьи окна с учетом буфера пересекают [from, to)
	// В транзакции выполняется с блокировкой FOR UPDATE
	GetOverlappingWindow(ctx context.Context, businessID int64, from, to time.Time) ([]*domain.Reservation, error)
}

// BlockRepository интерфейс репозитория блокировок времени
type BlockRepository interface {
	GetActiveInWindow(ctx context.Context, businessID int64, from, to time.Time) ([]*domain.AvailabilityBlock, error)
}

// SettingsServiceClient интерфейс клиента сервиса настроек бизнеса
type SettingsServiceClient interface {
	GetBusiness(ctx context.Context, businessID int64) (*settingsservice.Business, error)
	GetService(ctx context.Context, businessID, serviceID int64) (*settingsservice.Service, error)
}

// AutoConfirmService интерфейс движка автоподтверждения
type AutoConfirmService interface {
	Apply(ctx context.Context, reservationID int64) (*autoconfirm.ApplyResult, error)
}

// TransactionManager интерфейс менеджера транзакций
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
