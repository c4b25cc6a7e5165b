package get_day_availability

import (
	"context"
	"time"

	"github.com/lobba/scheduling-service/internal/domain"
	"github.com/lobba/scheduling-service/internal/integrations/settingsservice"
)

// ReservationRepository интерфейс репозитория записей
type ReservationRepository interface {
	// GetOverlappingWindow получает записи, чьи окна с учетом буфера пересекают [from, to)
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
