package autoconfirm

import (
	"context"
	"time"

	"github.com/lobba/scheduling-service/internal/domain"
	"github.com/lobba/scheduling-service/internal/infra/notify"
	"github.com/lobba/scheduling-service/internal/integrations/settingsservice"
)

// ReservationRepository интерфейс репозитория записей
type ReservationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	// ConfirmAuto переводит pending запись в confirmed с пометкой автоподтверждения
	ConfirmAuto(ctx context.Context, id int64) error
	CountByUser(ctx context.Context, userID, businessID int64) (int, error)
	CountByUserAndStatus(ctx context.Context, userID, businessID int64, status domain.ReservationStatus) (int, error)
	CountSameDay(ctx context.Context, userID, businessID int64, dayStart, dayEnd time.Time) (int, error)
}

// SettingsServiceClient интерфейс клиента сервиса настроек бизнеса
type SettingsServiceClient interface {
	GetBusiness(ctx context.Context, businessID int64) (*settingsservice.Business, error)
	GetAutoConfirmSettings(ctx context.Context, businessID int64) (*settingsservice.AutoConfirmSettings, error)
}

// TransactionManager интерфейс менеджера транзакций
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier интерфейс эмиттера внутренних уведомлений
type Notifier interface {
	Emit(ctx context.Context, event notify.Event)
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
