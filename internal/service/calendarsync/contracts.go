package calendarsync

import (
	"context"
	"time"

	"github.com/lobba/scheduling-service/internal/domain"
	"github.com/lobba/scheduling-service/internal/integrations/googlecalendar"
	"github.com/lobba/scheduling-service/internal/integrations/settingsservice"
)

// IntegrationRepository интерфейс репозитория привязок календаря
type IntegrationRepository interface {
	GetByBusinessID(ctx context.Context, businessID int64) (*domain.CalendarIntegration, error)
	UpsertTokens(ctx context.Context, businessID int64, accessToken, refreshToken string, expiresAt time.Time) error
	UpdateAccessToken(ctx context.Context, businessID int64, accessToken string, expiresAt time.Time) error
	SetCalendar(ctx context.Context, businessID int64, calendarID string) error
}

// ReservationRepository интерфейс репозитория записей
type ReservationRepository interface {
	// GetPendingOutbound получает будущие pending/confirmed записи без external_event_id
	GetPendingOutbound(ctx context.Context, businessID int64, now time.Time) ([]*domain.Reservation, error)
	// GetCancelledWithEvents получает отменённые записи, чьё внешнее событие ещё не удалено
	GetCancelledWithEvents(ctx context.Context, businessID int64) ([]*domain.Reservation, error)
	SetExternalEventID(ctx context.Context, id int64, eventID string) error
	ClearExternalEventID(ctx context.Context, id int64) error
}

// BlockRepository интерфейс репозитория блокировок времени
type BlockRepository interface {
	// UpsertExternal создает или обновляет блокировку по external_event_id
	UpsertExternal(ctx context.Context, blk *domain.AvailabilityBlock) (*domain.AvailabilityBlock, error)
}

// CalendarClient интерфейс клиента провайдера внешнего календаря
type CalendarClient interface {
	AuthCodeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*googlecalendar.Token, error)
	RefreshToken(ctx context.Context, refreshToken string) (*googlecalendar.Token, error)
	ListCalendars(ctx context.Context, accessToken string) ([]googlecalendar.Calendar, error)
	InsertEvent(ctx context.Context, accessToken, calendarID string, event *googlecalendar.Event) (*googlecalendar.Event, error)
	DeleteEvent(ctx context.Context, accessToken, calendarID, eventID string) error
	ListEvents(ctx context.Context, accessToken, calendarID string, from, to time.Time) ([]*googlecalendar.Event, error)
}

// SettingsServiceClient интерфейс клиента сервиса настроек бизнеса
type SettingsServiceClient interface {
	GetBusiness(ctx context.Context, businessID int64) (*settingsservice.Business, error)
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
