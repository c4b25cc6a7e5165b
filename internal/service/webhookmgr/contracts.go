package webhookmgr

import (
	"context"
	"time"

	"github.com/lobba/scheduling-service/internal/domain"
	"github.com/lobba/scheduling-service/internal/infra/notify"
	"github.com/lobba/scheduling-service/internal/integrations/googlecalendar"
	"github.com/lobba/scheduling-service/internal/service/calendarsync"
)

// IntegrationRepository интерфейс репозитория привязок календаря
type IntegrationRepository interface {
	GetByChannel(ctx context.Context, channelID, resourceID string) (*domain.CalendarIntegration, error)
	ListWithChannels(ctx context.Context) ([]*domain.CalendarIntegration, error)
	SetChannel(ctx context.Context, businessID int64, channelID, resourceID string, expiresAt time.Time) error
	// ClearChannel обнуляет поля канала; disableSync дополнительно выключает синхронизацию
	ClearChannel(ctx context.Context, businessID int64, disableSync bool) error
}

// IntegrationProvider отдает привязку с гарантированно живым access token
type IntegrationProvider interface {
	ValidIntegration(ctx context.Context, businessID int64) (*domain.CalendarIntegration, error)
}

// CalendarClient интерфейс клиента провайдера внешнего календаря
type CalendarClient interface {
	WatchEvents(ctx context.Context, accessToken, calendarID string, watch *googlecalendar.WatchRequest) (*googlecalendar.WatchResponse, error)
	StopChannel(ctx context.Context, accessToken, channelID, resourceID string) error
}

// Syncer запускает inbound-синхронизацию по уведомлению
type Syncer interface {
	SyncInbound(ctx context.Context, businessID int64) (*calendarsync.SyncResult, error)
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
