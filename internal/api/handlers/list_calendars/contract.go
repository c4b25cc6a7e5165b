package list_calendars

import (
	"context"

	"github.com/lobba/scheduling-service/internal/service/calendarsync"
)

type CalendarSyncService interface {
	ListCalendars(ctx context.Context, businessID int64) ([]calendarsync.CalendarInfo, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
