package calendar_callback

import "context"

type CalendarSyncService interface {
	HandleAuthCallback(ctx context.Context, businessID int64, code string) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
