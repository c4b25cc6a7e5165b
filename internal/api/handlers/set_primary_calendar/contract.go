package set_primary_calendar

import "context"

type CalendarSyncService interface {
	SetPrimaryCalendar(ctx context.Context, businessID int64, calendarID string) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
