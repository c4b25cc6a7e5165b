package calendar_auth

type CalendarSyncService interface {
	InitiateAuth(businessID int64) string
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
