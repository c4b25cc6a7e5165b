package trigger_sync

import (
	"context"

	"github.com/lobba/scheduling-service/internal/service/calendarsync"
)

type CalendarSyncService interface {
	FullSync(ctx context.Context, businessID int64) (*calendarsync.SyncResult, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
