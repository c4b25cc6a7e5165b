package apply_autoconfirm

import (
	"context"

	"github.com/lobba/scheduling-service/internal/service/autoconfirm"
)

type AutoConfirmService interface {
	Apply(ctx context.Context, reservationID int64) (*autoconfirm.ApplyResult, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
