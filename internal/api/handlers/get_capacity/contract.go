package get_capacity

import (
	"context"

	"github.com/lobba/scheduling-service/internal/service/availability"
)

type AvailabilityService interface {
	GetCapacity(ctx context.Context, businessID int64) (*availability.Capacity, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
