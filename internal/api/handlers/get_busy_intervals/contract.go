package get_busy_intervals

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

type AvailabilityService interface {
	GetBusyIntervals(ctx context.Context, providerID int64, windowStart, windowEnd time.Time) ([]domain.TimeRange, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
