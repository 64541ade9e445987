package change_booking_status

import (
	"context"

	"github.com/m04kA/SMC-BookingEngine/internal/service/bookings/models"
)

type BookingService interface {
	Complete(ctx context.Context, bookingID int64) (*models.BookingResponse, error)
	MarkNoShow(ctx context.Context, bookingID int64) (*models.BookingResponse, error)
	Approve(ctx context.Context, bookingID int64) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
