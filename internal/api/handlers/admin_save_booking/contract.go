package admin_save_booking

import (
	"context"

	"github.com/m04kA/SMC-BookingEngine/internal/service/bookings/models"
	adminSaveBooking "github.com/m04kA/SMC-BookingEngine/internal/usecase/admin_save_booking"
)

type AdminSaveBookingUseCase interface {
	Execute(ctx context.Context, req *adminSaveBooking.Request) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
