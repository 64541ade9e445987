package reschedule_booking

import (
	"time"

	rescheduleBooking "github.com/m04kA/SMC-BookingEngine/internal/usecase/reschedule_booking"
)

// RescheduleBookingRequest HTTP request model
type RescheduleBookingRequest struct {
	NewStartAt string `json:"newStartAt"` // RFC 3339
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleBookingRequest) ToUseCaseRequest(bookingID int64) (*rescheduleBooking.Request, error) {
	newStart, err := time.Parse(time.RFC3339, r.NewStartAt)
	if err != nil {
		return nil, err
	}

	return &rescheduleBooking.Request{
		BookingID:  bookingID,
		NewStartAt: newStart,
	}, nil
}
