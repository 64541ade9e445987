package reschedule_booking

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("reschedule_booking: booking not found")

	// ErrServiceNotFound возвращается, когда услуга бронирования не найдена
	ErrServiceNotFound = errors.New("reschedule_booking: service not found")

	// ErrProviderNotFound возвращается, когда исполнитель бронирования не найден
	ErrProviderNotFound = errors.New("reschedule_booking: provider not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: reschedule_booking: invalid input data", domain.ErrInvalidBooking)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_booking: internal error")
)
