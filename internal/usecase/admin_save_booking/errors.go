package admin_save_booking

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

var (
	// ErrBookingNotFound возвращается, когда редактируемое бронирование не найдено
	ErrBookingNotFound = errors.New("admin_save_booking: booking not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("admin_save_booking: service not found")

	// ErrProviderNotFound возвращается, когда исполнитель не найден
	ErrProviderNotFound = errors.New("admin_save_booking: provider not found")

	// ErrAddonNotFound возвращается, когда дополнение не найдено у услуги
	ErrAddonNotFound = errors.New("admin_save_booking: addon not found")

	// ErrImmutableField возвращается при попытке сменить услугу, исполнителя или дополнения
	ErrImmutableField = fmt.Errorf("%w: admin_save_booking: service, provider and addons are immutable", domain.ErrInvalidBooking)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: admin_save_booking: invalid input data", domain.ErrInvalidBooking)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("admin_save_booking: internal error")
)
