package admin_save_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-BookingEngine/internal/api/handlers"
	adminSaveBooking "github.com/m04kA/SMC-BookingEngine/internal/usecase/admin_save_booking"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgBookingNotFound    = "бронирование не найдено"
	msgServiceNotFound    = "услуга не найдена"
	msgProviderNotFound   = "исполнитель не найден"
	msgAddonNotFound      = "дополнение не найдено"
	msgImmutableField     = "услугу, исполнителя и дополнения нельзя изменить"
)

type Handler struct {
	useCase AdminSaveBookingUseCase
	logger  Logger
}

func NewHandler(useCase AdminSaveBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Create POST /api/v1/admin/bookings
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, 0, http.StatusCreated)
}

// Update PUT /api/v1/admin/bookings/{bookingId}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathInt64(r, "bookingId")
	if err != nil {
		h.logger.Warn("PUT /admin/bookings/{id} - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}
	h.save(w, r, bookingID, http.StatusOK)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, bookingID int64, successStatus int) {
	var req SaveBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("%s /admin/bookings - Invalid request body: %v", r.Method, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(bookingID)
	if err != nil {
		h.logger.Warn("%s /admin/bookings - Invalid request: %v", r.Method, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, adminSaveBooking.ErrBookingNotFound):
			h.logger.Warn("%s /admin/bookings - Booking not found: booking_id=%d", r.Method, bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, adminSaveBooking.ErrServiceNotFound):
			h.logger.Warn("%s /admin/bookings - Service not found: service_id=%d", r.Method, req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, adminSaveBooking.ErrProviderNotFound):
			h.logger.Warn("%s /admin/bookings - Provider not found: provider_id=%d", r.Method, req.ProviderID)
			handlers.RespondNotFound(w, msgProviderNotFound)

		case errors.Is(err, adminSaveBooking.ErrAddonNotFound):
			h.logger.Warn("%s /admin/bookings - Addon not found: addon_ids=%v", r.Method, req.AddonIDs)
			handlers.RespondNotFound(w, msgAddonNotFound)

		case errors.Is(err, adminSaveBooking.ErrImmutableField):
			h.logger.Warn("%s /admin/bookings - Immutable field changed: booking_id=%d", r.Method, bookingID)
			handlers.RespondBadRequest(w, msgImmutableField)

		case handlers.RespondDomainError(w, err):
			h.logger.Warn("%s /admin/bookings - Save rejected: booking_id=%d, error=%v", r.Method, bookingID, err)

		default:
			h.logger.Error("%s /admin/bookings - Failed to save booking: booking_id=%d, error=%v", r.Method, bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("%s /admin/bookings - Booking saved successfully: booking_id=%d, status=%s",
		r.Method, result.ID, result.Status)
	handlers.RespondJSON(w, successStatus, result)
}
