package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-BookingEngine/internal/api/handlers"
	createBooking "github.com/m04kA/SMC-BookingEngine/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidStartAt     = "некорректное время начала, ожидается RFC 3339"
	msgServiceNotFound    = "услуга не найдена"
	msgProviderNotFound   = "исполнитель не найден"
	msgAddonNotFound      = "дополнение не найдено"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /bookings - Invalid startAt: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStartAt)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrServiceNotFound):
			h.logger.Warn("POST /bookings - Service not found: service_id=%d", req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createBooking.ErrProviderNotFound):
			h.logger.Warn("POST /bookings - Provider not found: provider_id=%d", req.ProviderID)
			handlers.RespondNotFound(w, msgProviderNotFound)

		case errors.Is(err, createBooking.ErrAddonNotFound):
			h.logger.Warn("POST /bookings - Addon not found: service_id=%d, addon_ids=%v", req.ServiceID, req.AddonIDs)
			handlers.RespondNotFound(w, msgAddonNotFound)

		case handlers.RespondDomainError(w, err):
			h.logger.Warn("POST /bookings - Booking rejected: provider_id=%d, start_at=%s, error=%v",
				req.ProviderID, req.StartAt, err)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: provider_id=%d, service_id=%d, error=%v",
				req.ProviderID, req.ServiceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, provider_id=%d, status=%s",
		result.ID, result.ProviderID, result.Status)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
