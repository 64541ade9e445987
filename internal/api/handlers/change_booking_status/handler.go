package change_booking_status

import (
	"context"
	"errors"
	"net/http"

	"github.com/m04kA/SMC-BookingEngine/internal/api/handlers"
	"github.com/m04kA/SMC-BookingEngine/internal/service/bookings"
	"github.com/m04kA/SMC-BookingEngine/internal/service/bookings/models"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgNotFound         = "бронирование не найдено"
)

type statusChange func(ctx context.Context, bookingID int64) (*models.BookingResponse, error)

// Handler переводы статуса без тела запроса: завершение, неявка, подтверждение
type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Complete PATCH /api/v1/bookings/{bookingId}/complete
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "complete", h.service.Complete)
}

// NoShow PATCH /api/v1/bookings/{bookingId}/no-show
func (h *Handler) NoShow(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "no-show", h.service.MarkNoShow)
}

// Approve PATCH /api/v1/bookings/{bookingId}/approve
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "approve", h.service.Approve)
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request, action string, change statusChange) {
	bookingID, err := handlers.PathInt64(r, "bookingId")
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/%s - Invalid booking ID: %v", action, err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	result, err := change(r.Context(), bookingID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("PATCH /bookings/{id}/%s - Booking not found: booking_id=%d", action, bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case handlers.RespondDomainError(w, err):
			h.logger.Warn("PATCH /bookings/{id}/%s - Transition rejected: booking_id=%d, error=%v", action, bookingID, err)

		default:
			h.logger.Error("PATCH /bookings/{id}/%s - Failed to change status: booking_id=%d, error=%v",
				action, bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id}/%s - Status changed successfully: booking_id=%d, status=%s",
		action, bookingID, result.Status)
	handlers.RespondJSON(w, http.StatusOK, result)
}
