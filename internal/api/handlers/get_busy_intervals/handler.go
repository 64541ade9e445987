package get_busy_intervals

import (
	"net/http"

	"github.com/m04kA/SMC-BookingEngine/internal/api/handlers"
	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

const (
	msgInvalidProviderID = "некорректный ID исполнителя"
	msgMissingWindow     = "параметры start и end обязательны"
	msgInvalidWindow     = "некорректное окно, ожидается RFC 3339 и end позже start"
)

type Handler struct {
	service AvailabilityService
	logger  Logger
}

func NewHandler(service AvailabilityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/providers/{providerId}/busy-intervals
// Query params: start, end (обязательные, RFC 3339)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, err := handlers.PathInt64(r, "providerId")
	if err != nil {
		h.logger.Warn("GET /providers/{id}/busy-intervals - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	start, errStart := handlers.QueryTime(r, "start")
	end, errEnd := handlers.QueryTime(r, "end")
	if errStart != nil || errEnd != nil {
		h.logger.Warn("GET /providers/{id}/busy-intervals - Invalid window: start_err=%v, end_err=%v", errStart, errEnd)
		handlers.RespondBadRequest(w, msgInvalidWindow)
		return
	}
	if start == nil || end == nil {
		h.logger.Warn("GET /providers/{id}/busy-intervals - Missing window: provider_id=%d", providerID)
		handlers.RespondBadRequest(w, msgMissingWindow)
		return
	}

	ranges, err := h.service.GetBusyIntervals(r.Context(), providerID, *start, *end)
	if err != nil {
		if handlers.RespondDomainError(w, err) {
			h.logger.Warn("GET /providers/{id}/busy-intervals - Invalid window: provider_id=%d, error=%v", providerID, err)
			return
		}
		h.logger.Error("GET /providers/{id}/busy-intervals - Failed to get busy intervals: provider_id=%d, error=%v",
			providerID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /providers/{id}/busy-intervals - Busy intervals retrieved successfully: provider_id=%d, count=%d",
		providerID, len(ranges))
	handlers.RespondJSON(w, http.StatusOK, FromDomain(providerID, domain.TimeRange{Start: *start, End: *end}, ranges))
}
