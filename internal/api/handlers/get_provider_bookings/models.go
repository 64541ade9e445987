package get_provider_bookings

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-BookingEngine/internal/api/handlers"
	"github.com/m04kA/SMC-BookingEngine/internal/service/bookings/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
// from, to - RFC 3339; status; includeInactive
func ToServiceRequest(providerID int64, r *http.Request) (*models.GetProviderBookingsRequest, error) {
	req := &models.GetProviderBookingsRequest{
		ProviderID: providerID,
	}

	from, err := handlers.QueryTime(r, "from")
	if err != nil {
		return nil, err
	}
	req.From = from

	to, err := handlers.QueryTime(r, "to")
	if err != nil {
		return nil, err
	}
	req.To = to

	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = &status
	}

	if raw := r.URL.Query().Get("includeInactive"); raw != "" {
		includeInactive, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid includeInactive value: %w", err)
		}
		req.IncludeInactive = includeInactive
	}

	return req, nil
}
