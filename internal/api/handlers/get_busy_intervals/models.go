package get_busy_intervals

import (
	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// BusyIntervalsResponse HTTP response model
type BusyIntervalsResponse struct {
	ProviderID int64          `json:"providerId"`
	Start      string         `json:"start"`
	End        string         `json:"end"`
	Intervals  []BusyInterval `json:"intervals"`
}

// BusyInterval занятый промежуток с учетом буферов
type BusyInterval struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// FromDomain конвертирует занятые промежутки в HTTP response
func FromDomain(providerID int64, window domain.TimeRange, ranges []domain.TimeRange) *BusyIntervalsResponse {
	intervals := make([]BusyInterval, len(ranges))
	for i, r := range ranges {
		intervals[i] = BusyInterval{
			Start: r.Start.Format(domain.TimeFormat),
			End:   r.End.Format(domain.TimeFormat),
		}
	}

	return &BusyIntervalsResponse{
		ProviderID: providerID,
		Start:      window.Start.Format(domain.TimeFormat),
		End:        window.End.Format(domain.TimeFormat),
		Intervals:  intervals,
	}
}
