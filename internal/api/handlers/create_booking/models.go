package create_booking

import (
	"time"

	createBooking "github.com/m04kA/SMC-BookingEngine/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ServiceID           int64   `json:"serviceId"`
	ProviderID          int64   `json:"providerId"`
	StartAt             string  `json:"startAt"` // RFC 3339
	ClientName          string  `json:"clientName"`
	AddonIDs            []int64 `json:"addonIds,omitempty"`
	PartySize           int     `json:"partySize,omitempty"`
	CapacityConsumed    *int    `json:"capacityConsumed,omitempty"`
	BufferBeforeMinutes int     `json:"bufferBeforeMinutes,omitempty"`
	BufferAfterMinutes  int     `json:"bufferAfterMinutes,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest() (*createBooking.Request, error) {
	startAt, err := time.Parse(time.RFC3339, r.StartAt)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		ServiceID:           r.ServiceID,
		ProviderID:          r.ProviderID,
		StartAt:             startAt,
		ClientName:          r.ClientName,
		AddonIDs:            r.AddonIDs,
		PartySize:           r.PartySize,
		CapacityConsumed:    r.CapacityConsumed,
		BufferBeforeMinutes: r.BufferBeforeMinutes,
		BufferAfterMinutes:  r.BufferAfterMinutes,
	}, nil
}
