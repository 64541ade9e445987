package admin_save_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	adminSaveBooking "github.com/m04kA/SMC-BookingEngine/internal/usecase/admin_save_booking"
)

// SaveBookingRequest HTTP request model
type SaveBookingRequest struct {
	ServiceID           int64   `json:"serviceId"`
	ProviderID          int64   `json:"providerId"`
	StartAt             string  `json:"startAt"`         // RFC 3339
	EndAt               *string `json:"endAt,omitempty"` // RFC 3339, должен совпадать с вычисленным концом
	AddonIDs            []int64 `json:"addonIds,omitempty"`
	BufferBeforeMinutes int     `json:"bufferBeforeMinutes"`
	BufferAfterMinutes  int     `json:"bufferAfterMinutes"`
	PartySize           int     `json:"partySize"`
	CapacityConsumed    int     `json:"capacityConsumed"`
	Status              *string `json:"status,omitempty"`
	ClientName          string  `json:"clientName"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case, id == 0 - создание
func (r *SaveBookingRequest) ToUseCaseRequest(id int64) (*adminSaveBooking.Request, error) {
	startAt, err := time.Parse(time.RFC3339, r.StartAt)
	if err != nil {
		return nil, fmt.Errorf("startAt: %w", err)
	}

	req := &adminSaveBooking.Request{
		ID:                  id,
		ServiceID:           r.ServiceID,
		ProviderID:          r.ProviderID,
		StartAt:             startAt,
		AddonIDs:            r.AddonIDs,
		BufferBeforeMinutes: r.BufferBeforeMinutes,
		BufferAfterMinutes:  r.BufferAfterMinutes,
		PartySize:           r.PartySize,
		CapacityConsumed:    r.CapacityConsumed,
		ClientName:          r.ClientName,
	}

	if r.EndAt != nil {
		endAt, err := time.Parse(time.RFC3339, *r.EndAt)
		if err != nil {
			return nil, fmt.Errorf("endAt: %w", err)
		}
		req.EndAt = &endAt
	}

	if r.Status != nil {
		status := domain.BookingStatus(*r.Status)
		if !status.IsValid() {
			return nil, fmt.Errorf("status: unknown value %q", *r.Status)
		}
		req.Status = &status
	}

	return req, nil
}
