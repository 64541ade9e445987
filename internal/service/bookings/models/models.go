package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// GetProviderBookingsRequest запрос на получение бронирований исполнителя
type GetProviderBookingsRequest struct {
	ProviderID      int64      `json:"providerId"`
	From            *time.Time `json:"from,omitempty"`            // Начало периода (опционально)
	To              *time.Time `json:"to,omitempty"`              // Конец периода (опционально)
	Status          *string    `json:"status,omitempty"`          // Фильтр по статусу (опционально)
	IncludeInactive bool       `json:"includeInactive,omitempty"` // Включить завершённые и отменённые
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetProviderBookingsRequest) ToDomainFilter() (domain.ProviderBookingsFilter, error) {
	filter := domain.ProviderBookingsFilter{
		ProviderID:      r.ProviderID,
		From:            r.From,
		To:              r.To,
		IncludeInactive: r.IncludeInactive,
	}

	// Конвертируем статус если указан
	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingAddonResponse снимок дополнения в ответе
type BookingAddonResponse struct {
	AddonID              int64    `json:"addonId"`
	Name                 string   `json:"name"`
	ExtraDurationMinutes int      `json:"extraDurationMinutes"`
	PriceAmount          *float64 `json:"priceAmount,omitempty"`
	Currency             string   `json:"currency,omitempty"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID                  int64  `json:"id"`
	ServiceID           int64  `json:"serviceId"`
	ProviderID          int64  `json:"providerId"`
	StartAt             string `json:"startAt"` // RFC 3339
	EndAt               string `json:"endAt"`   // RFC 3339
	BufferBeforeMinutes int    `json:"bufferBeforeMinutes"`
	BufferAfterMinutes  int    `json:"bufferAfterMinutes"`
	PartySize           int    `json:"partySize"`
	CapacityConsumed    int    `json:"capacityConsumed"`
	Status              string `json:"status"`
	ClientName          string `json:"clientName"`

	Addons []BookingAddonResponse `json:"addons"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // RFC 3339

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                  b.ID,
		ServiceID:           b.ServiceID,
		ProviderID:          b.ProviderID,
		StartAt:             b.StartAt.Format(domain.TimeFormat),
		EndAt:               b.EndAt.Format(domain.TimeFormat),
		BufferBeforeMinutes: b.BufferBeforeMinutes,
		BufferAfterMinutes:  b.BufferAfterMinutes,
		PartySize:           b.PartySize,
		CapacityConsumed:    b.CapacityConsumed,
		Status:              string(b.Status),
		ClientName:          b.ClientName,
		Addons:              make([]BookingAddonResponse, 0, len(b.Addons)),
		CancellationReason:  b.CancellationReason,
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}

	for _, a := range b.Addons {
		resp.Addons = append(resp.Addons, BookingAddonResponse{
			AddonID:              a.AddonID,
			Name:                 a.Name,
			ExtraDurationMinutes: a.ExtraDurationMinutesSnapshot,
			PriceAmount:          a.PriceAmountSnapshot,
			Currency:             a.CurrencySnapshot,
		})
	}

	// Конвертируем CancelledAt в строку RFC 3339
	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(domain.TimeFormat)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}
