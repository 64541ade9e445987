package events

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// Type тип события жизненного цикла бронирования, он же routing key
type Type string

const (
	TypeCreated     Type = "booking.created"
	TypeRescheduled Type = "booking.rescheduled"
	TypeCancelled   Type = "booking.cancelled"
	TypeCompleted   Type = "booking.completed"
	TypeNoShow      Type = "booking.no_show"
	TypeApproved    Type = "booking.approved"
	TypeSaved       Type = "booking.saved"
)

// BookingEvent сообщение о событии бронирования
type BookingEvent struct {
	Type       Type      `json:"type"`
	BookingID  int64     `json:"bookingId"`
	ServiceID  int64     `json:"serviceId"`
	ProviderID int64     `json:"providerId"`
	Status     string    `json:"status"`
	StartAt    time.Time `json:"startAt"`
	EndAt      time.Time `json:"endAt"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewBookingEvent собирает событие из доменной модели
func NewBookingEvent(t Type, b *domain.Booking, occurredAt time.Time) BookingEvent {
	return BookingEvent{
		Type:       t,
		BookingID:  b.ID,
		ServiceID:  b.ServiceID,
		ProviderID: b.ProviderID,
		Status:     string(b.Status),
		StartAt:    b.StartAt,
		EndAt:      b.EndAt,
		OccurredAt: occurredAt,
	}
}

// TypeForOperation возвращает тип события для операции жизненного цикла
func TypeForOperation(op domain.Operation) Type {
	switch op {
	case domain.OperationApprove:
		return TypeApproved
	case domain.OperationReschedule:
		return TypeRescheduled
	case domain.OperationCancel:
		return TypeCancelled
	case domain.OperationComplete:
		return TypeCompleted
	case domain.OperationNoShow:
		return TypeNoShow
	}
	return TypeSaved
}
