package domain

import "time"

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
	StatusNoShow    BookingStatus = "no_show"
)

// Booking represents a reservation of a provider's time for a service
type Booking struct {
	ID         int64
	ServiceID  int64
	ProviderID int64
	StartAt    time.Time
	EndAt      time.Time

	BufferBeforeMinutes int
	BufferAfterMinutes  int

	PartySize        int
	CapacityConsumed int
	Status           BookingStatus
	ClientName       string

	// Snapshots of the selected addons, immutable once created
	Addons []BookingAddon

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BookingAddon is a copy of an addon taken at booking time.
// Later edits of the addon or the service never change it.
type BookingAddon struct {
	ID                           int64
	BookingID                    int64
	AddonID                      int64
	Name                         string
	ExtraDurationMinutesSnapshot int
	PriceAmountSnapshot          *float64
	CurrencySnapshot             string
}

// IsOccupying returns true if the booking consumes provider time
func (b *Booking) IsOccupying() bool {
	return b.Status.IsOccupying()
}

// IsTerminal returns true if no lifecycle operation may be applied anymore
func (b *Booking) IsTerminal() bool {
	return b.Status.IsTerminal()
}

// Interval returns the booking's time interval together with its buffers
func (b *Booking) Interval() Interval {
	return NewInterval(b.StartAt, b.EndAt, b.BufferBeforeMinutes, b.BufferAfterMinutes)
}

// Duration returns the booked length without buffers
func (b *Booking) Duration() time.Duration {
	return b.EndAt.Sub(b.StartAt)
}

// AddonsExtraMinutes sums extra minutes over the addon snapshots
func (b *Booking) AddonsExtraMinutes() int {
	total := 0
	for _, a := range b.Addons {
		total += a.ExtraDurationMinutesSnapshot
	}
	return total
}

// IsOccupying returns true for statuses that block provider time
func (s BookingStatus) IsOccupying() bool {
	return s == StatusPending || s == StatusConfirmed
}

// IsTerminal returns true for CANCELLED, COMPLETED and NO_SHOW
func (s BookingStatus) IsTerminal() bool {
	for _, t := range TerminalStatuses {
		if s == t {
			return true
		}
	}
	return false
}

// IsValid returns true if the status is a known booking status
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

// ProviderBookingsFilter filters bookings of a provider
type ProviderBookingsFilter struct {
	ProviderID       int64          // required
	From             *time.Time     // occupied interval ends after From (optional)
	To               *time.Time     // occupied interval starts before To (optional)
	Status           *BookingStatus // exact status (optional)
	IncludeInactive  bool           // include terminal bookings
	ExcludeBookingID *int64         // skip this booking (reschedule)
}
