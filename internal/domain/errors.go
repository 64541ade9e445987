package domain

import "errors"

var (
	// ErrInvalidBooking a structural rule is violated (party size, capacity, malformed interval)
	ErrInvalidBooking = errors.New("invalid booking")

	// ErrInvalidArgument malformed query argument (e.g. empty availability window)
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrSchedulingConflict the candidate interval overlaps an occupying booking
	ErrSchedulingConflict = errors.New("scheduling conflict")

	// ErrSlotUnavailable the slot authority does not offer the requested start
	ErrSlotUnavailable = errors.New("slot unavailable")

	// ErrNoticeViolation the operation is disallowed or requested inside the notice window
	ErrNoticeViolation = errors.New("notice violation")

	// ErrInvalidState the operation is not allowed from the booking's current status
	ErrInvalidState = errors.New("invalid booking state")

	// ErrTransientConflict provider lock contention; the caller may retry with backoff
	ErrTransientConflict = errors.New("transient conflict")
)

// IsRetryable reports whether the caller may retry the operation unchanged
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransientConflict)
}

// Outcome classifies an operation result for metrics labels
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrSchedulingConflict):
		return "conflict"
	case errors.Is(err, ErrSlotUnavailable):
		return "slot_unavailable"
	case errors.Is(err, ErrNoticeViolation):
		return "notice_violation"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrInvalidBooking), errors.Is(err, ErrInvalidArgument):
		return "invalid"
	case errors.Is(err, ErrTransientConflict):
		return "transient"
	}
	return "error"
}
