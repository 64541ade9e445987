package domain

import (
	"fmt"
	"time"
)

// Operation is a lifecycle operation applied to an existing booking
type Operation string

const (
	OperationApprove    Operation = "approve"
	OperationReschedule Operation = "reschedule"
	OperationCancel     Operation = "cancel"
	OperationComplete   Operation = "complete"
	OperationNoShow     Operation = "no_show"
)

// allowedSources lists the statuses each operation may start from.
// Terminal statuses appear nowhere.
var allowedSources = map[Operation][]BookingStatus{
	OperationApprove:    {StatusPending},
	OperationReschedule: {StatusPending, StatusConfirmed},
	OperationCancel:     {StatusPending, StatusConfirmed},
	OperationComplete:   {StatusPending, StatusConfirmed},
	OperationNoShow:     {StatusPending, StatusConfirmed},
}

// targetStatus is the status an operation leaves the booking in.
// Reschedule keeps the current status and is absent here.
var targetStatus = map[Operation]BookingStatus{
	OperationApprove:  StatusConfirmed,
	OperationCancel:   StatusCancelled,
	OperationComplete: StatusCompleted,
	OperationNoShow:   StatusNoShow,
}

// CanApply returns true if op is allowed from status s
func (s BookingStatus) CanApply(op Operation) bool {
	for _, src := range allowedSources[op] {
		if s == src {
			return true
		}
	}
	return false
}

// CheckTransition returns ErrInvalidState if op cannot be applied to the booking
func CheckTransition(b *Booking, op Operation) error {
	if !b.Status.CanApply(op) {
		return fmt.Errorf("%w: cannot %s booking id=%d in status %s", ErrInvalidState, op, b.ID, b.Status)
	}
	return nil
}

// TargetStatus returns the resulting status of a status-changing operation
func TargetStatus(op Operation) (BookingStatus, bool) {
	s, ok := targetStatus[op]
	return s, ok
}

// OperationTo returns the operation whose target status is s.
// Pending has none: nothing moves a booking back to pending.
func OperationTo(s BookingStatus) (Operation, bool) {
	for op, target := range targetStatus {
		if target == s {
			return op, true
		}
	}
	return "", false
}

// NoticeSatisfied reports whether now leaves at least noticeMinutes before start.
// now == start - notice is still allowed.
func NoticeSatisfied(now, start time.Time, noticeMinutes int) bool {
	deadline := start.Add(-time.Duration(noticeMinutes) * time.Minute)
	return !now.After(deadline)
}

// CheckCancellationNotice validates the service's cancellation policy
func CheckCancellationNotice(service *Service, b *Booking, now time.Time) error {
	if !service.CancellationAllowed {
		return fmt.Errorf("%w: cancellation is not allowed for service id=%d", ErrNoticeViolation, service.ID)
	}
	if !NoticeSatisfied(now, b.StartAt, service.CancellationNoticeMinutes) {
		return fmt.Errorf("%w: cancellation requires %d minutes notice", ErrNoticeViolation, service.CancellationNoticeMinutes)
	}
	return nil
}

// CheckRescheduleNotice validates the service's reschedule policy against the new start
func CheckRescheduleNotice(service *Service, newStart, now time.Time) error {
	if !service.RescheduleAllowed {
		return fmt.Errorf("%w: reschedule is not allowed for service id=%d", ErrNoticeViolation, service.ID)
	}
	if !NoticeSatisfied(now, newStart, service.RescheduleNoticeMinutes) {
		return fmt.Errorf("%w: reschedule requires %d minutes notice", ErrNoticeViolation, service.RescheduleNoticeMinutes)
	}
	return nil
}
