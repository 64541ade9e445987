package domain

import (
	"fmt"
	"strings"
)

// CapacityPolicy configures optional capacity limits on top of the base rule
type CapacityPolicy struct {
	// MaxPartySize caps party_size for multi-client services, 0 means no cap
	MaxPartySize int
}

// ValidateBooking runs the model-level invariants every write path must pass
func ValidateBooking(b *Booking, service *Service, policy CapacityPolicy) error {
	if b.ServiceID <= 0 || b.ProviderID <= 0 {
		return fmt.Errorf("%w: service and provider are required", ErrInvalidBooking)
	}
	if service == nil || service.ID != b.ServiceID {
		return fmt.Errorf("%w: booking service does not match", ErrInvalidBooking)
	}
	if b.StartAt.IsZero() || b.EndAt.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidBooking)
	}
	if !b.EndAt.After(b.StartAt) {
		return fmt.Errorf("%w: end must be after start", ErrInvalidBooking)
	}
	if err := validateBuffers(b.BufferBeforeMinutes, b.BufferAfterMinutes); err != nil {
		return err
	}
	if strings.TrimSpace(b.ClientName) == "" {
		return fmt.Errorf("%w: client name is required", ErrInvalidBooking)
	}
	if len(b.ClientName) > MaxClientNameLength {
		return fmt.Errorf("%w: client name exceeds %d characters", ErrInvalidBooking, MaxClientNameLength)
	}
	if !b.Status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidBooking, b.Status)
	}
	return ValidateCapacity(b.PartySize, b.CapacityConsumed, service, policy)
}

// ValidateCapacity enforces party_size/capacity rules.
// party_size > 1 needs a service that allows multiple clients per slot.
func ValidateCapacity(partySize, capacityConsumed int, service *Service, policy CapacityPolicy) error {
	if partySize < MinPartySize {
		return fmt.Errorf("%w: party size must be at least %d", ErrInvalidBooking, MinPartySize)
	}
	if capacityConsumed < 1 {
		return fmt.Errorf("%w: capacity consumed must be at least 1", ErrInvalidBooking)
	}
	if partySize > 1 && !service.AllowMultipleClientsPerSlot {
		return fmt.Errorf("%w: service id=%d does not allow multiple clients per slot", ErrInvalidBooking, service.ID)
	}
	if policy.MaxPartySize > 0 && partySize > policy.MaxPartySize {
		return fmt.Errorf("%w: party size %d exceeds limit %d", ErrInvalidBooking, partySize, policy.MaxPartySize)
	}
	return nil
}

func validateBuffers(before, after int) error {
	if before < 0 || after < 0 {
		return fmt.Errorf("%w: buffers must be non-negative", ErrInvalidBooking)
	}
	if before > MaxBufferMinutes || after > MaxBufferMinutes {
		return fmt.Errorf("%w: buffers must not exceed %d minutes", ErrInvalidBooking, MaxBufferMinutes)
	}
	return nil
}
