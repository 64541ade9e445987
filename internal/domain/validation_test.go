package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validBooking() (*Booking, *Service) {
	service := &Service{ID: 7, DurationMinutes: 60}
	return &Booking{
		ServiceID:        7,
		ProviderID:       3,
		StartAt:          at(0),
		EndAt:            at(60),
		PartySize:        1,
		CapacityConsumed: 1,
		Status:           StatusConfirmed,
		ClientName:       "Alice",
	}, service
}

func TestValidateBooking_Valid(t *testing.T) {
	b, svc := validBooking()
	assert.NoError(t, ValidateBooking(b, svc, CapacityPolicy{}))
}

func TestValidateBooking_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(b *Booking, s *Service)
	}{
		{"end before start", func(b *Booking, _ *Service) { b.EndAt = b.StartAt }},
		{"negative buffer", func(b *Booking, _ *Service) { b.BufferAfterMinutes = -1 }},
		{"missing client", func(b *Booking, _ *Service) { b.ClientName = "  " }},
		{"party size zero", func(b *Booking, _ *Service) { b.PartySize = 0 }},
		{"capacity zero", func(b *Booking, _ *Service) { b.CapacityConsumed = 0 }},
		{"party of two on single-client service", func(b *Booking, _ *Service) { b.PartySize = 2; b.CapacityConsumed = 2 }},
		{"service mismatch", func(_ *Booking, s *Service) { s.ID = 8 }},
		{"unknown status", func(b *Booking, _ *Service) { b.Status = "archived" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, svc := validBooking()
			tt.mutate(b, svc)
			assert.ErrorIs(t, ValidateBooking(b, svc, CapacityPolicy{}), ErrInvalidBooking)
		})
	}
}

func TestValidateCapacity_MultiClientAndCeiling(t *testing.T) {
	svc := &Service{ID: 1, AllowMultipleClientsPerSlot: true}

	assert.NoError(t, ValidateCapacity(4, 4, svc, CapacityPolicy{}))
	assert.NoError(t, ValidateCapacity(4, 4, svc, CapacityPolicy{MaxPartySize: 4}))
	assert.ErrorIs(t, ValidateCapacity(5, 5, svc, CapacityPolicy{MaxPartySize: 4}), ErrInvalidBooking)
}

func TestServiceAddon_SnapshotCopiesPrice(t *testing.T) {
	price := 50.0
	addon := &ServiceAddon{ID: 2, Name: "Extra time", ExtraDurationMinutes: 30, PriceAmount: &price, Currency: "TTD"}

	snap := addon.Snapshot()
	price = 75

	assert.Equal(t, int64(2), snap.AddonID)
	assert.Equal(t, 30, snap.ExtraDurationMinutesSnapshot)
	assert.Equal(t, 50.0, *snap.PriceAmountSnapshot)
	assert.Equal(t, "TTD", snap.CurrencySnapshot)
}

func TestTenantFor(t *testing.T) {
	providerTenant, serviceTenant := int64(1), int64(2)

	assert.Equal(t, &providerTenant, TenantFor(&Service{TenantID: &serviceTenant}, &Provider{TenantID: &providerTenant}))
	assert.Equal(t, &serviceTenant, TenantFor(&Service{TenantID: &serviceTenant}, &Provider{}))
	assert.Nil(t, TenantFor(&Service{}, &Provider{}))
}
