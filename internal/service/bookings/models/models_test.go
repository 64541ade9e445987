package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/ptr"
)

func TestFromDomainBooking(t *testing.T) {
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	cancelledAt := start.Add(-time.Hour)
	b := &domain.Booking{
		ID:                 1,
		ServiceID:          2,
		ProviderID:         3,
		StartAt:            start,
		EndAt:              start.Add(75 * time.Minute),
		PartySize:          1,
		CapacityConsumed:   1,
		Status:             domain.StatusCancelled,
		ClientName:         "Alice",
		CancellationReason: ptr.Ptr("sick"),
		CancelledAt:        &cancelledAt,
		Addons: []domain.BookingAddon{
			{AddonID: 9, Name: "wash", ExtraDurationMinutesSnapshot: 15, PriceAmountSnapshot: ptr.Ptr(5.0), CurrencySnapshot: "EUR"},
		},
	}

	resp := FromDomainBooking(b)

	require.NotNil(t, resp)
	assert.Equal(t, "2025-01-01T09:00:00Z", resp.StartAt)
	assert.Equal(t, "2025-01-01T10:15:00Z", resp.EndAt)
	assert.Equal(t, "cancelled", resp.Status)
	require.NotNil(t, resp.CancelledAt)
	assert.Equal(t, "2025-01-01T08:00:00Z", *resp.CancelledAt)
	require.Len(t, resp.Addons, 1)
	assert.Equal(t, 15, resp.Addons[0].ExtraDurationMinutes)
	assert.Nil(t, FromDomainBooking(nil))
}

func TestFromDomainBookingList_Empty(t *testing.T) {
	resp := FromDomainBookingList(nil)

	require.NotNil(t, resp.Bookings)
	assert.Empty(t, resp.Bookings)
}

func TestToDomainFilter(t *testing.T) {
	req := &GetProviderBookingsRequest{ProviderID: 5, Status: ptr.Ptr("no_show"), IncludeInactive: true}

	filter, err := req.ToDomainFilter()

	require.NoError(t, err)
	assert.Equal(t, int64(5), filter.ProviderID)
	require.NotNil(t, filter.Status)
	assert.Equal(t, domain.StatusNoShow, *filter.Status)

	req.Status = ptr.Ptr("archived")
	_, err = req.ToDomainFilter()
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
