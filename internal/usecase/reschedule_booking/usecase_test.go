package reschedule_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	bookingRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/booking"
	catalogRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/events"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/slotauthority"
	"github.com/m04kA/SMC-BookingEngine/internal/service/availability"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type memoryBookings struct {
	bookings map[int64]*domain.Booking
	// onLock позволяет изменить состояние, пока операция ждёт блокировку
	onLock func()
}

func (m *memoryBookings) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	clone := *b
	return &clone, nil
}

func (m *memoryBookings) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	return m.GetByID(ctx, id)
}

func (m *memoryBookings) UpdateSchedule(_ context.Context, id int64, startAt, endAt time.Time) error {
	b, ok := m.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	b.StartAt = startAt
	b.EndAt = endAt
	return nil
}

func (m *memoryBookings) LockProvider(context.Context, int64, time.Duration) error {
	if m.onLock != nil {
		m.onLock()
	}
	return nil
}

func (m *memoryBookings) GetByProviderWithFilter(_ context.Context, filter domain.ProviderBookingsFilter) ([]*domain.Booking, error) {
	var out []*domain.Booking
	for _, b := range m.bookings {
		if b.ProviderID == filter.ProviderID {
			out = append(out, b)
		}
	}
	return out, nil
}

type memoryCatalog struct {
	services map[int64]*domain.Service
}

func (c *memoryCatalog) GetService(_ context.Context, id int64) (*domain.Service, error) {
	if s, ok := c.services[id]; ok {
		return s, nil
	}
	return nil, catalogRepo.ErrServiceNotFound
}

func (c *memoryCatalog) GetProvider(_ context.Context, id int64) (*domain.Provider, error) {
	return &domain.Provider{ID: id}, nil
}

type passthroughTx struct{}

func (passthroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type recordingPublisher struct{ events []events.BookingEvent }

func (p *recordingPublisher) Publish(_ context.Context, e events.BookingEvent) error {
	p.events = append(p.events, e)
	return nil
}

var base = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func newUseCase(t *testing.T, bookings *memoryBookings, services map[int64]*domain.Service, now time.Time) (*UseCase, *recordingPublisher) {
	t.Helper()
	validator, err := slotauthority.NewValidator(slotauthority.ModeNone, nil, time.Second, nopLogger{})
	require.NoError(t, err)

	publisher := &recordingPublisher{}
	uc := NewUseCase(
		bookings,
		&memoryCatalog{services: services},
		availability.NewService(bookings, nopLogger{}),
		validator,
		publisher,
		nil,
		passthroughTx{},
		Options{LockTimeout: time.Second},
		nopLogger{},
	)
	uc.timeProvider = fixedClock{now: now}
	return uc, publisher
}

func defaultServices() map[int64]*domain.Service {
	return map[int64]*domain.Service{
		1: {ID: 1, DurationMinutes: 60, RescheduleAllowed: true, CancellationAllowed: true},
		2: {ID: 2, DurationMinutes: 60, RescheduleAllowed: false},
		3: {ID: 3, DurationMinutes: 30, RescheduleAllowed: true, RescheduleNoticeMinutes: 90},
	}
}

func newBooking(id, serviceID int64, start, end time.Time, status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		ID: id, ServiceID: serviceID, ProviderID: 10,
		StartAt: start, EndAt: end,
		PartySize: 1, CapacityConsumed: 1,
		Status: status, ClientName: "client",
	}
}

func TestExecute_FreeSlotKeepsDurationAndStatus(t *testing.T) {
	// 75 минут: услуга 60 + дополнение 15
	b := newBooking(1, 1, base, base.Add(75*time.Minute), domain.StatusPending)
	b.Addons = []domain.BookingAddon{{AddonID: 5, ExtraDurationMinutesSnapshot: 15}}
	repo := &memoryBookings{bookings: map[int64]*domain.Booking{1: b}}
	uc, publisher := newUseCase(t, repo, defaultServices(), base.Add(-24*time.Hour))

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 1, NewStartAt: base.Add(3 * time.Hour)})

	require.NoError(t, err)
	assert.Equal(t, "2025-01-01T12:00:00Z", resp.StartAt)
	assert.Equal(t, "2025-01-01T13:15:00Z", resp.EndAt)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, base.Add(3*time.Hour), repo.bookings[1].StartAt)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, events.TypeRescheduled, publisher.events[0].Type)
}

func TestExecute_ConflictLeavesBothUnchanged(t *testing.T) {
	first := newBooking(1, 1, base, base.Add(time.Hour), domain.StatusConfirmed)
	second := newBooking(2, 1, base.Add(2*time.Hour), base.Add(3*time.Hour), domain.StatusConfirmed)
	repo := &memoryBookings{bookings: map[int64]*domain.Booking{1: first, 2: second}}
	uc, _ := newUseCase(t, repo, defaultServices(), base.Add(-24*time.Hour))

	_, err := uc.Execute(context.Background(), &Request{BookingID: 2, NewStartAt: base.Add(15 * time.Minute)})

	assert.ErrorIs(t, err, domain.ErrSchedulingConflict)
	assert.Equal(t, base, repo.bookings[1].StartAt)
	assert.Equal(t, base.Add(2*time.Hour), repo.bookings[2].StartAt)
}

func TestExecute_OverlapWithItselfAllowed(t *testing.T) {
	b := newBooking(1, 1, base, base.Add(time.Hour), domain.StatusConfirmed)
	repo := &memoryBookings{bookings: map[int64]*domain.Booking{1: b}}
	uc, _ := newUseCase(t, repo, defaultServices(), base.Add(-24*time.Hour))

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 1, NewStartAt: base.Add(15 * time.Minute)})

	require.NoError(t, err)
	assert.Equal(t, "2025-01-01T10:15:00Z", resp.EndAt)
}

func TestExecute_RescheduleNoticeWindow(t *testing.T) {
	now := base
	b := newBooking(1, 3, base.Add(24*time.Hour), base.Add(24*time.Hour+30*time.Minute), domain.StatusConfirmed)
	repo := &memoryBookings{bookings: map[int64]*domain.Booking{1: b}}
	uc, _ := newUseCase(t, repo, defaultServices(), now)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 1, NewStartAt: now.Add(60 * time.Minute)})
	assert.ErrorIs(t, err, domain.ErrNoticeViolation)

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 1, NewStartAt: now.Add(120 * time.Minute)})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01T11:00:00Z", resp.StartAt)

	// Граница включительно: now == newStart - notice
	_, err = uc.Execute(context.Background(), &Request{BookingID: 1, NewStartAt: now.Add(90 * time.Minute)})
	assert.NoError(t, err)
}

func TestExecute_RescheduleNotAllowed(t *testing.T) {
	b := newBooking(1, 2, base, base.Add(time.Hour), domain.StatusConfirmed)
	repo := &memoryBookings{bookings: map[int64]*domain.Booking{1: b}}
	uc, _ := newUseCase(t, repo, defaultServices(), base.Add(-24*time.Hour))

	_, err := uc.Execute(context.Background(), &Request{BookingID: 1, NewStartAt: base.Add(3 * time.Hour)})

	assert.ErrorIs(t, err, domain.ErrNoticeViolation)
}

func TestExecute_TerminalStatus(t *testing.T) {
	for _, status := range domain.TerminalStatuses {
		b := newBooking(1, 1, base, base.Add(time.Hour), status)
		repo := &memoryBookings{bookings: map[int64]*domain.Booking{1: b}}
		uc, _ := newUseCase(t, repo, defaultServices(), base.Add(-24*time.Hour))

		_, err := uc.Execute(context.Background(), &Request{BookingID: 1, NewStartAt: base.Add(3 * time.Hour)})

		assert.ErrorIs(t, err, domain.ErrInvalidState, string(status))
	}
}

func TestExecute_StatusChangedWhileWaitingForLock(t *testing.T) {
	b := newBooking(1, 1, base, base.Add(time.Hour), domain.StatusConfirmed)
	repo := &memoryBookings{bookings: map[int64]*domain.Booking{1: b}}
	repo.onLock = func() { repo.bookings[1].Status = domain.StatusCancelled }
	uc, _ := newUseCase(t, repo, defaultServices(), base.Add(-24*time.Hour))

	_, err := uc.Execute(context.Background(), &Request{BookingID: 1, NewStartAt: base.Add(3 * time.Hour)})

	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, base, repo.bookings[1].StartAt)
}

func TestExecute_NotFound(t *testing.T) {
	repo := &memoryBookings{bookings: map[int64]*domain.Booking{}}
	uc, _ := newUseCase(t, repo, defaultServices(), base)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 7, NewStartAt: base})

	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExecute_InvalidInput(t *testing.T) {
	repo := &memoryBookings{bookings: map[int64]*domain.Booking{}}
	uc, _ := newUseCase(t, repo, defaultServices(), base)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 1})

	assert.ErrorIs(t, err, domain.ErrInvalidBooking)
}
