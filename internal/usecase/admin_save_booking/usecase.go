package admin_save_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	bookingRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/booking"
	catalogRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/events"
	"github.com/m04kA/SMC-BookingEngine/internal/service/bookings/models"
)

const operationName = "admin_save"

// UseCase административное сохранение бронирования
// Прогоняет те же проверки, что и клиентские операции: инварианты модели,
// правило размера группы, источник слотов и пересечения (без самого бронирования).
// Смена статуса подчиняется таблице переходов, завершённое бронирование меняется только в имени клиента.
type UseCase struct {
	bookingRepo  BookingRepository
	catalogRepo  CatalogRepository
	conflicts    ConflictChecker
	slots        SlotValidator
	publisher    EventPublisher
	metrics      MetricsRecorder
	txManager    TransactionManager
	timeProvider TimeProvider
	opts         Options
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	catalogRepo CatalogRepository,
	conflicts ConflictChecker,
	slots SlotValidator,
	publisher EventPublisher,
	metrics MetricsRecorder,
	txManager TransactionManager,
	opts Options,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		catalogRepo:  catalogRepo,
		conflicts:    conflicts,
		slots:        slots,
		publisher:    publisher,
		metrics:      metrics,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		opts:         opts,
		logger:       logger,
	}
}

// Execute выполняет use case
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*models.BookingResponse, error) {
	saved, err := uc.execute(ctx, req)
	if uc.metrics != nil {
		uc.metrics.ObserveBookingOperation(operationName, domain.Outcome(err))
	}
	if err != nil {
		return nil, err
	}
	return models.FromDomainBooking(saved), nil
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*domain.Booking, error) {
	uc.logger.Info("AdminSaveBooking: id=%d, service=%d, provider=%d, start=%s",
		req.ID, req.ServiceID, req.ProviderID, req.StartAt.Format(domain.TimeFormat))

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("AdminSaveBooking: validation failed: %v", err)
		return nil, err
	}

	service, provider, err := uc.loadCatalog(ctx, req)
	if err != nil {
		return nil, err
	}

	var existing *domain.Booking
	var addons []domain.BookingAddon
	if req.ID != 0 {
		existing, err = uc.getExisting(ctx, req.ID)
		if err != nil {
			return nil, err
		}
	} else {
		addons, err = uc.loadAddons(ctx, req)
		if err != nil {
			return nil, err
		}
	}

	now := uc.timeProvider.Now()

	booking, err := uc.prepare(req, service, existing, addons, now)
	if err != nil {
		return nil, err
	}

	// Источник слотов спрашиваем только о новом времени занимающего бронирования
	slotsChecked := booking.IsOccupying() && timesChanged(existing, booking)
	if slotsChecked {
		if err := uc.slots.Validate(ctx, service, provider, booking.StartAt, booking.EndAt); err != nil {
			uc.logger.Warn("AdminSaveBooking: slot validation failed: %v", err)
			return nil, classifySlotError(err)
		}
	}

	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := uc.bookingRepo.LockProvider(txCtx, booking.ProviderID, uc.opts.LockTimeout); err != nil {
			return err
		}

		var exclude *int64
		if existing != nil {
			current, err := uc.bookingRepo.GetByIDForUpdate(txCtx, existing.ID)
			if err != nil {
				if errors.Is(err, bookingRepo.ErrBookingNotFound) {
					return ErrBookingNotFound
				}
				return fmt.Errorf("%w: failed to reload booking: %w", ErrInternal, err)
			}

			// Итоговое состояние собирается заново из заблокированной строки
			booking, err = uc.prepare(req, service, current, nil, now)
			if err != nil {
				return err
			}
			if !slotsChecked && booking.IsOccupying() && timesChanged(current, booking) {
				return fmt.Errorf("%w: booking id=%d was changed concurrently", domain.ErrTransientConflict, current.ID)
			}
			exclude = &current.ID
		}

		if booking.IsOccupying() && !service.SkipsConflictCheck() {
			conflict, err := uc.conflicts.HasConflict(txCtx, booking.ProviderID, booking.Interval(), exclude)
			if err != nil {
				return fmt.Errorf("%w: failed to check conflicts: %v", ErrInternal, err)
			}
			if conflict {
				return fmt.Errorf("%w: provider id=%d is busy at %s",
					domain.ErrSchedulingConflict, booking.ProviderID, booking.StartAt.Format(domain.TimeFormat))
			}
		}

		if existing == nil {
			if _, err := uc.bookingRepo.Create(txCtx, booking); err != nil {
				return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
			}
			return nil
		}

		if err := uc.bookingRepo.Update(txCtx, booking); err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: failed to update booking: %v", ErrInternal, err)
		}
		return nil
	})

	if err != nil {
		if bookingRepo.IsContention(err) {
			err = fmt.Errorf("%w: %v", domain.ErrTransientConflict, err)
		}
		uc.logger.Warn("AdminSaveBooking: id=%d: %v", req.ID, err)
		return nil, err
	}

	uc.logger.Info("AdminSaveBooking: saved booking id=%d, status=%s", booking.ID, booking.Status)

	event := events.NewBookingEvent(events.TypeSaved, booking, uc.timeProvider.Now())
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Warn("AdminSaveBooking: failed to publish event for booking id=%d: %v", booking.ID, err)
	}

	return booking, nil
}

func (uc *UseCase) loadCatalog(ctx context.Context, req *Request) (*domain.Service, *domain.Provider, error) {
	service, err := uc.catalogRepo.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			return nil, nil, ErrServiceNotFound
		}
		uc.logger.Error("AdminSaveBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	provider, err := uc.catalogRepo.GetProvider(ctx, req.ProviderID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrProviderNotFound) {
			return nil, nil, ErrProviderNotFound
		}
		uc.logger.Error("AdminSaveBooking: failed to get provider id=%d: %v", req.ProviderID, err)
		return nil, nil, fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}

	return service, provider, nil
}

func (uc *UseCase) getExisting(ctx context.Context, id int64) (*domain.Booking, error) {
	existing, err := uc.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("AdminSaveBooking: failed to get booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}
	return existing, nil
}

// prepare собирает итоговое состояние бронирования и проверяет инварианты модели
func (uc *UseCase) prepare(
	req *Request,
	service *domain.Service,
	current *domain.Booking,
	addons []domain.BookingAddon,
	now time.Time,
) (*domain.Booking, error) {
	booking, err := buildBooking(req, service, current, addons, now)
	if err != nil {
		uc.logger.Warn("AdminSaveBooking: id=%d: %v", req.ID, err)
		return nil, err
	}

	if err := domain.ValidateBooking(booking, service, uc.opts.Capacity); err != nil {
		uc.logger.Warn("AdminSaveBooking: booking validation failed: %v", err)
		return nil, err
	}

	return booking, nil
}

func (uc *UseCase) loadAddons(ctx context.Context, req *Request) ([]domain.BookingAddon, error) {
	found, err := uc.catalogRepo.GetAddonsByIDs(ctx, req.ServiceID, req.AddonIDs)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrAddonNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrAddonNotFound, err)
		}
		uc.logger.Error("AdminSaveBooking: failed to get addons for service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get addons: %v", ErrInternal, err)
	}

	var addons []domain.BookingAddon
	for i := range found {
		addons = append(addons, found[i].Snapshot())
	}
	return addons, nil
}

// buildBooking собирает итоговое состояние бронирования из запроса
// Конец всегда выводится из длительности: услуга и дополнения при создании,
// собственная длительность бронирования при обновлении
func buildBooking(
	req *Request,
	service *domain.Service,
	current *domain.Booking,
	addons []domain.BookingAddon,
	now time.Time,
) (*domain.Booking, error) {
	booking := &domain.Booking{
		ServiceID:           req.ServiceID,
		ProviderID:          req.ProviderID,
		StartAt:             req.StartAt,
		BufferBeforeMinutes: req.BufferBeforeMinutes,
		BufferAfterMinutes:  req.BufferAfterMinutes,
		PartySize:           req.PartySize,
		CapacityConsumed:    req.CapacityConsumed,
		ClientName:          req.ClientName,
	}

	if current == nil {
		booking.Addons = addons
		booking.Status = service.InitialStatus()
		if req.Status != nil {
			booking.Status = *req.Status
		}
		if booking.Status == domain.StatusCancelled {
			booking.CancelledAt = &now
		}
		booking.EndAt = domain.ComputeEnd(req.StartAt, service.DurationMinutes, addons)
	} else {
		if current.ServiceID != req.ServiceID || current.ProviderID != req.ProviderID || len(req.AddonIDs) > 0 {
			return nil, ErrImmutableField
		}
		booking.ID = current.ID
		booking.Addons = current.Addons
		booking.Status = current.Status
		booking.CancellationReason = current.CancellationReason
		booking.CancelledAt = current.CancelledAt
		booking.CreatedAt = current.CreatedAt
		booking.EndAt = req.StartAt.Add(current.Duration())

		if err := applyStatus(booking, current, req.Status, now); err != nil {
			return nil, err
		}
		if current.IsTerminal() && !sameSchedule(current, booking) {
			return nil, fmt.Errorf("%w: booking id=%d in status %s cannot be changed",
				domain.ErrInvalidState, current.ID, current.Status)
		}
	}

	if req.EndAt != nil && !req.EndAt.Equal(booking.EndAt) {
		return nil, fmt.Errorf("%w: endAt %s must equal start plus duration (%s)",
			ErrInvalidInput, req.EndAt.Format(domain.TimeFormat), booking.EndAt.Format(domain.TimeFormat))
	}

	return booking, nil
}

// applyStatus переводит бронирование в запрошенный статус по таблице переходов
func applyStatus(booking, current *domain.Booking, target *domain.BookingStatus, now time.Time) error {
	if target == nil || *target == current.Status {
		return nil
	}

	op, ok := domain.OperationTo(*target)
	if !ok {
		return fmt.Errorf("%w: booking id=%d cannot move from %s to %s",
			domain.ErrInvalidState, current.ID, current.Status, *target)
	}
	if err := domain.CheckTransition(current, op); err != nil {
		return err
	}

	booking.Status = *target
	if *target == domain.StatusCancelled {
		booking.CancelledAt = &now
	}
	return nil
}

// sameSchedule сообщает, что время, буферы и вместимость не меняются
func sameSchedule(current, booking *domain.Booking) bool {
	return current.StartAt.Equal(booking.StartAt) &&
		current.EndAt.Equal(booking.EndAt) &&
		current.BufferBeforeMinutes == booking.BufferBeforeMinutes &&
		current.BufferAfterMinutes == booking.BufferAfterMinutes &&
		current.PartySize == booking.PartySize &&
		current.CapacityConsumed == booking.CapacityConsumed
}

// timesChanged сообщает, нужно ли заново согласовывать время с источником слотов
func timesChanged(existing, booking *domain.Booking) bool {
	if existing == nil {
		return true
	}
	return !existing.StartAt.Equal(booking.StartAt) || !existing.EndAt.Equal(booking.EndAt)
}

func validateRequest(req *Request) error {
	if req.ID < 0 {
		return fmt.Errorf("%w: id must not be negative", ErrInvalidInput)
	}
	if req.ServiceID <= 0 || req.ProviderID <= 0 {
		return fmt.Errorf("%w: serviceID and providerID must be positive", ErrInvalidInput)
	}
	if req.StartAt.IsZero() {
		return fmt.Errorf("%w: startAt is required", ErrInvalidInput)
	}
	return nil
}

func classifySlotError(err error) error {
	if errors.Is(err, domain.ErrSlotUnavailable) || errors.Is(err, domain.ErrTransientConflict) {
		return err
	}
	return fmt.Errorf("%w: slot authority: %v", ErrInternal, err)
}
