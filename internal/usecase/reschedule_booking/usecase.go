package reschedule_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	bookingRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/booking"
	catalogRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/events"
	"github.com/m04kA/SMC-BookingEngine/internal/service/bookings/models"
)

// UseCase use case для переноса бронирования
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

// Execute выполняет use case переноса бронирования
// Статус не меняется, длительность берётся из самого бронирования (с учётом снимков дополнений)
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*models.BookingResponse, error) {
	updated, err := uc.execute(ctx, req)
	if uc.metrics != nil {
		uc.metrics.ObserveBookingOperation(string(domain.OperationReschedule), domain.Outcome(err))
	}
	if err != nil {
		return nil, err
	}
	return models.FromDomainBooking(updated), nil
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*domain.Booking, error) {
	uc.logger.Info("RescheduleBooking: booking=%d, newStart=%s", req.BookingID, req.NewStartAt.Format(domain.TimeFormat))

	// 1. Валидация входных данных
	if req.BookingID <= 0 {
		return nil, fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}
	if req.NewStartAt.IsZero() {
		return nil, fmt.Errorf("%w: newStartAt is required", ErrInvalidInput)
	}

	now := uc.timeProvider.Now()

	// 2. Получаем бронирование и проверяем статус
	booking, err := uc.getBooking(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	if err := domain.CheckTransition(booking, domain.OperationReschedule); err != nil {
		uc.logger.Warn("RescheduleBooking: %v", err)
		return nil, err
	}

	// 3. Политика переноса услуги: окно уведомления считается до нового начала
	service, provider, err := uc.loadCatalog(ctx, booking)
	if err != nil {
		return nil, err
	}

	if err := domain.CheckRescheduleNotice(service, req.NewStartAt, now); err != nil {
		uc.logger.Warn("RescheduleBooking: booking id=%d: %v", booking.ID, err)
		return nil, err
	}

	newStart := req.NewStartAt
	newEnd := newStart.Add(booking.Duration())

	// 4. Внешний источник слотов, вызывается до блокировки исполнителя
	if err := uc.slots.Validate(ctx, service, provider, newStart, newEnd); err != nil {
		uc.logger.Warn("RescheduleBooking: slot validation failed: %v", err)
		return nil, classifySlotError(err)
	}

	// 5. Под блокировкой перечитываем бронирование и проверяем пересечения без него самого
	var result *domain.Booking
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := uc.bookingRepo.LockProvider(txCtx, booking.ProviderID, uc.opts.LockTimeout); err != nil {
			return err
		}

		current, err := uc.bookingRepo.GetByIDForUpdate(txCtx, booking.ID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: failed to reload booking: %w", ErrInternal, err)
		}

		// Статус мог измениться, пока мы ждали блокировку
		if err := domain.CheckTransition(current, domain.OperationReschedule); err != nil {
			return err
		}

		candidate := domain.NewInterval(newStart, newEnd, current.BufferBeforeMinutes, current.BufferAfterMinutes)

		if !service.SkipsConflictCheck() {
			conflict, err := uc.conflicts.HasConflict(txCtx, current.ProviderID, candidate, &current.ID)
			if err != nil {
				return fmt.Errorf("%w: failed to check conflicts: %v", ErrInternal, err)
			}
			if conflict {
				return fmt.Errorf("%w: provider id=%d is busy at %s",
					domain.ErrSchedulingConflict, current.ProviderID, newStart.Format(domain.TimeFormat))
			}
		}

		if err := uc.bookingRepo.UpdateSchedule(txCtx, current.ID, newStart, newEnd); err != nil {
			return fmt.Errorf("%w: failed to update booking: %v", ErrInternal, err)
		}

		current.StartAt = newStart
		current.EndAt = newEnd
		result = current
		return nil
	})

	if err != nil {
		err = classifyTxError(err)
		if errors.Is(err, ErrInternal) {
			uc.logger.Error("RescheduleBooking: booking id=%d: %v", req.BookingID, err)
		} else {
			uc.logger.Warn("RescheduleBooking: booking id=%d: %v", req.BookingID, err)
		}
		return nil, err
	}

	uc.logger.Info("RescheduleBooking: successfully moved booking id=%d to %s", result.ID, newStart.Format(domain.TimeFormat))

	// 6. Событие публикуется после фиксации
	event := events.NewBookingEvent(events.TypeRescheduled, result, now)
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Warn("RescheduleBooking: failed to publish event for booking id=%d: %v", result.ID, err)
	}

	return result, nil
}

func (uc *UseCase) getBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	booking, err := uc.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("RescheduleBooking: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("RescheduleBooking: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}
	return booking, nil
}

func (uc *UseCase) loadCatalog(ctx context.Context, booking *domain.Booking) (*domain.Service, *domain.Provider, error) {
	service, err := uc.catalogRepo.GetService(ctx, booking.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			return nil, nil, ErrServiceNotFound
		}
		uc.logger.Error("RescheduleBooking: failed to get service id=%d: %v", booking.ServiceID, err)
		return nil, nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	provider, err := uc.catalogRepo.GetProvider(ctx, booking.ProviderID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrProviderNotFound) {
			return nil, nil, ErrProviderNotFound
		}
		uc.logger.Error("RescheduleBooking: failed to get provider id=%d: %v", booking.ProviderID, err)
		return nil, nil, fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}

	return service, provider, nil
}

func classifySlotError(err error) error {
	if errors.Is(err, domain.ErrSlotUnavailable) || errors.Is(err, domain.ErrTransientConflict) {
		return err
	}
	return fmt.Errorf("%w: slot authority: %v", ErrInternal, err)
}

func classifyTxError(err error) error {
	if bookingRepo.IsContention(err) {
		return fmt.Errorf("%w: %v", domain.ErrTransientConflict, err)
	}
	return err
}
