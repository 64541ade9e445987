package create_booking

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

const operationName = "create"

// UseCase use case для создания бронирования
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

// Execute выполняет use case создания бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*models.BookingResponse, error) {
	created, err := uc.execute(ctx, req)
	if uc.metrics != nil {
		uc.metrics.ObserveBookingOperation(operationName, domain.Outcome(err))
	}
	if err != nil {
		return nil, err
	}
	return models.FromDomainBooking(created), nil
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*domain.Booking, error) {
	uc.logger.Info("CreateBooking: service=%d, provider=%d, start=%s, addons=%v, partySize=%d",
		req.ServiceID, req.ProviderID, req.StartAt.Format(domain.TimeFormat), req.AddonIDs, req.PartySize)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Загружаем услугу, исполнителя и дополнения
	service, provider, addons, err := uc.loadCatalog(ctx, req)
	if err != nil {
		return nil, err
	}

	// 3. Собираем бронирование, end_at = start + длительность + дополнения
	booking := buildBooking(req, service, addons)

	// 4. Инварианты модели: интервал, буферы, размер группы и ёмкость
	if err := domain.ValidateBooking(booking, service, uc.opts.Capacity); err != nil {
		uc.logger.Warn("CreateBooking: booking validation failed: %v", err)
		return nil, err
	}

	// 5. Внешний источник слотов, вызывается до блокировки исполнителя
	if err := uc.slots.Validate(ctx, service, provider, booking.StartAt, booking.EndAt); err != nil {
		uc.logger.Warn("CreateBooking: slot validation failed: %v", err)
		return nil, classifySlotError(err)
	}

	// 6. Проверка пересечений и запись под блокировкой исполнителя
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := uc.bookingRepo.LockProvider(txCtx, booking.ProviderID, uc.opts.LockTimeout); err != nil {
			return err
		}

		if !service.SkipsConflictCheck() {
			conflict, err := uc.conflicts.HasConflict(txCtx, booking.ProviderID, booking.Interval(), nil)
			if err != nil {
				return fmt.Errorf("%w: failed to check conflicts: %v", ErrInternal, err)
			}
			if conflict {
				return fmt.Errorf("%w: provider id=%d is busy at %s",
					domain.ErrSchedulingConflict, booking.ProviderID, booking.StartAt.Format(domain.TimeFormat))
			}
		}

		if _, err := uc.bookingRepo.Create(txCtx, booking); err != nil {
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		err = classifyTxError(err)
		if domain.IsRetryable(err) || errors.Is(err, domain.ErrSchedulingConflict) {
			uc.logger.Warn("CreateBooking: provider=%d: %v", booking.ProviderID, err)
		} else {
			uc.logger.Error("CreateBooking: provider=%d: %v", booking.ProviderID, err)
		}
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d, status=%s", booking.ID, booking.Status)

	// 7. Событие публикуется после фиксации, ошибка публикации не отменяет бронирование
	event := events.NewBookingEvent(events.TypeCreated, booking, uc.timeProvider.Now())
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Warn("CreateBooking: failed to publish event for booking id=%d: %v", booking.ID, err)
	}

	return booking, nil
}

// loadCatalog получает услугу, исполнителя и дополнения
func (uc *UseCase) loadCatalog(ctx context.Context, req *Request) (*domain.Service, *domain.Provider, []domain.ServiceAddon, error) {
	service, err := uc.catalogRepo.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found", req.ServiceID)
			return nil, nil, nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, nil, nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	provider, err := uc.catalogRepo.GetProvider(ctx, req.ProviderID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrProviderNotFound) {
			uc.logger.Warn("CreateBooking: provider id=%d not found", req.ProviderID)
			return nil, nil, nil, ErrProviderNotFound
		}
		uc.logger.Error("CreateBooking: failed to get provider id=%d: %v", req.ProviderID, err)
		return nil, nil, nil, fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}

	addons, err := uc.catalogRepo.GetAddonsByIDs(ctx, req.ServiceID, req.AddonIDs)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrAddonNotFound) {
			uc.logger.Warn("CreateBooking: addons %v not found for service id=%d", req.AddonIDs, req.ServiceID)
			return nil, nil, nil, fmt.Errorf("%w: %v", ErrAddonNotFound, err)
		}
		uc.logger.Error("CreateBooking: failed to get addons for service id=%d: %v", req.ServiceID, err)
		return nil, nil, nil, fmt.Errorf("%w: failed to get addons: %v", ErrInternal, err)
	}

	return service, provider, addons, nil
}

// buildBooking собирает доменную модель со снимками дополнений
func buildBooking(req *Request, service *domain.Service, addons []domain.ServiceAddon) *domain.Booking {
	partySize := req.PartySize
	if partySize == 0 {
		partySize = domain.DefaultPartySize
	}
	capacity := partySize
	if req.CapacityConsumed != nil {
		capacity = *req.CapacityConsumed
	}

	snapshots := make([]domain.BookingAddon, 0, len(addons))
	for i := range addons {
		snapshots = append(snapshots, addons[i].Snapshot())
	}

	return &domain.Booking{
		ServiceID:           service.ID,
		ProviderID:          req.ProviderID,
		StartAt:             req.StartAt,
		EndAt:               domain.ComputeEnd(req.StartAt, service.DurationMinutes, snapshots),
		BufferBeforeMinutes: req.BufferBeforeMinutes,
		BufferAfterMinutes:  req.BufferAfterMinutes,
		PartySize:           partySize,
		CapacityConsumed:    capacity,
		Status:              service.InitialStatus(),
		ClientName:          req.ClientName,
		Addons:              snapshots,
	}
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.ProviderID <= 0 {
		return fmt.Errorf("%w: providerID must be positive", ErrInvalidInput)
	}

	if req.StartAt.IsZero() {
		return fmt.Errorf("%w: startAt is required", ErrInvalidInput)
	}

	if req.PartySize < 0 {
		return fmt.Errorf("%w: partySize must not be negative", ErrInvalidInput)
	}

	for _, id := range req.AddonIDs {
		if id <= 0 {
			return fmt.Errorf("%w: addon ids must be positive", ErrInvalidInput)
		}
	}

	return nil
}

// classifySlotError оставляет доменные ошибки как есть, остальное считается внутренней ошибкой
func classifySlotError(err error) error {
	if errors.Is(err, domain.ErrSlotUnavailable) || errors.Is(err, domain.ErrTransientConflict) {
		return err
	}
	return fmt.Errorf("%w: slot authority: %v", ErrInternal, err)
}

// classifyTxError переводит конкуренцию за блокировку в повторяемую ошибку
func classifyTxError(err error) error {
	if bookingRepo.IsContention(err) {
		return fmt.Errorf("%w: %v", domain.ErrTransientConflict, err)
	}
	return err
}
