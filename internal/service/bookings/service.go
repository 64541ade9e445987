package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	bookingRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/booking"
	catalogRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/events"
	"github.com/m04kA/SMC-BookingEngine/internal/service/bookings/models"
	"github.com/m04kA/SMC-BookingEngine/pkg/ptr"
)

// Service сервис для работы с бронированиями: чтение и переходы статусов
type Service struct {
	bookingRepo  BookingRepository
	catalogRepo  CatalogRepository
	publisher    EventPublisher
	metrics      MetricsRecorder
	txManager    TransactionManager
	timeProvider TimeProvider
	opts         Options
	logger       Logger
}

// Options настройки сервиса
type Options struct {
	LockTimeout time.Duration // Максимальное ожидание блокировки строки бронирования
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	catalogRepo CatalogRepository,
	publisher EventPublisher,
	metrics MetricsRecorder,
	txManager TransactionManager,
	opts Options,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		catalogRepo:  catalogRepo,
		publisher:    publisher,
		metrics:      metrics,
		txManager:    txManager,
		timeProvider: realTimeProvider{},
		opts:         opts,
		logger:       logger,
	}
}

// GetByID получает бронирование по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d", id)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBooking(booking), nil
}

// GetProviderBookings получает бронирования исполнителя с гибкой фильтрацией
// Поддерживает фильтрацию по периоду, статусу и включению неактивных бронирований
//
// Примеры использования:
// - Все активные бронирования: GetProviderBookings(ctx, &GetProviderBookingsRequest{ProviderID: 5})
// - Бронирования за период: указать From и To
// - Только ожидающие подтверждения: Status = "pending"
// - Включая отменённые и завершённые: IncludeInactive = true
func (s *Service) GetProviderBookings(ctx context.Context, req *models.GetProviderBookingsRequest) (*models.BookingListResponse, error) {
	// Логируем запрос с деталями фильтрации
	logMsg := fmt.Sprintf("GetProviderBookings: fetching bookings for provider=%d", req.ProviderID)
	if req.From != nil && req.To != nil {
		logMsg += fmt.Sprintf(", period=%s to %s", req.From.Format(domain.TimeFormat), req.To.Format(domain.TimeFormat))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	if req.IncludeInactive {
		logMsg += ", includeInactive=true"
	}
	s.logger.Info("%s", logMsg)

	if req.ProviderID <= 0 {
		return nil, fmt.Errorf("%w: providerID must be positive", ErrInvalidInput)
	}
	if req.From != nil && req.To != nil && !req.To.After(*req.From) {
		return nil, fmt.Errorf("%w: period end must be after start", ErrInvalidInput)
	}

	// Конвертируем request в domain фильтр
	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetProviderBookings: invalid filter for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: invalid filter: %v", ErrInvalidInput, err)
	}

	bookings, err := s.bookingRepo.GetByProviderWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetProviderBookings: repository error for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: GetProviderBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetProviderBookings: successfully fetched %d bookings for provider=%d", len(bookings), req.ProviderID)
	return models.FromDomainBookingList(bookings), nil
}

// Cancel отменяет бронирование
// Проверяет политику услуги: отмена разрешена и now <= start - cancellation_notice
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%d", bookingID)

	var reason *string
	if req != nil {
		trimmed := strings.TrimSpace(ptr.Value(req.CancellationReason))
		if len(trimmed) > domain.MaxCancellationReasonLength {
			return nil, fmt.Errorf("%w: cancellation reason exceeds %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
		}
		if trimmed != "" {
			reason = &trimmed
		}
	}

	now := s.timeProvider.Now()

	return s.transition(ctx, bookingID, domain.OperationCancel, func(txCtx context.Context, b *domain.Booking) error {
		service, err := s.catalogRepo.GetService(txCtx, b.ServiceID)
		if err != nil {
			if errors.Is(err, catalogRepo.ErrServiceNotFound) {
				return ErrServiceNotFound
			}
			return fmt.Errorf("%w: Cancel - failed to get service: %v", ErrInternal, err)
		}

		if err := domain.CheckCancellationNotice(service, b, now); err != nil {
			return err
		}

		if err := s.bookingRepo.Cancel(txCtx, b.ID, reason, now); err != nil {
			return err
		}

		b.Status = domain.StatusCancelled
		b.CancellationReason = reason
		b.CancelledAt = &now
		return nil
	})
}

// Complete отмечает бронирование как выполненное
func (s *Service) Complete(ctx context.Context, bookingID int64) (*models.BookingResponse, error) {
	s.logger.Info("Complete: completing booking id=%d", bookingID)
	return s.changeStatus(ctx, bookingID, domain.OperationComplete)
}

// MarkNoShow отмечает неявку клиента
func (s *Service) MarkNoShow(ctx context.Context, bookingID int64) (*models.BookingResponse, error) {
	s.logger.Info("MarkNoShow: marking booking id=%d as no-show", bookingID)
	return s.changeStatus(ctx, bookingID, domain.OperationNoShow)
}

// Approve подтверждает ожидающее бронирование (pending -> confirmed)
func (s *Service) Approve(ctx context.Context, bookingID int64) (*models.BookingResponse, error) {
	s.logger.Info("Approve: approving booking id=%d", bookingID)
	return s.changeStatus(ctx, bookingID, domain.OperationApprove)
}

// Вспомогательные методы

// changeStatus переводит бронирование в целевой статус операции
func (s *Service) changeStatus(ctx context.Context, bookingID int64, op domain.Operation) (*models.BookingResponse, error) {
	target, ok := domain.TargetStatus(op)
	if !ok {
		return nil, fmt.Errorf("%w: operation %s has no target status", ErrInternal, op)
	}

	return s.transition(ctx, bookingID, op, func(txCtx context.Context, b *domain.Booking) error {
		if err := s.bookingRepo.UpdateStatus(txCtx, b.ID, target); err != nil {
			return err
		}
		b.Status = target
		return nil
	})
}

// transition выполняет переход статуса в транзакции
// Бронирование перечитывается с блокировкой строки (ожидание ограничено LockTimeout),
// переход проверяется по таблице domain
func (s *Service) transition(
	ctx context.Context,
	bookingID int64,
	op domain.Operation,
	apply func(txCtx context.Context, b *domain.Booking) error,
) (*models.BookingResponse, error) {
	var result *domain.Booking

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.bookingRepo.SetLockTimeout(txCtx, s.opts.LockTimeout); err != nil {
			return err
		}

		booking, err := s.bookingRepo.GetByIDForUpdate(txCtx, bookingID)
		if err != nil {
			return err
		}

		if err := domain.CheckTransition(booking, op); err != nil {
			return err
		}

		if err := apply(txCtx, booking); err != nil {
			return err
		}

		result = booking
		return nil
	})

	err = s.mapError(op, bookingID, err)
	if s.metrics != nil {
		s.metrics.ObserveBookingOperation(string(op), domain.Outcome(err))
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("%s: booking id=%d is now %s", op, result.ID, result.Status)

	event := events.NewBookingEvent(events.TypeForOperation(op), result, s.timeProvider.Now())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("%s: failed to publish event for booking id=%d: %v", op, result.ID, err)
	}

	return models.FromDomainBooking(result), nil
}

// mapError приводит ошибки репозитория к ошибкам сервиса и логирует их
func (s *Service) mapError(op domain.Operation, bookingID int64, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bookingRepo.ErrBookingNotFound):
		s.logger.Warn("%s: booking id=%d not found", op, bookingID)
		return ErrBookingNotFound
	case bookingRepo.IsContention(err):
		s.logger.Warn("%s: booking id=%d is locked: %v", op, bookingID, err)
		return fmt.Errorf("%w: %v", domain.ErrTransientConflict, err)
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrNoticeViolation), errors.Is(err, ErrServiceNotFound):
		s.logger.Warn("%s: booking id=%d: %v", op, bookingID, err)
		return err
	case errors.Is(err, ErrInternal):
		s.logger.Error("%s: booking id=%d: %v", op, bookingID, err)
		return err
	}
	s.logger.Error("%s: repository error for booking id=%d: %v", op, bookingID, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}

// SetTimeProvider подменяет источник времени
func (s *Service) SetTimeProvider(tp TimeProvider) {
	if tp != nil {
		s.timeProvider = tp
	}
}
