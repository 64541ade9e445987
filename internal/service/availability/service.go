package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// Service сервис занятости исполнителей
// Отвечает на два вопроса: какие интервалы заняты в окне и пересекается ли кандидат с занятыми
type Service struct {
	bookingRepo BookingRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса занятости
func NewService(bookingRepo BookingRepository, logger Logger) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// GetBusyIntervals возвращает занятые интервалы (с буферами) исполнителя, пересекающие окно
// Учитываются только бронирования в статусах pending и confirmed.
// Результат отсортирован по началу интервала; одинаковые интервалы не схлопываются.
func (s *Service) GetBusyIntervals(ctx context.Context, providerID int64, windowStart, windowEnd time.Time) ([]domain.TimeRange, error) {
	window := domain.TimeRange{Start: windowStart, End: windowEnd}
	if !window.IsValid() {
		s.logger.Warn("GetBusyIntervals: invalid window for provider=%d: %s - %s",
			providerID, windowStart.Format(domain.TimeFormat), windowEnd.Format(domain.TimeFormat))
		return nil, ErrInvalidWindow
	}

	bookings, err := s.occupying(ctx, providerID, window, nil)
	if err != nil {
		s.logger.Error("GetBusyIntervals: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: GetBusyIntervals - repository error: %v", ErrInternal, err)
	}

	busy := make([]domain.TimeRange, 0, len(bookings))
	for _, b := range bookings {
		busy = append(busy, b.Interval().Occupied())
	}

	sort.SliceStable(busy, func(i, j int) bool {
		return busy[i].Start.Before(busy[j].Start)
	})

	return busy, nil
}

// HasConflict проверяет, пересекается ли кандидат с занятыми интервалами исполнителя
// excludeBookingID исключает переносимое бронирование из проверки
func (s *Service) HasConflict(ctx context.Context, providerID int64, candidate domain.Interval, excludeBookingID *int64) (bool, error) {
	bookings, err := s.occupying(ctx, providerID, candidate.Occupied(), excludeBookingID)
	if err != nil {
		s.logger.Error("HasConflict: repository error for provider=%d: %v", providerID, err)
		return false, fmt.Errorf("%w: HasConflict - repository error: %v", ErrInternal, err)
	}

	for _, b := range bookings {
		if b.Interval().Overlaps(candidate) {
			s.logger.Info("HasConflict: provider=%d candidate %s overlaps booking id=%d",
				providerID, candidate.Start.Format(domain.TimeFormat), b.ID)
			return true, nil
		}
	}

	return false, nil
}

// occupying получает занимающие время бронирования, пересекающие окно
// SQL-фильтр предварительный, итоговое решение принимает доменное правило пересечения
func (s *Service) occupying(ctx context.Context, providerID int64, window domain.TimeRange, excludeBookingID *int64) ([]*domain.Booking, error) {
	filter := domain.ProviderBookingsFilter{
		ProviderID:       providerID,
		From:             &window.Start,
		To:               &window.End,
		ExcludeBookingID: excludeBookingID,
	}

	bookings, err := s.bookingRepo.GetByProviderWithFilter(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if !b.IsOccupying() {
			continue
		}
		if excludeBookingID != nil && b.ID == *excludeBookingID {
			continue
		}
		if !b.Interval().Occupied().Overlaps(window) {
			continue
		}
		result = append(result, b)
	}

	return result, nil
}
