package reschedule_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/events"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateSchedule(ctx context.Context, id int64, startAt, endAt time.Time) error
	LockProvider(ctx context.Context, providerID int64, timeout time.Duration) error
}

// CatalogRepository интерфейс репозитория каталога
type CatalogRepository interface {
	GetService(ctx context.Context, id int64) (*domain.Service, error)
	GetProvider(ctx context.Context, id int64) (*domain.Provider, error)
}

// ConflictChecker проверка пересечений с занятыми интервалами исполнителя
type ConflictChecker interface {
	HasConflict(ctx context.Context, providerID int64, candidate domain.Interval, excludeBookingID *int64) (bool, error)
}

// SlotValidator проверка времени начала во внешнем источнике слотов
type SlotValidator interface {
	Validate(ctx context.Context, service *domain.Service, provider *domain.Provider, startAt, endAt time.Time) error
}

// EventPublisher публикация событий жизненного цикла
type EventPublisher interface {
	Publish(ctx context.Context, event events.BookingEvent) error
}

// MetricsRecorder учёт исходов операций
type MetricsRecorder interface {
	ObserveBookingOperation(operation, outcome string)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
