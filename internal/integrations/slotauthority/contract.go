package slotauthority

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// Query запрос к источнику слотов
type Query struct {
	Service  *domain.Service
	Provider *domain.Provider
	Start    time.Time
	End      time.Time
	TenantID *int64
}

// Authority источник предлагаемых времён начала
// Возвращает моменты начала в пределах [Start, End), которые сейчас предлагаются клиентам
type Authority interface {
	AvailableStarts(ctx context.Context, q Query) ([]time.Time, error)
}

// AuthorityFunc позволяет использовать обычную функцию как Authority
type AuthorityFunc func(ctx context.Context, q Query) ([]time.Time, error)

// AvailableStarts вызывает f(ctx, q)
func (f AuthorityFunc) AvailableStarts(ctx context.Context, q Query) ([]time.Time, error) {
	return f(ctx, q)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
