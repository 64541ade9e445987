package admin_save_booking

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// Request бронирование в том виде, в каком его сохраняет администратор
// ID == 0 - создание, иначе обновление существующего
type Request struct {
	ID         int64
	ServiceID  int64
	ProviderID int64
	StartAt    time.Time
	EndAt      *time.Time // nil - вычисляется из длительности
	AddonIDs   []int64    // только при создании

	BufferBeforeMinutes int
	BufferAfterMinutes  int
	PartySize           int
	CapacityConsumed    int
	Status              *domain.BookingStatus // nil - начальный статус услуги (создание) или текущий (обновление)
	ClientName          string
}

// Options настройки usecase
type Options struct {
	LockTimeout time.Duration
	Capacity    domain.CapacityPolicy
}
