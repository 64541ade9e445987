package create_booking

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// Request модель запроса на создание бронирования
type Request struct {
	ServiceID  int64     // ID услуги
	ProviderID int64     // ID исполнителя
	StartAt    time.Time // Начало бронирования
	ClientName string    // Имя клиента
	AddonIDs   []int64   // Выбранные дополнения (опционально)

	PartySize        int  // Размер группы, 0 - значение по умолчанию (1)
	CapacityConsumed *int // Занимаемая ёмкость, nil - равна PartySize

	BufferBeforeMinutes int // Буфер до начала
	BufferAfterMinutes  int // Буфер после окончания
}

// Options настройки usecase
type Options struct {
	LockTimeout time.Duration         // Максимальное ожидание блокировки исполнителя
	Capacity    domain.CapacityPolicy // Дополнительные ограничения ёмкости
}
