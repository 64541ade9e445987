package reschedule_booking

import "time"

// Request модель запроса на перенос бронирования
type Request struct {
	BookingID  int64     // ID бронирования
	NewStartAt time.Time // Новое время начала, длительность сохраняется
}

// Options настройки usecase
type Options struct {
	LockTimeout time.Duration // Максимальное ожидание блокировки исполнителя
}
