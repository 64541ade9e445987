package booking

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrLockTimeout возвращается, когда не удалось дождаться блокировки исполнителя
	// (lock_timeout, serialization failure или deadlock) - операцию можно повторить
	ErrLockTimeout = errors.New("booking.repository: provider lock timeout")

	// ErrTransaction возвращается при ошибках работы с транзакцией
	ErrTransaction = errors.New("booking.repository: transaction error")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)

// Коды ошибок PostgreSQL, означающие конкуренцию за блокировку
const (
	pqCodeLockNotAvailable     = "55P03"
	pqCodeSerializationFailure = "40001"
	pqCodeDeadlockDetected     = "40P01"
)

// isContention проверяет, что ошибка PostgreSQL вызвана конкуренцией за блокировку
func isContention(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case pqCodeLockNotAvailable, pqCodeSerializationFailure, pqCodeDeadlockDetected:
		return true
	}
	return false
}

// IsContention проверяет ошибку любого уровня (в том числе ошибку commit)
func IsContention(err error) bool {
	return errors.Is(err, ErrLockTimeout) || isContention(err)
}
