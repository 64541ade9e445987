package slotauthority

import "errors"

var (
	// ErrUnknownMode возвращается при неизвестном режиме проверки слотов
	ErrUnknownMode = errors.New("slotauthority: unknown validation mode")

	// ErrNotConfigured возвращается, когда режим ENGINE включён без источника слотов
	ErrNotConfigured = errors.New("slotauthority: authority is not configured")

	// ErrTimeout возвращается, когда источник слотов не ответил вовремя
	ErrTimeout = errors.New("slotauthority: authority timeout")

	// ErrUnavailable возвращается при любой другой ошибке источника слотов
	ErrUnavailable = errors.New("slotauthority: authority unavailable")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("slotauthority client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса слотов
	ErrInvalidResponse = errors.New("slotauthority client: invalid response")
)
