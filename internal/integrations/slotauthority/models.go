package slotauthority

import "time"

// SlotsResponse ответ сервиса слотов
type SlotsResponse struct {
	Slots []time.Time `json:"slots"`
}

// ErrorResponse модель ошибки от сервиса слотов
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
