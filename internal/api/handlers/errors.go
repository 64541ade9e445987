package handlers

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

const (
	msgSchedulingConflict = "исполнитель занят в выбранное время"
	msgSlotUnavailable    = "выбранное время недоступно для записи"
	msgNoticeViolation    = "операция недоступна: слишком близко к началу бронирования"
	msgInvalidState       = "операция недоступна в текущем статусе бронирования"
	msgInvalidBooking     = "некорректные параметры бронирования"
	msgInvalidArgument    = "некорректные параметры запроса"
	msgTransientConflict  = "исполнитель занят другой операцией, повторите запрос позже"

	// RetryAfterSeconds подсказка клиенту при конкуренции за блокировку исполнителя
	RetryAfterSeconds = 1
)

// RespondDomainError отображает ошибку движка бронирований в HTTP ответ
// Возвращает false, если ошибка не относится к известным категориям
func RespondDomainError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, domain.ErrTransientConflict):
		RespondRetryLater(w, RetryAfterSeconds, msgTransientConflict)
	case errors.Is(err, domain.ErrSchedulingConflict):
		RespondConflict(w, msgSchedulingConflict)
	case errors.Is(err, domain.ErrSlotUnavailable):
		RespondConflict(w, msgSlotUnavailable)
	case errors.Is(err, domain.ErrInvalidState):
		RespondConflict(w, msgInvalidState)
	case errors.Is(err, domain.ErrNoticeViolation):
		RespondUnprocessable(w, msgNoticeViolation)
	case errors.Is(err, domain.ErrInvalidBooking):
		RespondBadRequest(w, msgInvalidBooking)
	case errors.Is(err, domain.ErrInvalidArgument):
		RespondBadRequest(w, msgInvalidArgument)
	default:
		return false
	}
	return true
}
