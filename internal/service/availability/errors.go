package availability

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

var (
	// ErrInvalidWindow возвращается, когда конец окна не позже его начала
	ErrInvalidWindow = fmt.Errorf("%w: availability: window end must be after start", domain.ErrInvalidArgument)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("availability: internal error")
)
