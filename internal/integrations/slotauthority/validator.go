package slotauthority

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// Mode режим проверки слотов
type Mode string

const (
	// ModeNone проверка слотов отключена
	ModeNone Mode = "NONE"
	// ModeEngine время начала должно предлагаться источником слотов
	ModeEngine Mode = "ENGINE"
)

// ParseMode разбирает режим из конфигурации (без учёта регистра)
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToUpper(strings.TrimSpace(s))) {
	case ModeNone, "":
		return ModeNone, nil
	case ModeEngine:
		return ModeEngine, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Validator проверяет, что время начала предлагается источником слотов
// Режим и источник фиксируются при старте процесса
type Validator struct {
	mode      Mode
	authority Authority
	timeout   time.Duration
	logger    Logger
}

// NewValidator создает валидатор слотов
// В режиме ENGINE authority обязателен
func NewValidator(mode Mode, authority Authority, timeout time.Duration, logger Logger) (*Validator, error) {
	switch mode {
	case ModeNone:
	case ModeEngine:
		if authority == nil {
			return nil, ErrNotConfigured
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	return &Validator{
		mode:      mode,
		authority: authority,
		timeout:   timeout,
		logger:    logger,
	}, nil
}

// Mode возвращает текущий режим проверки
func (v *Validator) Mode() Mode {
	return v.mode
}

// Validate проверяет время начала бронирования
//
// Ошибки:
//   - domain.ErrSlotUnavailable - источник не предлагает startAt
//   - domain.ErrTransientConflict (+ ErrTimeout) - источник не ответил за timeout
//   - ErrUnavailable - прочие ошибки источника
func (v *Validator) Validate(ctx context.Context, service *domain.Service, provider *domain.Provider, startAt, endAt time.Time) error {
	if v.mode != ModeEngine {
		return nil
	}

	callCtx := ctx
	if v.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	starts, err := v.authority.AvailableStarts(callCtx, Query{
		Service:  service,
		Provider: provider,
		Start:    startAt,
		End:      endAt,
		TenantID: domain.TenantFor(service, provider),
	})
	if err != nil {
		if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
			v.logger.Warn("Validate: slot authority timeout for provider=%d: %v", provider.ID, err)
			return fmt.Errorf("%w: %w", domain.ErrTransientConflict, ErrTimeout)
		}
		v.logger.Error("Validate: slot authority failed for provider=%d: %v", provider.ID, err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if !containsInstant(starts, startAt) {
		v.logger.Warn("Validate: start %s is not offered for service=%d provider=%d",
			startAt.Format(domain.TimeFormat), service.ID, provider.ID)
		return fmt.Errorf("%w: start %s is not offered", domain.ErrSlotUnavailable, startAt.Format(domain.TimeFormat))
	}

	return nil
}

// containsInstant сравнивает моменты времени, а не представление (зоны могут отличаться)
func containsInstant(starts []time.Time, t time.Time) bool {
	for _, s := range starts {
		if s.Equal(t) {
			return true
		}
	}
	return false
}
