package slotauthority

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// HTTPAuthority клиент внешнего сервиса слотов
// GET {baseURL}/slots?serviceId=&providerId=&start=&end=[&tenantId=] -> {"slots": [...]}
type HTTPAuthority struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        Logger
}

// NewHTTPAuthority создает новый экземпляр клиента сервиса слотов
// rps <= 0 отключает ограничение частоты запросов
func NewHTTPAuthority(baseURL string, timeout time.Duration, rps float64, burst int, log Logger) *HTTPAuthority {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if rps > 0 {
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}

	return &HTTPAuthority{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: limiter,
		log:     log,
	}
}

// AvailableStarts получает предлагаемые времена начала
func (c *HTTPAuthority) AvailableStarts(ctx context.Context, q Query) ([]time.Time, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", ErrTimeout, err)
	}

	params := url.Values{}
	params.Set("serviceId", strconv.FormatInt(q.Service.ID, 10))
	params.Set("providerId", strconv.FormatInt(q.Provider.ID, 10))
	params.Set("start", q.Start.UTC().Format(domain.TimeFormat))
	params.Set("end", q.End.UTC().Format(domain.TimeFormat))
	if q.TenantID != nil {
		params.Set("tenantId", strconv.FormatInt(*q.TenantID, 10))
	}

	reqURL := fmt.Sprintf("%s/slots?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusNotFound:
		// Для неизвестной пары услуга/исполнитель слотов нет
		c.log.Info("AvailableStarts: no slots for service=%d provider=%d", q.Service.ID, q.Provider.ID)
		return []time.Time{}, nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	// Парсим ответ
	var slots SlotsResponse
	if err := json.NewDecoder(resp.Body).Decode(&slots); err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return slots.Slots, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
