package get_busy_intervals

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/service/availability"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeService struct {
	ranges []domain.TimeRange
	err    error
}

func (f fakeService) GetBusyIntervals(context.Context, int64, time.Time, time.Time) ([]domain.TimeRange, error) {
	return f.ranges, f.err
}

func newRequest(query string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/providers/7/busy-intervals"+query, nil)
	return mux.SetURLVars(r, map[string]string{"providerId": "7"})
}

func TestHandle_OK(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	h := NewHandler(fakeService{ranges: []domain.TimeRange{
		{Start: day.Add(9*time.Hour + 50*time.Minute), End: day.Add(10*time.Hour + 35*time.Minute)},
	}}, nopLogger{})

	w := httptest.NewRecorder()
	h.Handle(w, newRequest("?start=2025-03-10T00:00:00Z&end=2025-03-11T00:00:00Z"))

	require.Equal(t, http.StatusOK, w.Code)
	var body BusyIntervalsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(7), body.ProviderID)
	require.Len(t, body.Intervals, 1)
	assert.Equal(t, "2025-03-10T09:50:00Z", body.Intervals[0].Start)
	assert.Equal(t, "2025-03-10T10:35:00Z", body.Intervals[0].End)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		err    error
		status int
	}{
		{"missing end", "?start=2025-03-10T00:00:00Z", nil, http.StatusBadRequest},
		{"malformed", "?start=monday&end=2025-03-11T00:00:00Z", nil, http.StatusBadRequest},
		{"empty window", "?start=2025-03-10T00:00:00Z&end=2025-03-10T00:00:00Z", availability.ErrInvalidWindow, http.StatusBadRequest},
		{"internal", "?start=2025-03-10T00:00:00Z&end=2025-03-11T00:00:00Z", availability.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(fakeService{err: tt.err}, nopLogger{})

			w := httptest.NewRecorder()
			h.Handle(w, newRequest(tt.query))

			assert.Equal(t, tt.status, w.Code)
		})
	}
}
