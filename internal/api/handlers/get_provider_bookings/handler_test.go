package get_provider_bookings

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/service/bookings"
	"github.com/m04kA/SMC-BookingEngine/internal/service/bookings/models"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeService struct {
	got *models.GetProviderBookingsRequest
	err error
}

func (f *fakeService) GetProviderBookings(_ context.Context, req *models.GetProviderBookingsRequest) (*models.BookingListResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.BookingListResponse{Bookings: []models.BookingResponse{{ID: 1}, {ID: 2}}}, nil
}

func newRequest(target, providerID string) *http.Request {
	return mux.SetURLVars(httptest.NewRequest(http.MethodGet, target, nil), map[string]string{"providerId": providerID})
}

func TestHandle_ParsesFilter(t *testing.T) {
	svc := &fakeService{}
	h := NewHandler(svc, nopLogger{})

	w := httptest.NewRecorder()
	h.Handle(w, newRequest("/api/v1/providers/7/bookings?from=2025-03-10T00:00:00Z&to=2025-03-11T00:00:00Z&status=confirmed&includeInactive=true", "7"))

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.got)
	assert.Equal(t, int64(7), svc.got.ProviderID)
	require.NotNil(t, svc.got.From)
	require.NotNil(t, svc.got.To)
	assert.Equal(t, "confirmed", *svc.got.Status)
	assert.True(t, svc.got.IncludeInactive)
	assert.JSONEq(t, `[{"id":1},{"id":2}]`, onlyIDs(t, w.Body.Bytes()))
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		err    error
		status int
	}{
		{"bad from", "/api/v1/providers/7/bookings?from=today", nil, http.StatusBadRequest},
		{"bad includeInactive", "/api/v1/providers/7/bookings?includeInactive=maybe", nil, http.StatusBadRequest},
		{"invalid status", "/api/v1/providers/7/bookings?status=lost", bookings.ErrInvalidInput, http.StatusBadRequest},
		{"internal", "/api/v1/providers/7/bookings", bookings.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeService{err: tt.err}, nopLogger{})

			w := httptest.NewRecorder()
			h.Handle(w, newRequest(tt.target, "7"))

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func onlyIDs(t *testing.T, body []byte) string {
	t.Helper()
	var list []models.BookingResponse
	require.NoError(t, json.Unmarshal(body, &list))

	out := "["
	for i, b := range list {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"id":%d}`, b.ID)
	}
	return out + "]"
}
