package change_booking_status

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/service/bookings"
	"github.com/m04kA/SMC-BookingEngine/internal/service/bookings/models"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeService struct {
	err error
}

func (f *fakeService) respond(id int64, status domain.BookingStatus) (*models.BookingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.BookingResponse{ID: id, Status: string(status)}, nil
}

func (f *fakeService) Complete(_ context.Context, id int64) (*models.BookingResponse, error) {
	return f.respond(id, domain.StatusCompleted)
}

func (f *fakeService) MarkNoShow(_ context.Context, id int64) (*models.BookingResponse, error) {
	return f.respond(id, domain.StatusNoShow)
}

func (f *fakeService) Approve(_ context.Context, id int64) (*models.BookingResponse, error) {
	return f.respond(id, domain.StatusConfirmed)
}

func newRouter(h *Handler) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/bookings/{bookingId}/complete", h.Complete).Methods(http.MethodPatch)
	router.HandleFunc("/bookings/{bookingId}/no-show", h.NoShow).Methods(http.MethodPatch)
	router.HandleFunc("/bookings/{bookingId}/approve", h.Approve).Methods(http.MethodPatch)
	return router
}

func TestActions(t *testing.T) {
	tests := []struct {
		path   string
		status domain.BookingStatus
	}{
		{"/bookings/4/complete", domain.StatusCompleted},
		{"/bookings/4/no-show", domain.StatusNoShow},
		{"/bookings/4/approve", domain.StatusConfirmed},
	}

	router := newRouter(NewHandler(&fakeService{}, nopLogger{}))

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, tt.path, nil))

			require.Equal(t, http.StatusOK, w.Code)
			var body models.BookingResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, string(tt.status), body.Status)
		})
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", bookings.ErrBookingNotFound, http.StatusNotFound},
		{"terminal", domain.ErrInvalidState, http.StatusConflict},
		{"lock", domain.ErrTransientConflict, http.StatusServiceUnavailable},
		{"internal", bookings.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(NewHandler(&fakeService{err: tt.err}, nopLogger{}))

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/bookings/4/complete", nil))

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestInvalidID(t *testing.T) {
	router := newRouter(NewHandler(&fakeService{}, nopLogger{}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/bookings/abc/approve", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
