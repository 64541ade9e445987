package create_booking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/service/bookings/models"
	createBooking "github.com/m04kA/SMC-BookingEngine/internal/usecase/create_booking"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeUseCase struct {
	got  *createBooking.Request
	resp *models.BookingResponse
	err  error
}

func (f *fakeUseCase) Execute(_ context.Context, req *createBooking.Request) (*models.BookingResponse, error) {
	f.got = req
	return f.resp, f.err
}

const validBody = `{"serviceId":1,"providerId":7,"startAt":"2025-03-10T10:00:00Z","clientName":"Anna","addonIds":[3]}`

func TestHandle_Created(t *testing.T) {
	uc := &fakeUseCase{resp: &models.BookingResponse{ID: 99, ProviderID: 7, Status: "confirmed"}}
	h := NewHandler(uc, nopLogger{})

	w := httptest.NewRecorder()
	h.Handle(w, httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(validBody)))

	require.Equal(t, http.StatusCreated, w.Code)
	var body models.BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(99), body.ID)

	require.NotNil(t, uc.got)
	assert.Equal(t, int64(7), uc.got.ProviderID)
	assert.Equal(t, 10, uc.got.StartAt.Hour())
	assert.Equal(t, []int64{3}, uc.got.AddonIDs)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"bad json", `{`, nil, http.StatusBadRequest},
		{"bad start", `{"startAt":"10:00"}`, nil, http.StatusBadRequest},
		{"service not found", validBody, createBooking.ErrServiceNotFound, http.StatusNotFound},
		{"addon not found", validBody, createBooking.ErrAddonNotFound, http.StatusNotFound},
		{"conflict", validBody, fmt.Errorf("create: %w", domain.ErrSchedulingConflict), http.StatusConflict},
		{"slot", validBody, domain.ErrSlotUnavailable, http.StatusConflict},
		{"invalid", validBody, createBooking.ErrInvalidInput, http.StatusBadRequest},
		{"transient", validBody, domain.ErrTransientConflict, http.StatusServiceUnavailable},
		{"internal", validBody, createBooking.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeUseCase{err: tt.err}, nopLogger{})

			w := httptest.NewRecorder()
			h.Handle(w, httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(tt.body)))

			assert.Equal(t, tt.status, w.Code)
		})
	}
}
