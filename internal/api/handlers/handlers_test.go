package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

func TestRespondDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantRetry  string
	}{
		{"conflict", fmt.Errorf("wrap: %w", domain.ErrSchedulingConflict), http.StatusConflict, ""},
		{"slot", domain.ErrSlotUnavailable, http.StatusConflict, ""},
		{"state", domain.ErrInvalidState, http.StatusConflict, ""},
		{"notice", domain.ErrNoticeViolation, http.StatusUnprocessableEntity, ""},
		{"invalid booking", domain.ErrInvalidBooking, http.StatusBadRequest, ""},
		{"invalid argument", domain.ErrInvalidArgument, http.StatusBadRequest, ""},
		{"transient", fmt.Errorf("lock: %w", domain.ErrTransientConflict), http.StatusServiceUnavailable, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			ok := RespondDomainError(w, tt.err)

			assert.True(t, ok)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantRetry, w.Header().Get("Retry-After"))
			assert.Contains(t, w.Body.String(), `"code"`)
		})
	}
}

func TestRespondDomainError_Unknown(t *testing.T) {
	w := httptest.NewRecorder()

	assert.False(t, RespondDomainError(w, errors.New("boom")))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Anna"}`))
	require.NoError(t, DecodeJSON(r, &dst))
	assert.Equal(t, "Anna", dst.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.NoError(t, DecodeJSON(r, &dst))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"unknown":1}`))
	assert.Error(t, DecodeJSON(r, &dst))
}

func TestPathInt64(t *testing.T) {
	r := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"bookingId": "42"})
	id, err := PathInt64(r, "bookingId")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	r = mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"bookingId": "-1"})
	_, err = PathInt64(r, "bookingId")
	assert.Error(t, err)
}

func TestQueryTime(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?from=2025-03-10T09:00:00Z", nil)
	from, err := QueryTime(r, "from")
	require.NoError(t, err)
	require.NotNil(t, from)
	assert.Equal(t, 9, from.Hour())

	to, err := QueryTime(r, "to")
	assert.NoError(t, err)
	assert.Nil(t, to)

	r = httptest.NewRequest(http.MethodGet, "/?from=yesterday", nil)
	_, err = QueryTime(r, "from")
	assert.Error(t, err)
}
