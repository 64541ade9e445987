package slotauthority

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPAuthority_AvailableStarts(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/slots", r.URL.Path)
		gotQuery = map[string]string{
			"serviceId":  r.URL.Query().Get("serviceId"),
			"providerId": r.URL.Query().Get("providerId"),
			"start":      r.URL.Query().Get("start"),
			"end":        r.URL.Query().Get("end"),
			"tenantId":   r.URL.Query().Get("tenantId"),
		}
		_ = json.NewEncoder(w).Encode(SlotsResponse{Slots: []time.Time{testStart, testStart.Add(30 * time.Minute)}})
	}))
	defer server.Close()

	client := NewHTTPAuthority(server.URL, time.Second, 0, 0, nopLogger{})
	tenant := int64(5)

	starts, err := client.AvailableStarts(context.Background(), Query{
		Service:  testService,
		Provider: testProvider,
		Start:    testStart,
		End:      testStart.Add(time.Hour),
		TenantID: &tenant,
	})

	require.NoError(t, err)
	require.Len(t, starts, 2)
	assert.True(t, starts[0].Equal(testStart))
	assert.Equal(t, map[string]string{
		"serviceId":  "3",
		"providerId": "7",
		"start":      "2025-01-01T09:00:00Z",
		"end":        "2025-01-01T10:00:00Z",
		"tenantId":   "5",
	}, gotQuery)
}

func TestHTTPAuthority_NotFoundMeansNoSlots(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewHTTPAuthority(server.URL, time.Second, 0, 0, nopLogger{})

	starts, err := client.AvailableStarts(context.Background(), Query{Service: testService, Provider: testProvider, Start: testStart, End: testStart.Add(time.Hour)})

	require.NoError(t, err)
	assert.Empty(t, starts)
}

func TestHTTPAuthority_UnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewHTTPAuthority(server.URL, time.Second, 0, 0, nopLogger{})

	_, err := client.AvailableStarts(context.Background(), Query{Service: testService, Provider: testProvider, Start: testStart, End: testStart.Add(time.Hour)})

	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestHTTPAuthority_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewHTTPAuthority(server.URL, 20*time.Millisecond, 0, 0, nopLogger{})

	_, err := client.AvailableStarts(context.Background(), Query{Service: testService, Provider: testProvider, Start: testStart, End: testStart.Add(time.Hour)})

	assert.ErrorIs(t, err, ErrTimeout)
}
