package settingsservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, 5*time.Second, nopLogger{}), srv
}

func TestGetBusiness_Success(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/businesses/42", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": 42,
			"name": "Salon Aurora",
			"timezone": "Europe/Madrid",
			"working_hours": {
				"monday": {"is_open": true, "open_time": "09:00", "close_time": "18:00"}
			},
			"capacity_enabled": true,
			"simultaneous_capacity": 3,
			"default_buffer_minutes": 10
		}`))
	}))
	defer srv.Close()

	business, err := client.GetBusiness(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, int64(42), business.ID)
	assert.Equal(t, "Salon Aurora", business.Name)
	assert.Equal(t, "Europe/Madrid", business.Timezone)
	assert.True(t, business.CapacityEnabled)
	assert.Equal(t, 3, business.SimultaneousCapacity)
	assert.Equal(t, 10, business.DefaultBufferMinutes)
	require.NotNil(t, business.WorkingHours.Monday.OpenTime)
	assert.Equal(t, "09:00", *business.WorkingHours.Monday.OpenTime)
}

func TestGetBusiness_NotFound(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := client.GetBusiness(context.Background(), 99)
	assert.ErrorIs(t, err, ErrBusinessNotFound)
}

func TestGetService_Success(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/businesses/42/services/7", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 7, "business_id": 42, "name": "Haircut", "duration_minutes": 60, "price": 35.5}`))
	}))
	defer srv.Close()

	service, err := client.GetService(context.Background(), 42, 7)
	require.NoError(t, err)

	assert.Equal(t, int64(7), service.ID)
	assert.Equal(t, "Haircut", service.Name)
	assert.Equal(t, 60, service.DurationMinutes)
	require.NotNil(t, service.Price)
	assert.Equal(t, 35.5, *service.Price)
}

func TestGetService_NotFound(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := client.GetService(context.Background(), 42, 99)
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestGetAutoConfirmSettings_Success(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/businesses/42/auto-confirm-settings", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"enabled": true,
			"min_advance_hours": 2,
			"require_manual_first_booking": true,
			"manual_approval_service_ids": [5, 7]
		}`))
	}))
	defer srv.Close()

	settings, err := client.GetAutoConfirmSettings(context.Background(), 42)
	require.NoError(t, err)

	assert.True(t, settings.Enabled)
	assert.Equal(t, 2, settings.MinAdvanceHours)
	assert.True(t, settings.RequireManualFirstBooking)
	assert.True(t, settings.RequiresManualApproval(7))
	assert.False(t, settings.RequiresManualApproval(8))
}

func TestGetJSON_BadRequest(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := client.GetBusiness(context.Background(), 42)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestGetJSON_ServerError(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := client.GetBusiness(context.Background(), 42)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestGetJSON_MalformedBody(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	_, err := client.GetBusiness(context.Background(), 42)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}
