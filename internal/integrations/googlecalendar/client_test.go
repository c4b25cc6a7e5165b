package googlecalendar

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

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	cfg := Config{
		AuthURL:      srv.URL + "/auth",
		TokenURL:     srv.URL + "/token",
		APIBaseURL:   srv.URL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "https://lobba.example/callback",
	}
	return NewClient(cfg, 5*time.Second, nopLogger{}), srv
}

func TestAuthCodeURL(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	rawURL := client.AuthCodeURL("42")

	assert.Contains(t, rawURL, srv.URL+"/auth?")
	assert.Contains(t, rawURL, "client_id=client-id")
	assert.Contains(t, rawURL, "state=42")
	assert.Contains(t, rawURL, "access_type=offline")
	assert.Contains(t, rawURL, "prompt=consent")
}

func TestExchangeCode_Success(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostFormValue("grant_type"))
		assert.Equal(t, "the-code", r.PostFormValue("code"))
		assert.Equal(t, "client-secret", r.PostFormValue("client_secret"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"access_token": "access-1",
			"refresh_token": "refresh-1",
			"expires_in": 3600,
			"token_type": "Bearer"
		}`))
	}))
	defer srv.Close()

	token, err := client.ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)

	assert.Equal(t, "access-1", token.AccessToken)
	assert.Equal(t, "refresh-1", token.RefreshToken)
	assert.Equal(t, int64(3600), token.ExpiresIn)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(time.Hour), token.ExpiresAt(now))
}

func TestRefreshToken_Rejected(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "invalid_grant"}`))
	}))
	defer srv.Close()

	_, err := client.RefreshToken(context.Background(), "stale-refresh")
	assert.ErrorIs(t, err, ErrOAuth)
}

func TestRequestToken_MissingAccessToken(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token_type": "Bearer"}`))
	}))
	defer srv.Close()

	_, err := client.ExchangeCode(context.Background(), "the-code")
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestListCalendars_WalksPagination(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me/calendarList", r.URL.Path)
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("pageToken") == "" {
			w.Write([]byte(`{
				"items": [{"id": "primary", "summary": "Main", "primary": true}],
				"nextPageToken": "page-2"
			}`))
			return
		}
		w.Write([]byte(`{"items": [{"id": "work", "summary": "Work"}]}`))
	}))
	defer srv.Close()

	calendars, err := client.ListCalendars(context.Background(), "access-1")
	require.NoError(t, err)

	require.Len(t, calendars, 2)
	assert.Equal(t, "primary", calendars[0].ID)
	assert.True(t, calendars[0].Primary)
	assert.Equal(t, "work", calendars[1].ID)
}

func TestInsertEvent_Success(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendars/primary/events", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var received Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		assert.Equal(t, "[LOBBA] Haircut", received.Summary)

		received.ID = "ext-1"
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(received)
	}))
	defer srv.Close()

	created, err := client.InsertEvent(context.Background(), "access-1", "primary", &Event{
		Summary: "[LOBBA] Haircut",
		Start:   &EventDateTime{DateTime: "2026-03-10T10:00:00Z"},
		End:     &EventDateTime{DateTime: "2026-03-10T11:00:00Z"},
	})
	require.NoError(t, err)

	assert.Equal(t, "ext-1", created.ID)
	assert.Equal(t, "[LOBBA] Haircut", created.Summary)
}

func TestDeleteEvent_NotFound(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	err := client.DeleteEvent(context.Background(), "access-1", "primary", "gone")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListEvents_SendsWindowAndToken(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2026-03-01T00:00:00Z", q.Get("timeMin"))
		assert.Equal(t, "2026-06-01T00:00:00Z", q.Get("timeMax"))
		assert.Equal(t, "true", q.Get("singleEvents"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"items": [
				{"id": "evt-1", "summary": "Dentist", "status": "confirmed"},
				{"id": "evt-2", "status": "cancelled"}
			]
		}`))
	}))
	defer srv.Close()

	events, err := client.ListEvents(context.Background(), "access-1", "primary", from, to)
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, "Dentist", events[0].Summary)
	assert.False(t, events[0].IsCancelled())
	assert.True(t, events[1].IsCancelled())
}

func TestWatchEvents_ParsesExpiration(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendars/primary/events/watch", r.URL.Path)

		var req WatchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "web_hook", req.Type)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chan-1",
			"resourceId": "res-1",
			"expiration": "1772064000000"
		}`))
	}))
	defer srv.Close()

	resp, err := client.WatchEvents(context.Background(), "access-1", "primary", &WatchRequest{
		ID:      "chan-1",
		Type:    "web_hook",
		Address: "https://lobba.example/notifications",
	})
	require.NoError(t, err)

	assert.Equal(t, "chan-1", resp.ID)
	assert.Equal(t, "res-1", resp.ResourceID)
	assert.Equal(t, time.UnixMilli(1772064000000), resp.ExpiresAt())
}

func TestDoJSON_Unauthorized(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := client.ListCalendars(context.Background(), "stale-access")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestDoJSON_UpstreamError(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error": {"code": 503, "message": "backend unavailable"}}`))
	}))
	defer srv.Close()

	_, err := client.ListCalendars(context.Background(), "access-1")
	require.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "backend unavailable")
}

func TestEvent_ReservationMarker(t *testing.T) {
	withMarker := &Event{ExtendedProperties: &ExtendedProperties{
		Private: map[string]string{"lobbaReservationId": "10"},
	}}
	assert.Equal(t, "10", withMarker.ReservationMarker())

	assert.Empty(t, (&Event{}).ReservationMarker())
}

func TestEvent_ParseTimes(t *testing.T) {
	madrid, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)

	timed := &Event{
		Start: &EventDateTime{DateTime: "2026-03-10T10:00:00+01:00"},
		End:   &EventDateTime{DateTime: "2026-03-10T11:00:00+01:00"},
	}
	start, err := timed.StartTime(madrid)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), start.UTC())

	allDay := &Event{Start: &EventDateTime{Date: "2026-03-10"}}
	start, err = allDay.StartTime(madrid)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, madrid), start)

	_, err = (&Event{}).StartTime(madrid)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}
