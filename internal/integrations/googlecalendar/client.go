package googlecalendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Config настройки клиента внешнего календаря
// Базовые URL выведены в конфигурацию, чтобы в тестах клиент ходил в httptest сервер
type Config struct {
	AuthURL      string // https://accounts.google.com/o/oauth2/v2/auth
	TokenURL     string // https://oauth2.googleapis.com/token
	APIBaseURL   string // https://www.googleapis.com/calendar/v3
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Client клиент провайдера внешнего календаря
// Не хранит токены: access token каждого бизнеса передается явно в каждый вызов
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента календаря
func NewClient(cfg Config, timeout time.Duration, log Logger) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// AuthCodeURL строит URL страницы согласия провайдера
// state прокидывается обратно в callback и несет ID бизнеса
func (c *Client) AuthCodeURL(state string) string {
	params := url.Values{}
	params.Set("client_id", c.cfg.ClientID)
	params.Set("redirect_uri", c.cfg.RedirectURL)
	params.Set("response_type", "code")
	params.Set("scope", "https://www.googleapis.com/auth/calendar")
	params.Set("access_type", "offline")
	params.Set("prompt", "consent")
	params.Set("state", state)

	return c.cfg.AuthURL + "?" + params.Encode()
}

// ExchangeCode обменивает authorization code на токены
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("redirect_uri", c.cfg.RedirectURL)

	return c.requestToken(ctx, form)
}

// RefreshToken обменивает refresh token на новый access token
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)

	return c.requestToken(ctx, form)
}

func (c *Client) requestToken(ctx context.Context, form url.Values) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create token request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute token request: %v", ErrOAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: token endpoint returned %d: %s", ErrOAuth, resp.StatusCode, string(body))
	}

	var token Token
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("%w: failed to decode token response: %v", ErrInvalidResponse, err)
	}

	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response has no access_token", ErrInvalidResponse)
	}

	return &token, nil
}

// ListCalendars получает список календарей пользователя
func (c *Client) ListCalendars(ctx context.Context, accessToken string) ([]Calendar, error) {
	calendars := make([]Calendar, 0)
	pageToken := ""

	for {
		endpoint := c.cfg.APIBaseURL + "/users/me/calendarList"
		if pageToken != "" {
			endpoint += "?pageToken=" + url.QueryEscape(pageToken)
		}

		var page calendarListResponse
		if err := c.doJSON(ctx, http.MethodGet, endpoint, accessToken, nil, &page); err != nil {
			return nil, fmt.Errorf("ListCalendars: %w", err)
		}

		calendars = append(calendars, page.Items...)
		if page.NextPageToken == "" {
			return calendars, nil
		}
		pageToken = page.NextPageToken
	}
}

// InsertEvent создает событие в календаре
func (c *Client) InsertEvent(ctx context.Context, accessToken, calendarID string, event *Event) (*Event, error) {
	endpoint := fmt.Sprintf("%s/calendars/%s/events", c.cfg.APIBaseURL, url.PathEscape(calendarID))

	var created Event
	if err := c.doJSON(ctx, http.MethodPost, endpoint, accessToken, event, &created); err != nil {
		return nil, fmt.Errorf("InsertEvent: %w", err)
	}

	return &created, nil
}

// DeleteEvent удаляет событие из календаря
func (c *Client) DeleteEvent(ctx context.Context, accessToken, calendarID, eventID string) error {
	endpoint := fmt.Sprintf("%s/calendars/%s/events/%s",
		c.cfg.APIBaseURL, url.PathEscape(calendarID), url.PathEscape(eventID))

	if err := c.doJSON(ctx, http.MethodDelete, endpoint, accessToken, nil, nil); err != nil {
		return fmt.Errorf("DeleteEvent: %w", err)
	}

	return nil
}

// ListEvents получает одиночные события календаря в окне [from, to)
// Пагинация обходится целиком
func (c *Client) ListEvents(ctx context.Context, accessToken, calendarID string, from, to time.Time) ([]*Event, error) {
	events := make([]*Event, 0)
	pageToken := ""

	for {
		params := url.Values{}
		params.Set("timeMin", from.UTC().Format(time.RFC3339))
		params.Set("timeMax", to.UTC().Format(time.RFC3339))
		params.Set("singleEvents", "true")
		params.Set("orderBy", "startTime")
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		endpoint := fmt.Sprintf("%s/calendars/%s/events?%s",
			c.cfg.APIBaseURL, url.PathEscape(calendarID), params.Encode())

		var page eventListResponse
		if err := c.doJSON(ctx, http.MethodGet, endpoint, accessToken, nil, &page); err != nil {
			return nil, fmt.Errorf("ListEvents: %w", err)
		}

		events = append(events, page.Items...)
		if page.NextPageToken == "" {
			return events, nil
		}
		pageToken = page.NextPageToken
	}
}

// WatchEvents регистрирует push-канал на изменения событий календаря
func (c *Client) WatchEvents(ctx context.Context, accessToken, calendarID string, watch *WatchRequest) (*WatchResponse, error) {
	endpoint := fmt.Sprintf("%s/calendars/%s/events/watch", c.cfg.APIBaseURL, url.PathEscape(calendarID))

	var resp WatchResponse
	if err := c.doJSON(ctx, http.MethodPost, endpoint, accessToken, watch, &resp); err != nil {
		return nil, fmt.Errorf("WatchEvents: %w", err)
	}

	return &resp, nil
}

// StopChannel останавливает push-канал (best-effort при продлении)
func (c *Client) StopChannel(ctx context.Context, accessToken, channelID, resourceID string) error {
	endpoint := c.cfg.APIBaseURL + "/channels/stop"

	body := map[string]string{
		"id":         channelID,
		"resourceId": resourceID,
	}
	if err := c.doJSON(ctx, http.MethodPost, endpoint, accessToken, body, nil); err != nil {
		return fmt.Errorf("StopChannel: %w", err)
	}

	return nil
}

// doJSON общий HTTP вызов к API провайдера с обработкой статус-кодов
func (c *Client) doJSON(ctx context.Context, method, endpoint, accessToken string, body, dst interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: failed to encode request body: %v", ErrInternal, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent:
		// Продолжаем обработку
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, readErrorMessage(resp.Body))
	default:
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, readErrorMessage(resp.Body))
	}

	if dst == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return nil
}

// readErrorMessage вытаскивает человекочитаемое сообщение из тела ошибки
func readErrorMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 4096))

	var parsed errorResponse
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return string(raw)
}
