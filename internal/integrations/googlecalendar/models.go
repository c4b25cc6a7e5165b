package googlecalendar

import (
	"time"

	"github.com/lobba/scheduling-service/internal/domain"
)

// Token OAuth-токены, выданные провайдером
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"` // секунды
	TokenType    string `json:"token_type"`
}

// ExpiresAt вычисляет абсолютное время истечения access token
func (t *Token) ExpiresAt(now time.Time) time.Time {
	return now.Add(time.Duration(t.ExpiresIn) * time.Second)
}

// Calendar календарь из списка пользователя
type Calendar struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
	Primary bool   `json:"primary,omitempty"`
}

// calendarListResponse ответ GET /users/me/calendarList
type calendarListResponse struct {
	Items         []Calendar `json:"items"`
	NextPageToken string     `json:"nextPageToken,omitempty"`
}

// EventDateTime время начала/конца события
// Для обычных событий заполнен DateTime (RFC3339), для all-day - Date
type EventDateTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

// ExtendedProperties приватные свойства события
type ExtendedProperties struct {
	Private map[string]string `json:"private,omitempty"`
}

// Event событие внешнего календаря
type Event struct {
	ID                 string              `json:"id,omitempty"`
	Status             string              `json:"status,omitempty"` // confirmed, tentative, cancelled
	Summary            string              `json:"summary,omitempty"`
	Description        string              `json:"description,omitempty"`
	Start              *EventDateTime      `json:"start,omitempty"`
	End                *EventDateTime      `json:"end,omitempty"`
	ExtendedProperties *ExtendedProperties `json:"extendedProperties,omitempty"`
}

// ReservationMarker возвращает значение LOBBA-маркера события
// Пустая строка означает, что событие создано не нами
func (e *Event) ReservationMarker() string {
	if e.ExtendedProperties == nil {
		return ""
	}
	return e.ExtendedProperties.Private[domain.EventMarkerKey]
}

// IsCancelled возвращает true для отменённого события
func (e *Event) IsCancelled() bool {
	return e.Status == "cancelled"
}

// StartTime парсит время начала события
// All-day события интерпретируются как полночь в указанной локации
func (e *Event) StartTime(loc *time.Location) (time.Time, error) {
	return parseEventDateTime(e.Start, loc)
}

// EndTime парсит время конца события
func (e *Event) EndTime(loc *time.Location) (time.Time, error) {
	return parseEventDateTime(e.End, loc)
}

func parseEventDateTime(edt *EventDateTime, loc *time.Location) (time.Time, error) {
	if edt == nil {
		return time.Time{}, ErrInvalidResponse
	}
	if edt.DateTime != "" {
		return time.Parse(time.RFC3339, edt.DateTime)
	}
	return time.ParseInLocation("2006-01-02", edt.Date, loc)
}

// eventListResponse ответ GET /calendars/{id}/events
type eventListResponse struct {
	Items         []*Event `json:"items"`
	NextPageToken string   `json:"nextPageToken,omitempty"`
}

// WatchRequest запрос на регистрацию push-канала
type WatchRequest struct {
	ID      string `json:"id"`
	Type    string `json:"type"` // всегда "web_hook"
	Address string `json:"address"`
	Token   string `json:"token,omitempty"`
}

// WatchResponse ответ регистрации push-канала
type WatchResponse struct {
	ID         string `json:"id"`
	ResourceID string `json:"resourceId"`
	Expiration int64  `json:"expiration,string"` // unix millis
}

// ExpiresAt вычисляет время истечения канала
func (w *WatchResponse) ExpiresAt() time.Time {
	return time.UnixMilli(w.Expiration)
}

// errorResponse модель ошибки провайдера
type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
