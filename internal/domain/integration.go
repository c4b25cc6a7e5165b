package domain

import "time"

// tokenExpirySkew запас, с которым access token считается истёкшим
const tokenExpirySkew = time.Minute

// CalendarIntegration привязка бизнеса к внешнему календарю
// Одна запись на бизнес; хранит OAuth-токены и состояние webhook-канала
type CalendarIntegration struct {
	BusinessID  int64
	CalendarID  string // пустая строка = основной календарь ещё не выбран
	SyncEnabled bool

	AccessToken    string
	RefreshToken   string
	TokenExpiresAt time.Time

	ChannelID        *string
	ResourceID       *string
	ChannelExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasCalendar returns true once a primary calendar has been selected
func (c *CalendarIntegration) HasCalendar() bool {
	return c.CalendarID != ""
}

// SyncReady returns true if the integration can be used for synchronization
func (c *CalendarIntegration) SyncReady() bool {
	return c.SyncEnabled && c.HasCalendar()
}

// TokenExpired returns true if the access token must be refreshed before use
func (c *CalendarIntegration) TokenExpired(now time.Time) bool {
	return !c.TokenExpiresAt.After(now.Add(tokenExpirySkew))
}

// HasChannel returns true if a webhook channel is registered
func (c *CalendarIntegration) HasChannel() bool {
	return c.ChannelID != nil && c.ResourceID != nil && c.ChannelExpiresAt != nil
}

// WebhookChannelState состояние webhook-канала бизнеса
type WebhookChannelState string

const (
	ChannelStateNone         WebhookChannelState = "none"
	ChannelStateActive       WebhookChannelState = "active"
	ChannelStateExpiringSoon WebhookChannelState = "expiring_soon"
	ChannelStateExpired      WebhookChannelState = "expired"
)

// ChannelState вычисляет состояние канала на момент now
func (c *CalendarIntegration) ChannelState(now time.Time) WebhookChannelState {
	if !c.HasChannel() {
		return ChannelStateNone
	}

	expiresAt := *c.ChannelExpiresAt
	switch {
	case !expiresAt.After(now):
		return ChannelStateExpired
	case !expiresAt.After(now.Add(WebhookRenewalWindow)):
		return ChannelStateExpiringSoon
	default:
		return ChannelStateActive
	}
}

// NeedsRenewal returns true if the channel should be renewed during the sweep
func (c *CalendarIntegration) NeedsRenewal(now time.Time) bool {
	if !c.SyncEnabled || !c.HasChannel() {
		return false
	}
	state := c.ChannelState(now)
	return state == ChannelStateExpiringSoon || state == ChannelStateExpired
}

// NeedsCleanup returns true if the channel expired long enough ago to be
// forcibly cleared
func (c *CalendarIntegration) NeedsCleanup(now time.Time) bool {
	if !c.HasChannel() {
		return false
	}
	return now.Sub(*c.ChannelExpiresAt) > WebhookCleanupGrace
}
