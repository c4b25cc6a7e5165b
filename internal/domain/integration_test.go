package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lobba/scheduling-service/pkg/ptr"
)

func channelIntegration(expiresAt time.Time, syncEnabled bool) *CalendarIntegration {
	return &CalendarIntegration{
		BusinessID:       1,
		CalendarID:       "primary",
		SyncEnabled:      syncEnabled,
		ChannelID:        ptr.Ptr("chan-1"),
		ResourceID:       ptr.Ptr("res-1"),
		ChannelExpiresAt: &expiresAt,
	}
}

func TestChannelState(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      WebhookChannelState
	}{
		{"well in the future", now.Add(72 * time.Hour), ChannelStateActive},
		{"exactly at renewal window", now.Add(WebhookRenewalWindow), ChannelStateExpiringSoon},
		{"inside renewal window", now.Add(24 * time.Hour), ChannelStateExpiringSoon},
		{"exactly now", now, ChannelStateExpired},
		{"in the past", now.Add(-time.Hour), ChannelStateExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := channelIntegration(tt.expiresAt, true)
			assert.Equal(t, tt.want, c.ChannelState(now))
		})
	}

	noChannel := &CalendarIntegration{BusinessID: 1}
	assert.Equal(t, ChannelStateNone, noChannel.ChannelState(now))
}

func TestNeedsRenewal(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.True(t, channelIntegration(now.Add(24*time.Hour), true).NeedsRenewal(now))
	assert.True(t, channelIntegration(now.Add(-time.Hour), true).NeedsRenewal(now))
	assert.False(t, channelIntegration(now.Add(72*time.Hour), true).NeedsRenewal(now))
	assert.False(t, channelIntegration(now.Add(24*time.Hour), false).NeedsRenewal(now),
		"disabled sync should never renew")
	assert.False(t, (&CalendarIntegration{SyncEnabled: true}).NeedsRenewal(now))
}

func TestNeedsCleanup(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.True(t, channelIntegration(now.Add(-WebhookCleanupGrace-time.Minute), true).NeedsCleanup(now))
	assert.False(t, channelIntegration(now.Add(-WebhookCleanupGrace), true).NeedsCleanup(now),
		"exactly at the grace boundary is not yet cleanup")
	assert.False(t, channelIntegration(now.Add(-time.Hour), true).NeedsCleanup(now))
	assert.False(t, (&CalendarIntegration{}).NeedsCleanup(now))

	// Очистка не зависит от флага синхронизации
	assert.True(t, channelIntegration(now.Add(-48*time.Hour), false).NeedsCleanup(now))
}

func TestTokenExpired(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	fresh := &CalendarIntegration{TokenExpiresAt: now.Add(time.Hour)}
	assert.False(t, fresh.TokenExpired(now))

	// Токен, истекающий в пределах минутного запаса, считается истёкшим
	almostExpired := &CalendarIntegration{TokenExpiresAt: now.Add(30 * time.Second)}
	assert.True(t, almostExpired.TokenExpired(now))

	expired := &CalendarIntegration{TokenExpiresAt: now.Add(-time.Hour)}
	assert.True(t, expired.TokenExpired(now))
}

func TestSyncReady(t *testing.T) {
	assert.True(t, (&CalendarIntegration{SyncEnabled: true, CalendarID: "primary"}).SyncReady())
	assert.False(t, (&CalendarIntegration{SyncEnabled: true}).SyncReady(), "calendar not selected yet")
	assert.False(t, (&CalendarIntegration{CalendarID: "primary"}).SyncReady())
}
