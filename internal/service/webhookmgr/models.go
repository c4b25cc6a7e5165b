package webhookmgr

import "time"

// ChannelInfo зарегистрированный push-канал
type ChannelInfo struct {
	ChannelID  string    `json:"channel_id"`
	ResourceID string    `json:"resource_id"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// SweepResult итог планового обхода каналов
type SweepResult struct {
	Renewed int
	Cleaned int
	Failed  int
}
