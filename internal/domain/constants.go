package domain

import "time"

// Slot generation
const (
	// SlotStepMinutes шаг генерации кандидатов слотов
	SlotStepMinutes = 15
)

// Auto-confirmation business rules
// Захардкожены до появления per-business конфигурации
const (
	// MaxNoShowRate допустимая доля no-show в истории пользователя
	MaxNoShowRate = 0.20
	// MaxSameDayReservations дневной лимит броней пользователя в одном бизнесе
	MaxSameDayReservations = 10
)

// Calendar synchronization
const (
	// InboundSyncWindowMonths окно, за которое подтягиваются внешние события
	InboundSyncWindowMonths = 3
	// EventMarkerKey ключ приватного свойства события, помечающего его как созданное LOBBA
	EventMarkerKey = "lobbaReservationId"
)

// Webhook channel lifecycle
const (
	// WebhookRenewalWindow за сколько до истечения канал считается expiring-soon
	WebhookRenewalWindow = 48 * time.Hour
	// WebhookCleanupGrace через сколько после истечения канал принудительно чистится
	WebhookCleanupGrace = 24 * time.Hour
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Business validation constants
const (
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
)
