package domain

import "time"

// BlockOrigin источник блокировки доступности
type BlockOrigin string

const (
	// OriginManual блок, созданный владельцем бизнеса вручную
	OriginManual BlockOrigin = "manual"
	// OriginExternalSync блок, зеркалированный из внешнего календаря
	OriginExternalSync BlockOrigin = "external_sync"
)

// AvailabilityBlock represents a time interval during which a business is
// unbookable. Blocks carry no buffer: they block exactly [StartAt, EndAt)
type AvailabilityBlock struct {
	ID         int64
	BusinessID int64

	StartAt time.Time
	EndAt   time.Time
	Title   string

	Origin          BlockOrigin
	ExternalEventID *string // natural key for origin=external_sync upserts
	Active          bool    // false = soft-deleted

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Window returns the blocked interval [StartAt, EndAt)
func (b *AvailabilityBlock) Window() Interval {
	return Interval{Start: b.StartAt, End: b.EndAt}
}

// BlocksCapacity returns true if the block counts against capacity
func (b *AvailabilityBlock) BlocksCapacity() bool {
	return b.Active
}
