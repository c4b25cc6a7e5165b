package domain

import "time"

// Interval полуоткрытый временной интервал [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps returns true if the two half-open intervals share at least one
// instant: [a1,a2) and [b1,b2) overlap iff a1 < b2 && b1 < a2.
// Intervals that only touch at a boundary do not overlap
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// IsValid returns true for a non-empty interval
func (i Interval) IsValid() bool {
	return i.Start.Before(i.End)
}

// SlotAvailability доступность одного слота с учётом capacity
type SlotAvailability struct {
	StartAt        time.Time
	EndAt          time.Time
	Available      bool
	CurrentCount   int
	MaxCapacity    int
	SlotsRemaining int
}

// CountOverlapping подсчитывает, сколько броней и активных блоков пересекается
// с указанным окном. Брони учитываются с буфером (EffectiveWindow),
// блоки - ровно по своим границам
func CountOverlapping(window Interval, reservations []*Reservation, blocks []*AvailabilityBlock) int {
	count := 0

	for _, r := range reservations {
		if !r.BlocksCapacity() {
			continue
		}
		if r.EffectiveWindow().Overlaps(window) {
			count++
		}
	}

	for _, b := range blocks {
		if !b.BlocksCapacity() {
			continue
		}
		if b.Window().Overlaps(window) {
			count++
		}
	}

	return count
}

// EffectiveCapacity возвращает действующий лимит одновременных броней
// Если capacity выключен, бизнес обслуживает ровно одного клиента
func EffectiveCapacity(enabled bool, max int) int {
	if !enabled {
		return 1
	}
	if max < 1 {
		return 1
	}
	return max
}
