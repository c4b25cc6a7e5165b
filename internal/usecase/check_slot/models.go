package check_slot

import "time"

// Request модель запроса проверки конкретного слота
type Request struct {
	BusinessID int64
	StartAt    time.Time
	EndAt      time.Time
}

// Response результат проверки слота
type Response struct {
	Available      bool
	CurrentCount   int
	MaxCapacity    int
	SlotsRemaining int
}
