package get_day_availability

import "time"

// Request модель запроса дневной сетки слотов
type Request struct {
	BusinessID int64
	ServiceID  int64
	Date       time.Time // Дата без времени, интерпретируется в таймзоне бизнеса
}

// Response модель ответа с сеткой слотов на день
type Response struct {
	Date        time.Time
	BusinessID  int64
	ServiceID   int64
	MaxCapacity int
	Slots       []Slot
}

// Slot слот дневной сетки с аннотацией загруженности
type Slot struct {
	StartAt        time.Time
	EndAt          time.Time
	Available      bool
	CurrentCount   int
	MaxCapacity    int
	SlotsRemaining int
}
