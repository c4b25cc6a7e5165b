package create_reservation

import "time"

// Request модель запроса на создание записи
type Request struct {
	UserID     int64
	BusinessID int64
	ServiceID  int64
	StartAt    time.Time
	Notes      *string
	// BufferMinutes переопределяет буфер бизнеса для этой записи
	BufferMinutes *int
}

// Response модель созданной записи
type Response struct {
	ID            int64
	UserID        int64
	BusinessID    int64
	ServiceID     int64
	StartAt       time.Time
	EndAt         time.Time
	Status        string
	BufferMinutes int
	AutoConfirmed bool
	ServiceName   string
	ServicePrice  float64
	Notes         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
