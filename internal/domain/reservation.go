package domain

import "time"

// ReservationStatus represents the status of a reservation
type ReservationStatus string

const (
	StatusPending     ReservationStatus = "pending"
	StatusConfirmed   ReservationStatus = "confirmed"
	StatusInProgress  ReservationStatus = "in_progress"
	StatusCompleted   ReservationStatus = "completed"
	StatusCancelled   ReservationStatus = "cancelled"
	StatusRejected    ReservationStatus = "rejected"
	StatusExpired     ReservationStatus = "expired"
	StatusRescheduled ReservationStatus = "rescheduled"
	StatusNoShow      ReservationStatus = "no_show"
)

// Reservation represents a service reservation in the system
// The time interval is half-open: [StartAt, EndAt)
type Reservation struct {
	ID         int64
	BusinessID int64
	ServiceID  int64
	UserID     int64

	StartAt       time.Time
	EndAt         time.Time
	Status        ReservationStatus
	BufferMinutes int // разрешённый буфер вокруг брони (резолвится при создании из настроек бизнеса)

	ExternalEventID *string // ID события во внешнем календаре, заполняется исходящей синхронизацией
	AutoConfirmed   bool

	// Denormalized data for history
	ServiceName  string
	ServicePrice float64
	Notes        *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// statusTransitions таблица допустимых переходов статусов
// Терминальные статусы не имеют исходящих переходов
var statusTransitions = map[ReservationStatus][]ReservationStatus{
	StatusPending:    {StatusConfirmed, StatusRejected, StatusCancelled, StatusExpired, StatusRescheduled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled, StatusCompleted, StatusNoShow},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

// CanTransition returns true if the status transition from -> to is allowed
func CanTransition(from, to ReservationStatus) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CancellableStatuses returns every status with an allowed transition
// to cancelled, derived from the transition table
func CancellableStatuses() []ReservationStatus {
	statuses := make([]ReservationStatus, 0, len(statusTransitions))
	for from := range statusTransitions {
		if CanTransition(from, StatusCancelled) {
			statuses = append(statuses, from)
		}
	}
	return statuses
}

// IsTerminal returns true if the status has no outgoing transitions
func (s ReservationStatus) IsTerminal() bool {
	return len(statusTransitions[s]) == 0
}

// IsValidStatus returns true for a known reservation status
func IsValidStatus(s ReservationStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted,
		StatusCancelled, StatusRejected, StatusExpired, StatusRescheduled, StatusNoShow:
		return true
	}
	return false
}

// BlocksCapacity returns true if the reservation counts against the
// business's simultaneous capacity
func (r *Reservation) BlocksCapacity() bool {
	switch r.Status {
	case StatusCancelled, StatusRejected, StatusExpired, StatusRescheduled, StatusNoShow:
		return false
	}
	return true
}

// CanBeCancelled returns true if the reservation can be cancelled
func (r *Reservation) CanBeCancelled() bool {
	return CanTransition(r.Status, StatusCancelled)
}

// IsPending returns true for a reservation awaiting confirmation
func (r *Reservation) IsPending() bool {
	return r.Status == StatusPending
}

// Window returns the reserved interval [StartAt, EndAt)
func (r *Reservation) Window() Interval {
	return Interval{Start: r.StartAt, End: r.EndAt}
}

// EffectiveWindow returns the interval blocked by the reservation,
// widened on both sides by its buffer
func (r *Reservation) EffectiveWindow() Interval {
	buffer := time.Duration(r.BufferMinutes) * time.Minute
	return Interval{
		Start: r.StartAt.Add(-buffer),
		End:   r.EndAt.Add(buffer),
	}
}

// ReservationsFilter фильтр для выборки броней бизнеса
type ReservationsFilter struct {
	BusinessID      int64      // Обязательный параметр
	From            *time.Time // Начало окна (опционально)
	To              *time.Time // Конец окна (опционально)
	Status          *ReservationStatus
	IncludeInactive bool // Включать ли брони, не занимающие capacity
}
