package calendarsync

import "time"

// SyncResult итог синхронизации
// Пер-событийные ошибки собираются, не прерывая остальной пакет
type SyncResult struct {
	ReservationsPushed int       `json:"reservations_pushed"`
	EventsRemoved      int       `json:"events_removed"`
	EventsPulled       int       `json:"events_pulled"`
	Errors             []string  `json:"errors,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
}

// merge складывает результаты двух направлений синхронизации
func (r *SyncResult) merge(other *SyncResult) {
	r.ReservationsPushed += other.ReservationsPushed
	r.EventsRemoved += other.EventsRemoved
	r.EventsPulled += other.EventsPulled
	r.Errors = append(r.Errors, other.Errors...)
}

// CalendarInfo календарь пользователя для внешнего слоя
type CalendarInfo struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
	Primary bool   `json:"primary"`
}
