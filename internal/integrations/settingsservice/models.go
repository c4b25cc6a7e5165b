package settingsservice

// DaySchedule расписание работы бизнеса на один день недели
type DaySchedule struct {
	IsOpen    bool    `json:"is_open"`
	OpenTime  *string `json:"open_time,omitempty"`  // "09:00"
	CloseTime *string `json:"close_time,omitempty"` // "18:00"
}

// WeeklyHours недельное расписание работы бизнеса
type WeeklyHours struct {
	Monday    DaySchedule `json:"monday"`
	Tuesday   DaySchedule `json:"tuesday"`
	Wednesday DaySchedule `json:"wednesday"`
	Thursday  DaySchedule `json:"thursday"`
	Friday    DaySchedule `json:"friday"`
	Saturday  DaySchedule `json:"saturday"`
	Sunday    DaySchedule `json:"sunday"`
}

// Business профиль бизнеса из Settings service
type Business struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Timezone string `json:"timezone"` // IANA, например "Europe/Madrid"

	WorkingHours WeeklyHours `json:"working_hours"`

	CapacityEnabled      bool `json:"capacity_enabled"`
	SimultaneousCapacity int  `json:"simultaneous_capacity"`
	DefaultBufferMinutes int  `json:"default_buffer_minutes"`
}

// Service услуга бизнеса
type Service struct {
	ID              int64    `json:"id"`
	BusinessID      int64    `json:"business_id"`
	Name            string   `json:"name"`
	DurationMinutes int      `json:"duration_minutes"`
	Price           *float64 `json:"price,omitempty"`
}

// AutoConfirmSettings политика автоподтверждения бизнеса
type AutoConfirmSettings struct {
	Enabled                   bool    `json:"enabled"`
	MinAdvanceHours           int     `json:"min_advance_hours"`
	RequireManualFirstBooking bool    `json:"require_manual_first_booking"`
	ManualApprovalServiceIDs  []int64 `json:"manual_approval_service_ids"`
}

// RequiresManualApproval проверяет, входит ли услуга в ручной список
func (s *AutoConfirmSettings) RequiresManualApproval(serviceID int64) bool {
	for _, id := range s.ManualApprovalServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}

// ErrorResponse модель ошибки от Settings service
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
