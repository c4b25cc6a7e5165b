package autoconfirm

// Имена проверок конвейера в порядке выполнения
// Порядок кодирует бизнес-приоритет и менять его нельзя
const (
	CheckEnabled          = "auto_confirm_enabled"
	CheckLeadTime         = "lead_time"
	CheckFirstBooking     = "first_booking_policy"
	CheckServiceApproval  = "service_approval_policy"
	CheckNoShowRate       = "no_show_rate"
	CheckCompletedHistory = "completed_history"
	CheckDailyLimit       = "daily_limit"
	CheckAvailability     = "availability"
	CheckCalendarHealth   = "calendar_health"
)

// CheckOrder порядок выполнения проверок
var CheckOrder = []string{
	CheckEnabled,
	CheckLeadTime,
	CheckFirstBooking,
	CheckServiceApproval,
	CheckNoShowRate,
	CheckCompletedHistory,
	CheckDailyLimit,
	CheckAvailability,
	CheckCalendarHealth,
}

// Decision результат оценки конвейера
// Checks содержит все девять проверок: пройденные true, упавшая и
// не дошедшие до выполнения false
type Decision struct {
	ShouldAutoConfirm bool
	Reason            string
	Checks            map[string]bool
}

// ApplyResult результат применения автоподтверждения
type ApplyResult struct {
	Applied bool
	Reason  string
	Checks  map[string]bool
}

// newChecks создает трассу со всеми проверками в состоянии "не выполнена"
func newChecks() map[string]bool {
	checks := make(map[string]bool, len(CheckOrder))
	for _, name := range CheckOrder {
		checks[name] = false
	}
	return checks
}
