package apply_autoconfirm

import "github.com/lobba/scheduling-service/internal/service/autoconfirm"

// ApplyResponse HTTP response model
type ApplyResponse struct {
	Applied bool            `json:"applied"`
	Reason  string          `json:"reason"`
	Checks  map[string]bool `json:"checks"`
}

// FromApplyResult конвертирует результат применения в HTTP response
func FromApplyResult(r *autoconfirm.ApplyResult) *ApplyResponse {
	return &ApplyResponse{
		Applied: r.Applied,
		Reason:  r.Reason,
		Checks:  r.Checks,
	}
}
