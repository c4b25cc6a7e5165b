package evaluate_autoconfirm

import "github.com/lobba/scheduling-service/internal/service/autoconfirm"

// DecisionResponse HTTP response model
type DecisionResponse struct {
	CanAutoConfirm bool            `json:"canAutoConfirm"`
	Reason         string          `json:"reason"`
	Checks         map[string]bool `json:"checks"`
}

// FromDecision конвертирует решение движка в HTTP response
func FromDecision(d *autoconfirm.Decision) *DecisionResponse {
	return &DecisionResponse{
		CanAutoConfirm: d.ShouldAutoConfirm,
		Reason:         d.Reason,
		Checks:         d.Checks,
	}
}
