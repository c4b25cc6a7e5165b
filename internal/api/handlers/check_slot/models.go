package check_slot

import (
	"time"

	checkSlot "github.com/lobba/scheduling-service/internal/usecase/check_slot"
)

// CheckSlotRequest HTTP request model
type CheckSlotRequest struct {
	StartAt string `json:"startAt"` // RFC3339
	EndAt   string `json:"endAt"`   // RFC3339
}

// CheckSlotResponse HTTP response model
type CheckSlotResponse struct {
	Available      bool `json:"available"`
	CurrentCount   int  `json:"currentCount"`
	MaxCapacity    int  `json:"maxCapacity"`
	SlotsRemaining int  `json:"slotsRemaining"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CheckSlotRequest) ToUseCaseRequest(businessID int64) (*checkSlot.Request, error) {
	startAt, err := time.Parse(time.RFC3339, r.StartAt)
	if err != nil {
		return nil, err
	}

	endAt, err := time.Parse(time.RFC3339, r.EndAt)
	if err != nil {
		return nil, err
	}

	return &checkSlot.Request{
		BusinessID: businessID,
		StartAt:    startAt,
		EndAt:      endAt,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *checkSlot.Response) *CheckSlotResponse {
	return &CheckSlotResponse{
		Available:      resp.Available,
		CurrentCount:   resp.CurrentCount,
		MaxCapacity:    resp.MaxCapacity,
		SlotsRemaining: resp.SlotsRemaining,
	}
}
