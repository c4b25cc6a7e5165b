package get_day_availability

import (
	"time"

	"github.com/lobba/scheduling-service/internal/domain"
	getDayAvailability "github.com/lobba/scheduling-service/internal/usecase/get_day_availability"
)

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	Date        string `json:"date"`
	BusinessID  int64  `json:"businessId"`
	ServiceID   int64  `json:"serviceId"`
	MaxCapacity int    `json:"maxCapacity"`
	Slots       []Slot `json:"slots"`
}

// Slot слот дневной сетки в HTTP ответе
type Slot struct {
	StartAt        string `json:"startAt"`
	EndAt          string `json:"endAt"`
	Available      bool   `json:"available"`
	CurrentCount   int    `json:"currentCount"`
	MaxCapacity    int    `json:"maxCapacity"`
	SlotsRemaining int    `json:"slotsRemaining"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getDayAvailability.Response) *AvailabilityResponse {
	slots := make([]Slot, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		slots = append(slots, Slot{
			StartAt:        s.StartAt.Format(time.RFC3339),
			EndAt:          s.EndAt.Format(time.RFC3339),
			Available:      s.Available,
			CurrentCount:   s.CurrentCount,
			MaxCapacity:    s.MaxCapacity,
			SlotsRemaining: s.SlotsRemaining,
		})
	}

	return &AvailabilityResponse{
		Date:        resp.Date.Format(domain.DateFormat),
		BusinessID:  resp.BusinessID,
		ServiceID:   resp.ServiceID,
		MaxCapacity: resp.MaxCapacity,
		Slots:       slots,
	}
}
