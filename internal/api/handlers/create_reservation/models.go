package create_reservation

import (
	"time"

	createReservation "github.com/lobba/scheduling-service/internal/usecase/create_reservation"
)

// CreateReservationRequest HTTP request model
type CreateReservationRequest struct {
	BusinessID    int64   `json:"businessId"`
	ServiceID     int64   `json:"serviceId"`
	StartAt       string  `json:"startAt"` // RFC3339
	Notes         *string `json:"notes,omitempty"`
	BufferMinutes *int    `json:"bufferMinutes,omitempty"`
}

// ReservationResponse HTTP response model
type ReservationResponse struct {
	ID            int64   `json:"id"`
	UserID        int64   `json:"userId"`
	BusinessID    int64   `json:"businessId"`
	ServiceID     int64   `json:"serviceId"`
	StartAt       string  `json:"startAt"`
	EndAt         string  `json:"endAt"`
	Status        string  `json:"status"`
	BufferMinutes int     `json:"bufferMinutes"`
	AutoConfirmed bool    `json:"autoConfirmed"`
	ServiceName   string  `json:"serviceName"`
	ServicePrice  float64 `json:"servicePrice"`
	Notes         *string `json:"notes,omitempty"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateReservationRequest) ToUseCaseRequest(userID int64) (*createReservation.Request, error) {
	startAt, err := time.Parse(time.RFC3339, r.StartAt)
	if err != nil {
		return nil, err
	}

	return &createReservation.Request{
		UserID:        userID,
		BusinessID:    r.BusinessID,
		ServiceID:     r.ServiceID,
		StartAt:       startAt,
		Notes:         r.Notes,
		BufferMinutes: r.BufferMinutes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createReservation.Response) *ReservationResponse {
	return &ReservationResponse{
		ID:            resp.ID,
		UserID:        resp.UserID,
		BusinessID:    resp.BusinessID,
		ServiceID:     resp.ServiceID,
		StartAt:       resp.StartAt.Format(time.RFC3339),
		EndAt:         resp.EndAt.Format(time.RFC3339),
		Status:        resp.Status,
		BufferMinutes: resp.BufferMinutes,
		AutoConfirmed: resp.AutoConfirmed,
		ServiceName:   resp.ServiceName,
		ServicePrice:  resp.ServicePrice,
		Notes:         resp.Notes,
		CreatedAt:     resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     resp.UpdatedAt.Format(time.RFC3339),
	}
}
