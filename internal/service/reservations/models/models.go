package models

import (
	"fmt"
	"time"

	"github.com/lobba/scheduling-service/internal/domain"
)

// ReservationResponse модель записи для внешнего слоя
type ReservationResponse struct {
	ID                 int64      `json:"id"`
	BusinessID         int64      `json:"business_id"`
	ServiceID          int64      `json:"service_id"`
	UserID             int64      `json:"user_id"`
	StartAt            time.Time  `json:"start_at"`
	EndAt              time.Time  `json:"end_at"`
	Status             string     `json:"status"`
	BufferMinutes      int        `json:"buffer_minutes"`
	AutoConfirmed      bool       `json:"auto_confirmed"`
	ServiceName        string     `json:"service_name"`
	ServicePrice       float64    `json:"service_price"`
	Notes              *string    `json:"notes,omitempty"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// CancelReservationRequest запрос на отмену записи
type CancelReservationRequest struct {
	Reason string `json:"reason"`
}

// GetBusinessReservationsRequest запрос списка записей бизнеса
type GetBusinessReservationsRequest struct {
	BusinessID      int64
	From            *time.Time
	To              *time.Time
	Status          *string
	IncludeInactive bool
}

// ReservationListResponse список записей
type ReservationListResponse struct {
	Reservations []*ReservationResponse `json:"reservations"`
	Total        int                    `json:"total"`
}

// ToDomainFilter конвертирует запрос в доменный фильтр
func (r *GetBusinessReservationsRequest) ToDomainFilter() (domain.ReservationsFilter, error) {
	filter := domain.ReservationsFilter{
		BusinessID:      r.BusinessID,
		From:            r.From,
		To:              r.To,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		if !domain.IsValidStatus(domain.ReservationStatus(*r.Status)) {
			return domain.ReservationsFilter{}, fmt.Errorf("unknown status %q", *r.Status)
		}
		status := domain.ReservationStatus(*r.Status)
		filter.Status = &status
	}

	return filter, nil
}

// FromDomainReservationList конвертирует список доменных моделей
func FromDomainReservationList(reservations []*domain.Reservation) *ReservationListResponse {
	items := make([]*ReservationResponse, 0, len(reservations))
	for _, r := range reservations {
		items = append(items, FromDomainReservation(r))
	}
	return &ReservationListResponse{Reservations: items, Total: len(items)}
}

// FromDomainReservation конвертирует доменную модель в response
func FromDomainReservation(r *domain.Reservation) *ReservationResponse {
	return &ReservationResponse{
		ID:                 r.ID,
		BusinessID:         r.BusinessID,
		ServiceID:          r.ServiceID,
		UserID:             r.UserID,
		StartAt:            r.StartAt,
		EndAt:              r.EndAt,
		Status:             string(r.Status),
		BufferMinutes:      r.BufferMinutes,
		AutoConfirmed:      r.AutoConfirmed,
		ServiceName:        r.ServiceName,
		ServicePrice:       r.ServicePrice,
		Notes:              r.Notes,
		CancellationReason: r.CancellationReason,
		CancelledAt:        r.CancelledAt,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}
