package reservations

import (
	"context"
	"errors"
	"fmt"

	"github.com/lobba/scheduling-service/internal/domain"
	reservationRepo "github.com/lobba/scheduling-service/internal/infra/storage/reservation"
	"github.com/lobba/scheduling-service/internal/service/reservations/models"
)

// Service сервис для чтения и отмены записей
type Service struct {
	reservationRepo ReservationRepository
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(reservationRepo ReservationRepository, logger Logger) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		logger:          logger,
	}
}

// GetByID получает запись по ID
// Пользователь видит только собственные записи
func (s *Service) GetByID(ctx context.Context, id, userID int64) (*models.ReservationResponse, error) {
	s.logger.Info("GetByID: fetching reservation id=%d for user=%d", id, userID)

	reservation, err := s.getOwned(ctx, "GetByID", id, userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("GetByID: successfully fetched reservation id=%d", id)
	return models.FromDomainReservation(reservation), nil
}

// Cancel отменяет запись пользователя
// Отмена допустима только из статусов pending и confirmed
func (s *Service) Cancel(ctx context.Context, id, userID int64, reason string) (*models.ReservationResponse, error) {
	s.logger.Info("Cancel: cancelling reservation id=%d for user=%d", id, userID)

	if len(reason) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: reason must not exceed %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	reservation, err := s.getOwned(ctx, "Cancel", id, userID)
	if err != nil {
		return nil, err
	}

	if !reservation.CanBeCancelled() {
		s.logger.Warn("Cancel: reservation id=%d cannot be cancelled from status=%s", id, reservation.Status)
		return nil, ErrCannotCancel
	}

	if err := s.reservationRepo.Cancel(ctx, id, reason); err != nil {
		if errors.Is(err, reservationRepo.ErrInvalidTransition) {
			s.logger.Warn("Cancel: reservation id=%d already left cancellable state", id)
			return nil, ErrCannotCancel
		}
		s.logger.Error("Cancel: repository error for reservation id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	cancelled, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Cancel: failed to re-fetch reservation id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Cancel - failed to re-fetch reservation: %v", ErrInternal, err)
	}

	s.logger.Info("Cancel: successfully cancelled reservation id=%d", id)
	return models.FromDomainReservation(cancelled), nil
}

// GetBusinessReservations получает записи бизнеса с фильтрацией
// по окну, статусу и включению неактивных записей
func (s *Service) GetBusinessReservations(ctx context.Context, req *models.GetBusinessReservationsRequest) (*models.ReservationListResponse, error) {
	s.logger.Info("GetBusinessReservations: fetching reservations for business=%d", req.BusinessID)

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetBusinessReservations: invalid filter for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	reservations, err := s.reservationRepo.GetByBusinessWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetBusinessReservations: repository error for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: GetBusinessReservations - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetBusinessReservations: fetched %d reservations for business=%d", len(reservations), req.BusinessID)
	return models.FromDomainReservationList(reservations), nil
}

// getOwned загружает запись и проверяет принадлежность пользователю
func (s *Service) getOwned(ctx context.Context, method string, id, userID int64) (*domain.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("%s: reservation id=%d not found", method, id)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("%s: repository error for reservation id=%d: %v", method, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, method, err)
	}

	if reservation.UserID != userID {
		s.logger.Warn("%s: access denied for user=%d to reservation id=%d", method, userID, id)
		return nil, ErrAccessDenied
	}

	return reservation, nil
}
