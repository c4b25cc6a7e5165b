package autoconfirm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lobba/scheduling-service/internal/domain"
	"github.com/lobba/scheduling-service/internal/infra/notify"
	reservationRepo "github.com/lobba/scheduling-service/internal/infra/storage/reservation"
	"github.com/lobba/scheduling-service/internal/integrations/settingsservice"
)

// Service движок автоподтверждения записей
// Девять упорядоченных проверок с коротким замыканием на первой упавшей
type Service struct {
	reservationRepo ReservationRepository
	settingsClient  SettingsServiceClient
	txManager       TransactionManager
	notifier        Notifier
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр движка автоподтверждения
func NewService(
	reservationRepo ReservationRepository,
	settingsClient SettingsServiceClient,
	txManager TransactionManager,
	notifier Notifier,
	logger Logger,
) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		settingsClient:  settingsClient,
		txManager:       txManager,
		notifier:        notifier,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Evaluate прогоняет конвейер проверок без изменения записи
// Внутренние ошибки оценки не возвращаются как error: запись должна
// спокойно остаться в pending, поэтому они превращаются в отказ с причиной
func (s *Service) Evaluate(ctx context.Context, reservationID int64) (*Decision, error) {
	s.logger.Info("Evaluate: reservation id=%d", reservationID)

	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("Evaluate: reservation id=%d not found", reservationID)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("Evaluate: failed to get reservation id=%d: %v", reservationID, err)
		return nil, fmt.Errorf("%w: Evaluate - failed to get reservation: %v", ErrInternal, err)
	}

	decision := s.runChecks(ctx, reservation)
	s.logger.Info("Evaluate: reservation id=%d decision=%v reason=%q",
		reservationID, decision.ShouldAutoConfirm, decision.Reason)

	return decision, nil
}

// Apply прогоняет конвейер и при положительном решении переводит запись
// в confirmed. Повторная оценка и перевод выполняются в сериализуемой
// транзакции, чтобы статус не изменился между оценкой и применением
func (s *Service) Apply(ctx context.Context, reservationID int64) (*ApplyResult, error) {
	s.logger.Info("Apply: reservation id=%d", reservationID)

	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("Apply: reservation id=%d not found", reservationID)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("Apply: failed to get reservation id=%d: %v", reservationID, err)
		return nil, fmt.Errorf("%w: Apply - failed to get reservation: %v", ErrInternal, err)
	}

	if !reservation.IsPending() {
		s.logger.Warn("Apply: reservation id=%d is not pending, status=%s", reservationID, reservation.Status)
		return nil, ErrNotPending
	}

	var result *ApplyResult

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Перечитываем запись внутри транзакции: статус мог измениться
		current, err := s.reservationRepo.GetByID(txCtx, reservationID)
		if err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("%w: Apply - failed to get reservation: %v", ErrInternal, err)
		}

		if !current.IsPending() {
			return ErrNotPending
		}

		decision := s.runChecks(txCtx, current)
		if !decision.ShouldAutoConfirm {
			result = &ApplyResult{Applied: false, Reason: decision.Reason, Checks: decision.Checks}
			return nil
		}

		if err := s.reservationRepo.ConfirmAuto(txCtx, reservationID); err != nil {
			if errors.Is(err, reservationRepo.ErrNotPending) {
				return ErrNotPending
			}
			return fmt.Errorf("%w: Apply - failed to confirm reservation: %v", ErrInternal, err)
		}

		result = &ApplyResult{Applied: true, Reason: decision.Reason, Checks: decision.Checks}
		return nil
	})
	if err != nil {
		s.logger.Error("Apply: transaction failed for reservation id=%d: %v", reservationID, err)
		return nil, err
	}

	if result.Applied {
		s.logger.Info("Apply: reservation id=%d auto-confirmed", reservationID)
		s.notifier.Emit(ctx, notify.Event{
			Type:          notify.EventReservationConfirmed,
			BusinessID:    reservation.BusinessID,
			ReservationID: &reservationID,
		})
	} else {
		s.logger.Info("Apply: reservation id=%d left pending: %s", reservationID, result.Reason)
	}

	return result, nil
}

// runChecks выполняет девять проверок по порядку
// Первая упавшая проверка останавливает конвейер: её причина становится
// причиной отказа, оставшиеся проверки остаются false в трассе
func (s *Service) runChecks(ctx context.Context, reservation *domain.Reservation) *Decision {
	checks := newChecks()

	settings, err := s.settingsClient.GetAutoConfirmSettings(ctx, reservation.BusinessID)
	if err != nil {
		s.logger.Error("runChecks: failed to get auto-confirm settings for business id=%d: %v",
			reservation.BusinessID, err)
		return &Decision{
			ShouldAutoConfirm: false,
			Reason:            fmt.Sprintf("failed to load auto-confirm settings: %v", err),
			Checks:            checks,
		}
	}

	now := s.timeProvider.Now()

	// 1. Фича включена для бизнеса
	if !settings.Enabled {
		return s.fail(checks, CheckEnabled, "auto-confirmation is disabled for this business")
	}
	checks[CheckEnabled] = true

	// 2. Запись сделана достаточно заранее
	leadTime := reservation.StartAt.Sub(now)
	minLead := time.Duration(settings.MinAdvanceHours) * time.Hour
	if leadTime < minLead {
		return s.fail(checks, CheckLeadTime,
			fmt.Sprintf("booking lead time is less than %d hours", settings.MinAdvanceHours))
	}
	checks[CheckLeadTime] = true

	// 3. Первая запись требует ручного подтверждения, если флаг установлен
	if settings.RequireManualFirstBooking {
		total, err := s.reservationRepo.CountByUser(ctx, reservation.UserID, reservation.BusinessID)
		if err != nil {
			return s.internalFail(checks, "failed to count user reservations", err)
		}
		// Новая запись уже сохранена и попадает в подсчет
		if total <= 1 {
			return s.fail(checks, CheckFirstBooking, "first booking requires manual approval")
		}
	}
	checks[CheckFirstBooking] = true

	// 4. Услуга не в списке ручного подтверждения
	if settings.RequiresManualApproval(reservation.ServiceID) {
		return s.fail(checks, CheckServiceApproval, "service requires manual approval")
	}
	checks[CheckServiceApproval] = true

	// 5. Доля неявок пользователя ниже порога
	// При нулевой истории доля считается нулевой
	noShows, err := s.reservationRepo.CountByUserAndStatus(ctx, reservation.UserID, reservation.BusinessID, domain.StatusNoShow)
	if err != nil {
		return s.internalFail(checks, "failed to count no-shows", err)
	}
	completed, err := s.reservationRepo.CountByUserAndStatus(ctx, reservation.UserID, reservation.BusinessID, domain.StatusCompleted)
	if err != nil {
		return s.internalFail(checks, "failed to count completed reservations", err)
	}

	noShowRate := 0.0
	if noShows+completed > 0 {
		noShowRate = float64(noShows) / float64(noShows+completed)
	}
	if noShowRate >= domain.MaxNoShowRate {
		return s.fail(checks, CheckNoShowRate,
			fmt.Sprintf("no-show rate %.0f%% exceeds the %.0f%% limit", noShowRate*100, domain.MaxNoShowRate*100))
	}
	checks[CheckNoShowRate] = true

	// 6. У пользователя есть хотя бы одна завершенная запись
	if completed < 1 {
		return s.fail(checks, CheckCompletedHistory, "no completed bookings")
	}
	checks[CheckCompletedHistory] = true

	// 7. Дневной лимит записей пользователя не исчерпан
	dayStart, dayEnd := s.dayWindow(ctx, reservation)
	sameDay, err := s.reservationRepo.CountSameDay(ctx, reservation.UserID, reservation.BusinessID, dayStart, dayEnd)
	if err != nil {
		return s.internalFail(checks, "failed to count same-day reservations", err)
	}
	// Новая запись уже учтена в подсчете
	if sameDay > domain.MaxSameDayReservations {
		return s.fail(checks, CheckDailyLimit,
			fmt.Sprintf("same-day booking limit of %d reached", domain.MaxSameDayReservations))
	}
	checks[CheckDailyLimit] = true

	// 8. Повторная проверка доступности
	// Слот уже проверен при создании записи, проверка всегда проходит
	checks[CheckAvailability] = true

	// 9. Здоровье календарной синхронизации
	// Точка расширения, всегда проходит
	checks[CheckCalendarHealth] = true

	return &Decision{
		ShouldAutoConfirm: true,
		Reason:            "all checks passed",
		Checks:            checks,
	}
}

// dayWindow вычисляет границы суток записи в таймзоне бизнеса
// При недоступности настроек бизнеса сутки считаются в UTC
func (s *Service) dayWindow(ctx context.Context, reservation *domain.Reservation) (time.Time, time.Time) {
	loc := time.UTC

	business, err := s.settingsClient.GetBusiness(ctx, reservation.BusinessID)
	if err == nil {
		if parsed, err := time.LoadLocation(business.Timezone); err == nil {
			loc = parsed
		}
	} else if !errors.Is(err, settingsservice.ErrBusinessNotFound) {
		s.logger.Warn("dayWindow: failed to get business id=%d, using UTC: %v", reservation.BusinessID, err)
	}

	local := reservation.StartAt.In(loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return dayStart, dayStart.AddDate(0, 0, 1)
}

func (s *Service) fail(checks map[string]bool, checkName, reason string) *Decision {
	s.logger.Info("runChecks: check %s failed: %s", checkName, reason)
	return &Decision{ShouldAutoConfirm: false, Reason: reason, Checks: checks}
}

func (s *Service) internalFail(checks map[string]bool, msg string, err error) *Decision {
	s.logger.Error("runChecks: %s: %v", msg, err)
	return &Decision{
		ShouldAutoConfirm: false,
		Reason:            fmt.Sprintf("%s: %v", msg, err),
		Checks:            checks,
	}
}
