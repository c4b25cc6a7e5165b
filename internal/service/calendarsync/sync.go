package calendarsync

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/lobba/scheduling-service/internal/domain"
	"github.com/lobba/scheduling-service/internal/integrations/googlecalendar"
	"github.com/lobba/scheduling-service/internal/integrations/settingsservice"
	"github.com/lobba/scheduling-service/pkg/ptr"
)

// SyncOutbound пушит будущие pending/confirmed записи во внешний календарь
// и удаляет события отменённых записей
func (s *Service) SyncOutbound(ctx context.Context, businessID int64) (*SyncResult, error) {
	unlock := s.lockBusiness(businessID)
	defer unlock()

	return s.syncOutbound(ctx, businessID)
}

// SyncInbound подтягивает внешние события как блокировки доступности
func (s *Service) SyncInbound(ctx context.Context, businessID int64) (*SyncResult, error) {
	unlock := s.lockBusiness(businessID)
	defer unlock()

	return s.syncInbound(ctx, businessID)
}

// FullSync выполняет outbound и inbound синхронизацию под одним мьютексом
func (s *Service) FullSync(ctx context.Context, businessID int64) (*SyncResult, error) {
	unlock := s.lockBusiness(businessID)
	defer unlock()

	s.logger.Info("FullSync: business id=%d", businessID)

	result, err := s.syncOutbound(ctx, businessID)
	if err != nil {
		return nil, err
	}

	inbound, err := s.syncInbound(ctx, businessID)
	if err != nil {
		return nil, err
	}

	result.merge(inbound)
	result.Timestamp = s.timeProvider.Now().UTC()

	s.logger.Info("FullSync: business id=%d pushed=%d pulled=%d errors=%d",
		businessID, result.ReservationsPushed, result.EventsPulled, len(result.Errors))

	return result, nil
}

// syncOutbound тело outbound-синхронизации, вызывается под мьютексом бизнеса
// Повторный запуск идемпотентен: записи с заполненным external_event_id
// исключаются уже на стороне хранилища
func (s *Service) syncOutbound(ctx context.Context, businessID int64) (*SyncResult, error) {
	s.logger.Info("syncOutbound: business id=%d", businessID)

	integration, err := s.validIntegration(ctx, businessID, true)
	if err != nil {
		return nil, err
	}

	now := s.timeProvider.Now()

	reservations, err := s.reservationRepo.GetPendingOutbound(ctx, businessID, now)
	if err != nil {
		s.logger.Error("syncOutbound: failed to get reservations for business id=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: failed to get reservations: %v", ErrInternal, err)
	}

	result := &SyncResult{Timestamp: now.UTC()}

	for _, reservation := range reservations {
		event := buildOutboundEvent(reservation)

		created, err := s.calendarClient.InsertEvent(ctx, integration.AccessToken, integration.CalendarID, event)
		if err != nil {
			s.logger.Warn("syncOutbound: failed to push reservation id=%d: %v", reservation.ID, err)
			result.Errors = append(result.Errors,
				fmt.Sprintf("reservation %d: insert failed: %v", reservation.ID, err))
			continue
		}

		if err := s.reservationRepo.SetExternalEventID(ctx, reservation.ID, created.ID); err != nil {
			s.logger.Error("syncOutbound: failed to persist event id for reservation id=%d: %v", reservation.ID, err)
			result.Errors = append(result.Errors,
				fmt.Sprintf("reservation %d: failed to persist event id: %v", reservation.ID, err))
			continue
		}

		result.ReservationsPushed++
	}

	s.removeCancelledEvents(ctx, businessID, integration, result)

	s.logger.Info("syncOutbound: business id=%d pushed %d of %d reservations, removed %d events",
		businessID, result.ReservationsPushed, len(reservations), result.EventsRemoved)

	return result, nil
}

// removeCancelledEvents удаляет из внешнего календаря события отменённых записей
// Уже удалённое на стороне провайдера событие считается успехом,
// ошибки по отдельным записям собираются и не прерывают пакет
func (s *Service) removeCancelledEvents(ctx context.Context, businessID int64, integration *domain.CalendarIntegration, result *SyncResult) {
	cancelled, err := s.reservationRepo.GetCancelledWithEvents(ctx, businessID)
	if err != nil {
		s.logger.Error("removeCancelledEvents: failed to get reservations for business id=%d: %v", businessID, err)
		result.Errors = append(result.Errors, fmt.Sprintf("failed to get cancelled reservations: %v", err))
		return
	}

	for _, reservation := range cancelled {
		eventID := *reservation.ExternalEventID

		err := s.calendarClient.DeleteEvent(ctx, integration.AccessToken, integration.CalendarID, eventID)
		if err != nil && !errors.Is(err, googlecalendar.ErrNotFound) {
			s.logger.Warn("removeCancelledEvents: failed to delete event for reservation id=%d: %v", reservation.ID, err)
			result.Errors = append(result.Errors,
				fmt.Sprintf("reservation %d: delete failed: %v", reservation.ID, err))
			continue
		}

		if err := s.reservationRepo.ClearExternalEventID(ctx, reservation.ID); err != nil {
			s.logger.Error("removeCancelledEvents: failed to clear event id for reservation id=%d: %v", reservation.ID, err)
			result.Errors = append(result.Errors,
				fmt.Sprintf("reservation %d: failed to clear event id: %v", reservation.ID, err))
			continue
		}

		result.EventsRemoved++
	}
}

// syncInbound тело inbound-синхронизации, вызывается под мьютексом бизнеса
// События с LOBBA-маркером пропускаются: они родились из наших же записей,
// и повторный импорт создал бы петлю синхронизации
func (s *Service) syncInbound(ctx context.Context, businessID int64) (*SyncResult, error) {
	s.logger.Info("syncInbound: business id=%d", businessID)

	integration, err := s.validIntegration(ctx, businessID, true)
	if err != nil {
		return nil, err
	}

	now := s.timeProvider.Now()
	from := now
	to := now.AddDate(0, domain.InboundSyncWindowMonths, 0)

	events, err := s.calendarClient.ListEvents(ctx, integration.AccessToken, integration.CalendarID, from, to)
	if err != nil {
		s.logger.Error("syncInbound: failed to list events for business id=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: failed to list events: %v", ErrUpstream, err)
	}

	loc := s.businessLocation(ctx, businessID)
	result := &SyncResult{Timestamp: now.UTC()}

	for _, event := range events {
		if event.ReservationMarker() != "" {
			continue
		}
		if event.IsCancelled() {
			continue
		}

		startAt, err := event.StartTime(loc)
		if err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("event %s: invalid start time: %v", event.ID, err))
			continue
		}
		endAt, err := event.EndTime(loc)
		if err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("event %s: invalid end time: %v", event.ID, err))
			continue
		}

		title := event.Summary
		if title == "" {
			title = "External calendar event"
		}

		block := &domain.AvailabilityBlock{
			BusinessID:      businessID,
			StartAt:         startAt.UTC(),
			EndAt:           endAt.UTC(),
			Title:           title,
			Origin:          domain.OriginExternalSync,
			ExternalEventID: ptr.Ptr(event.ID),
			Active:          true,
		}

		if _, err := s.blockRepo.UpsertExternal(ctx, block); err != nil {
			s.logger.Warn("syncInbound: failed to upsert block for event %s: %v", event.ID, err)
			result.Errors = append(result.Errors,
				fmt.Sprintf("event %s: upsert failed: %v", event.ID, err))
			continue
		}

		result.EventsPulled++
	}

	s.logger.Info("syncInbound: business id=%d pulled %d of %d events",
		businessID, result.EventsPulled, len(events))

	return result, nil
}

// businessLocation таймзона бизнеса для разбора all-day событий
func (s *Service) businessLocation(ctx context.Context, businessID int64) *time.Location {
	business, err := s.settingsClient.GetBusiness(ctx, businessID)
	if err != nil {
		if !errors.Is(err, settingsservice.ErrBusinessNotFound) {
			s.logger.Warn("businessLocation: failed to get business id=%d, using UTC: %v", businessID, err)
		}
		return time.UTC
	}

	loc, err := time.LoadLocation(business.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// buildOutboundEvent собирает внешнее событие из записи
// Приватный маркер несет ID записи и защищает от петель при inbound-синхронизации
func buildOutboundEvent(reservation *domain.Reservation) *googlecalendar.Event {
	return &googlecalendar.Event{
		Summary:     fmt.Sprintf("[LOBBA] %s", reservation.ServiceName),
		Description: fmt.Sprintf("LOBBA reservation #%d", reservation.ID),
		Start:       &googlecalendar.EventDateTime{DateTime: reservation.StartAt.UTC().Format(time.RFC3339)},
		End:         &googlecalendar.EventDateTime{DateTime: reservation.EndAt.UTC().Format(time.RFC3339)},
		ExtendedProperties: &googlecalendar.ExtendedProperties{
			Private: map[string]string{
				domain.EventMarkerKey: strconv.FormatInt(reservation.ID, 10),
			},
		},
	}
}
