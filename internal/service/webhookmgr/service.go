package webhookmgr

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/lobba/scheduling-service/internal/domain"
	"github.com/lobba/scheduling-service/internal/infra/notify"
	integrationRepo "github.com/lobba/scheduling-service/internal/infra/storage/integration"
	"github.com/lobba/scheduling-service/internal/integrations/googlecalendar"
)

// resourceStateSync состояние первичного handshake-уведомления провайдера
const resourceStateSync = "sync"

// Service управляет жизненным циклом webhook-каналов внешнего календаря
type Service struct {
	integrationRepo IntegrationRepository
	provider        IntegrationProvider
	calendarClient  CalendarClient
	syncer          Syncer
	notifier        Notifier
	timeProvider    TimeProvider
	logger          Logger

	// Адрес приема push-уведомлений, используется при плановом продлении
	callbackURL string
}

// NewService создает новый экземпляр менеджера webhook-каналов
func NewService(
	integrationRepo IntegrationRepository,
	provider IntegrationProvider,
	calendarClient CalendarClient,
	syncer Syncer,
	notifier Notifier,
	callbackURL string,
	logger Logger,
) *Service {
	return &Service{
		integrationRepo: integrationRepo,
		provider:        provider,
		calendarClient:  calendarClient,
		syncer:          syncer,
		notifier:        notifier,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
		callbackURL:     callbackURL,
	}
}

// SetupWebhook регистрирует push-канал для бизнеса
func (s *Service) SetupWebhook(ctx context.Context, businessID int64, callbackURL string) (*ChannelInfo, error) {
	s.logger.Info("SetupWebhook: business id=%d", businessID)

	if callbackURL == "" {
		callbackURL = s.callbackURL
	}

	integration, err := s.provider.ValidIntegration(ctx, businessID)
	if err != nil {
		return nil, err
	}

	info, err := s.registerChannel(ctx, integration, callbackURL)
	if err != nil {
		s.logger.Error("SetupWebhook: failed to register channel for business id=%d: %v", businessID, err)
		return nil, err
	}

	s.logger.Info("SetupWebhook: business id=%d channel=%s expires=%s",
		businessID, info.ChannelID, info.ExpiresAt.Format(domain.TimeFormat))

	return info, nil
}

// RunSweep выполняет плановый обход каналов: продление и чистку
// Сбой одного бизнеса не прерывает обход остальных
func (s *Service) RunSweep(ctx context.Context) (*SweepResult, error) {
	now := s.timeProvider.Now()
	s.logger.Info("RunSweep: started at %s", now.Format(domain.TimeFormat))

	integrations, err := s.integrationRepo.ListWithChannels(ctx)
	if err != nil {
		s.logger.Error("RunSweep: failed to list channels: %v", err)
		return nil, fmt.Errorf("%w: failed to list channels: %v", ErrInternal, err)
	}

	plan := planSweep(integrations, now)
	result := &SweepResult{}

	for _, integration := range plan.cleanup {
		if err := s.cleanupChannel(ctx, integration); err != nil {
			s.logger.Error("RunSweep: cleanup failed for business id=%d: %v", integration.BusinessID, err)
			result.Failed++
			continue
		}
		result.Cleaned++
	}

	for _, integration := range plan.renew {
		if err := s.renewChannel(ctx, integration); err != nil {
			s.logger.Error("RunSweep: renewal failed for business id=%d: %v", integration.BusinessID, err)
			s.notifier.Emit(ctx, notify.Event{
				Type:       notify.EventWebhookRenewalFailed,
				BusinessID: integration.BusinessID,
				Message:    err.Error(),
			})
			result.Failed++
			continue
		}
		result.Renewed++
	}

	s.logger.Info("RunSweep: finished, renewed=%d cleaned=%d failed=%d",
		result.Renewed, result.Cleaned, result.Failed)

	return result, nil
}

// HandleNotification обрабатывает push-уведомление провайдера
// Handshake-уведомления подтверждаются без синхронизации; ошибки
// inbound-синхронизации логируются, но уведомление все равно подтверждается,
// чтобы провайдер не зациклился на ретраях
func (s *Service) HandleNotification(ctx context.Context, channelID, resourceID, resourceState string) error {
	s.logger.Info("HandleNotification: channel=%s state=%s", channelID, resourceState)

	if resourceState == resourceStateSync {
		return nil
	}

	integration, err := s.integrationRepo.GetByChannel(ctx, channelID, resourceID)
	if err != nil {
		if errors.Is(err, integrationRepo.ErrIntegrationNotFound) {
			s.logger.Warn("HandleNotification: unknown channel=%s resource=%s", channelID, resourceID)
			return ErrChannelNotFound
		}
		s.logger.Error("HandleNotification: repository error for channel=%s: %v", channelID, err)
		return fmt.Errorf("%w: failed to resolve channel: %v", ErrInternal, err)
	}

	if _, err := s.syncer.SyncInbound(ctx, integration.BusinessID); err != nil {
		s.logger.Warn("HandleNotification: inbound sync failed for business id=%d: %v",
			integration.BusinessID, err)
	}

	return nil
}

// renewChannel регистрирует новый канал взамен истекающего
// Провайдер неявно инвалидирует старый канал, остановка старого best-effort
func (s *Service) renewChannel(ctx context.Context, stale *domain.CalendarIntegration) error {
	integration, err := s.provider.ValidIntegration(ctx, stale.BusinessID)
	if err != nil {
		return err
	}

	if integration.HasChannel() {
		if err := s.calendarClient.StopChannel(ctx, integration.AccessToken, *integration.ChannelID, *integration.ResourceID); err != nil {
			s.logger.Warn("renewChannel: failed to stop old channel for business id=%d: %v",
				integration.BusinessID, err)
		}
	}

	info, err := s.registerChannel(ctx, integration, s.callbackURL)
	if err != nil {
		return err
	}

	s.logger.Info("renewChannel: business id=%d renewed, channel=%s expires=%s",
		integration.BusinessID, info.ChannelID, info.ExpiresAt.Format(domain.TimeFormat))

	return nil
}

// cleanupChannel вычищает давно истекший канал и выключает синхронизацию
func (s *Service) cleanupChannel(ctx context.Context, integration *domain.CalendarIntegration) error {
	if err := s.integrationRepo.ClearChannel(ctx, integration.BusinessID, true); err != nil {
		return fmt.Errorf("%w: failed to clear channel: %v", ErrInternal, err)
	}

	s.logger.Info("cleanupChannel: business id=%d channel cleared, sync disabled", integration.BusinessID)

	s.notifier.Emit(ctx, notify.Event{
		Type:       notify.EventWebhookChannelClean,
		BusinessID: integration.BusinessID,
		Message:    "webhook channel expired and was cleaned up, calendar sync disabled",
	})

	return nil
}

// registerChannel регистрирует канал у провайдера и сохраняет его поля
func (s *Service) registerChannel(ctx context.Context, integration *domain.CalendarIntegration, callbackURL string) (*ChannelInfo, error) {
	watch := &googlecalendar.WatchRequest{
		ID:      uuid.NewString(),
		Type:    "web_hook",
		Address: callbackURL,
		Token:   uuid.NewString(),
	}

	resp, err := s.calendarClient.WatchEvents(ctx, integration.AccessToken, integration.CalendarID, watch)
	if err != nil {
		return nil, fmt.Errorf("%w: watch request failed: %v", ErrUpstream, err)
	}

	expiresAt := resp.ExpiresAt()
	if err := s.integrationRepo.SetChannel(ctx, integration.BusinessID, resp.ID, resp.ResourceID, expiresAt); err != nil {
		return nil, fmt.Errorf("%w: failed to persist channel: %v", ErrInternal, err)
	}

	return &ChannelInfo{
		ChannelID:  resp.ID,
		ResourceID: resp.ResourceID,
		ExpiresAt:  expiresAt,
	}, nil
}
