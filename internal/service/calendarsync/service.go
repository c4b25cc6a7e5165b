package calendarsync

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/lobba/scheduling-service/internal/domain"
	integrationRepo "github.com/lobba/scheduling-service/internal/infra/storage/integration"
	"github.com/lobba/scheduling-service/internal/integrations/googlecalendar"
)

// Service двунаправленная синхронизация с внешним календарем
type Service struct {
	integrationRepo IntegrationRepository
	reservationRepo ReservationRepository
	blockRepo       BlockRepository
	calendarClient  CalendarClient
	settingsClient  SettingsServiceClient
	timeProvider    TimeProvider
	logger          Logger

	// Синхронизация одного бизнеса не должна выполняться конкурентно
	// сама с собой, иначе outbound может продублировать события
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewService создает новый экземпляр сервиса синхронизации
func NewService(
	integrationRepo IntegrationRepository,
	reservationRepo ReservationRepository,
	blockRepo BlockRepository,
	calendarClient CalendarClient,
	settingsClient SettingsServiceClient,
	logger Logger,
) *Service {
	return &Service{
		integrationRepo: integrationRepo,
		reservationRepo: reservationRepo,
		blockRepo:       blockRepo,
		calendarClient:  calendarClient,
		settingsClient:  settingsClient,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
		locks:           make(map[int64]*sync.Mutex),
	}
}

// InitiateAuth строит URL страницы согласия провайдера
// ID бизнеса прокидывается через state и возвращается в callback
func (s *Service) InitiateAuth(businessID int64) string {
	return s.calendarClient.AuthCodeURL(strconv.FormatInt(businessID, 10))
}

// HandleAuthCallback обменивает authorization code на токены и сохраняет их
func (s *Service) HandleAuthCallback(ctx context.Context, businessID int64, code string) error {
	s.logger.Info("HandleAuthCallback: business id=%d", businessID)

	token, err := s.calendarClient.ExchangeCode(ctx, code)
	if err != nil {
		s.logger.Error("HandleAuthCallback: code exchange failed for business id=%d: %v", businessID, err)
		return fmt.Errorf("%w: code exchange failed: %v", ErrOAuth, err)
	}

	now := s.timeProvider.Now()
	if err := s.integrationRepo.UpsertTokens(ctx, businessID, token.AccessToken, token.RefreshToken, token.ExpiresAt(now)); err != nil {
		s.logger.Error("HandleAuthCallback: failed to persist tokens for business id=%d: %v", businessID, err)
		return fmt.Errorf("%w: failed to persist tokens: %v", ErrInternal, err)
	}

	s.logger.Info("HandleAuthCallback: tokens stored for business id=%d", businessID)
	return nil
}

// ListCalendars получает список календарей пользователя
// Доступно сразу после OAuth, до выбора основного календаря
func (s *Service) ListCalendars(ctx context.Context, businessID int64) ([]CalendarInfo, error) {
	s.logger.Info("ListCalendars: business id=%d", businessID)

	integration, err := s.validIntegration(ctx, businessID, false)
	if err != nil {
		return nil, err
	}

	calendars, err := s.calendarClient.ListCalendars(ctx, integration.AccessToken)
	if err != nil {
		s.logger.Error("ListCalendars: provider error for business id=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	result := make([]CalendarInfo, 0, len(calendars))
	for _, c := range calendars {
		result = append(result, CalendarInfo{ID: c.ID, Summary: c.Summary, Primary: c.Primary})
	}

	return result, nil
}

// SetPrimaryCalendar выбирает основной календарь и включает синхронизацию
func (s *Service) SetPrimaryCalendar(ctx context.Context, businessID int64, calendarID string) error {
	s.logger.Info("SetPrimaryCalendar: business id=%d calendar=%s", businessID, calendarID)

	if _, err := s.validIntegration(ctx, businessID, false); err != nil {
		return err
	}

	if err := s.integrationRepo.SetCalendar(ctx, businessID, calendarID); err != nil {
		s.logger.Error("SetPrimaryCalendar: failed to persist calendar for business id=%d: %v", businessID, err)
		return fmt.Errorf("%w: failed to persist calendar: %v", ErrInternal, err)
	}

	return nil
}

// ValidIntegration возвращает готовую к синхронизации привязку с живым токеном
// Истекший access token прозрачно обновляется и сохраняется перед возвратом
func (s *Service) ValidIntegration(ctx context.Context, businessID int64) (*domain.CalendarIntegration, error) {
	return s.validIntegration(ctx, businessID, true)
}

// validIntegration загружает привязку и гарантирует валидный access token
// requireCalendar=false используется шагами настройки до выбора календаря
func (s *Service) validIntegration(ctx context.Context, businessID int64, requireCalendar bool) (*domain.CalendarIntegration, error) {
	integration, err := s.integrationRepo.GetByBusinessID(ctx, businessID)
	if err != nil {
		if errors.Is(err, integrationRepo.ErrIntegrationNotFound) {
			s.logger.Warn("validIntegration: no integration for business id=%d", businessID)
			return nil, ErrNotConfigured
		}
		s.logger.Error("validIntegration: repository error for business id=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: failed to get integration: %v", ErrInternal, err)
	}

	if requireCalendar && !integration.SyncReady() {
		s.logger.Warn("validIntegration: integration for business id=%d is not sync-ready", businessID)
		return nil, ErrNotConfigured
	}

	now := s.timeProvider.Now()
	if !integration.TokenExpired(now) {
		return integration, nil
	}

	if integration.RefreshToken == "" {
		s.logger.Warn("validIntegration: expired token without refresh token for business id=%d", businessID)
		return nil, fmt.Errorf("%w: no refresh token stored", ErrOAuth)
	}

	token, err := s.calendarClient.RefreshToken(ctx, integration.RefreshToken)
	if err != nil {
		s.logger.Error("validIntegration: token refresh failed for business id=%d: %v", businessID, err)
		if errors.Is(err, googlecalendar.ErrOAuth) || errors.Is(err, googlecalendar.ErrUnauthorized) {
			return nil, fmt.Errorf("%w: token refresh rejected: %v", ErrOAuth, err)
		}
		return nil, fmt.Errorf("%w: token refresh failed: %v", ErrUpstream, err)
	}

	expiresAt := token.ExpiresAt(now)
	if err := s.integrationRepo.UpdateAccessToken(ctx, businessID, token.AccessToken, expiresAt); err != nil {
		s.logger.Error("validIntegration: failed to persist refreshed token for business id=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: failed to persist refreshed token: %v", ErrInternal, err)
	}

	integration.AccessToken = token.AccessToken
	integration.TokenExpiresAt = expiresAt

	s.logger.Info("validIntegration: refreshed access token for business id=%d", businessID)
	return integration, nil
}

// lockBusiness берет мьютекс синхронизации бизнеса
func (s *Service) lockBusiness(businessID int64) func() {
	s.mu.Lock()
	lock, ok := s.locks[businessID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[businessID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
