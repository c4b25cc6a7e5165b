package webhookmgr

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lobba/scheduling-service/internal/domain"
	"github.com/lobba/scheduling-service/internal/infra/notify"
	integrationRepo "github.com/lobba/scheduling-service/internal/infra/storage/integration"
	"github.com/lobba/scheduling-service/internal/integrations/googlecalendar"
	"github.com/lobba/scheduling-service/internal/service/calendarsync"
	"github.com/lobba/scheduling-service/pkg/ptr"
)

type fakeIntegrationRepo struct {
	integrations []*domain.CalendarIntegration
	listErr      error
	byChannel    *domain.CalendarIntegration
	byChannelErr error
	setChannels  []int64
	setErr       error
	cleared      []int64
	clearedSync  []bool
	clearErr     error
}

func (f *fakeIntegrationRepo) GetByChannel(ctx context.Context, channelID, resourceID string) (*domain.CalendarIntegration, error) {
	if f.byChannelErr != nil {
		return nil, f.byChannelErr
	}
	return f.byChannel, nil
}

func (f *fakeIntegrationRepo) ListWithChannels(ctx context.Context) ([]*domain.CalendarIntegration, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.integrations, nil
}

func (f *fakeIntegrationRepo) SetChannel(ctx context.Context, businessID int64, channelID, resourceID string, expiresAt time.Time) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.setChannels = append(f.setChannels, businessID)
	return nil
}

func (f *fakeIntegrationRepo) ClearChannel(ctx context.Context, businessID int64, disableSync bool) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.cleared = append(f.cleared, businessID)
	f.clearedSync = append(f.clearedSync, disableSync)
	return nil
}

type fakeProvider struct {
	integrations map[int64]*domain.CalendarIntegration
	errs         map[int64]error
}

func (f *fakeProvider) ValidIntegration(ctx context.Context, businessID int64) (*domain.CalendarIntegration, error) {
	if err, ok := f.errs[businessID]; ok {
		return nil, err
	}
	return f.integrations[businessID], nil
}

type fakeCalendarClient struct {
	watchResp  *googlecalendar.WatchResponse
	watchErrs  map[string]error
	watched    []string
	stopped    []string
	stopErr    error
	watchCalls int
}

func (f *fakeCalendarClient) WatchEvents(ctx context.Context, accessToken, calendarID string, watch *googlecalendar.WatchRequest) (*googlecalendar.WatchResponse, error) {
	f.watchCalls++
	if err, ok := f.watchErrs[calendarID]; ok {
		return nil, err
	}
	f.watched = append(f.watched, calendarID)
	return f.watchResp, nil
}

func (f *fakeCalendarClient) StopChannel(ctx context.Context, accessToken, channelID, resourceID string) error {
	f.stopped = append(f.stopped, channelID)
	return f.stopErr
}

type fakeSyncer struct {
	synced  []int64
	syncErr error
}

func (f *fakeSyncer) SyncInbound(ctx context.Context, businessID int64) (*calendarsync.SyncResult, error) {
	f.synced = append(f.synced, businessID)
	if f.syncErr != nil {
		return nil, f.syncErr
	}
	return &calendarsync.SyncResult{EventsPulled: 1}, nil
}

type fakeNotifier struct {
	events []notify.Event
}

func (f *fakeNotifier) Emit(ctx context.Context, event notify.Event) {
	f.events = append(f.events, event)
}

type fakeTimeProvider struct {
	now time.Time
}

func (f *fakeTimeProvider) Now() time.Time {
	return f.now
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func integrationWithChannel(businessID int64, expiresAt time.Time) *domain.CalendarIntegration {
	return &domain.CalendarIntegration{
		BusinessID:       businessID,
		CalendarID:       "primary",
		SyncEnabled:      true,
		AccessToken:      "token",
		ChannelID:        ptr.Ptr("chan"),
		ResourceID:       ptr.Ptr("res"),
		ChannelExpiresAt: &expiresAt,
	}
}

func newTestService(
	repo *fakeIntegrationRepo,
	provider *fakeProvider,
	client *fakeCalendarClient,
	syncer *fakeSyncer,
	notifier *fakeNotifier,
) *Service {
	return &Service{
		integrationRepo: repo,
		provider:        provider,
		calendarClient:  client,
		syncer:          syncer,
		notifier:        notifier,
		timeProvider:    &fakeTimeProvider{now: testNow},
		logger:          nopLogger{},
		callbackURL:     "https://lobba.example/api/v1/calendar/notifications",
	}
}

func TestPlanSweep(t *testing.T) {
	active := integrationWithChannel(1, testNow.Add(72*time.Hour))
	expiring := integrationWithChannel(2, testNow.Add(24*time.Hour))
	justExpired := integrationWithChannel(3, testNow.Add(-time.Hour))
	longExpired := integrationWithChannel(4, testNow.Add(-48*time.Hour))

	plan := planSweep([]*domain.CalendarIntegration{active, expiring, justExpired, longExpired}, testNow)

	require.Len(t, plan.renew, 2)
	assert.Equal(t, int64(2), plan.renew[0].BusinessID)
	assert.Equal(t, int64(3), plan.renew[1].BusinessID, "recently expired channel is renewed, not cleaned")

	require.Len(t, plan.cleanup, 1)
	assert.Equal(t, int64(4), plan.cleanup[0].BusinessID)
}

func TestPlanSweep_CleanupTakesPrecedence(t *testing.T) {
	// Канал с выключенной синхронизацией не продлевается, но чистится
	stale := integrationWithChannel(1, testNow.Add(-48*time.Hour))
	stale.SyncEnabled = false

	plan := planSweep([]*domain.CalendarIntegration{stale}, testNow)
	assert.Empty(t, plan.renew)
	require.Len(t, plan.cleanup, 1)
}

func TestRunSweep_RenewsAndCleans(t *testing.T) {
	expiring := integrationWithChannel(1, testNow.Add(24*time.Hour))
	stale := integrationWithChannel(2, testNow.Add(-48*time.Hour))

	repo := &fakeIntegrationRepo{integrations: []*domain.CalendarIntegration{expiring, stale}}
	provider := &fakeProvider{integrations: map[int64]*domain.CalendarIntegration{1: expiring}}
	client := &fakeCalendarClient{
		watchResp: &googlecalendar.WatchResponse{
			ID:         "new-chan",
			ResourceID: "new-res",
			Expiration: testNow.Add(7 * 24 * time.Hour).UnixMilli(),
		},
	}
	notifier := &fakeNotifier{}
	svc := newTestService(repo, provider, client, &fakeSyncer{}, notifier)

	result, err := svc.RunSweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Renewed)
	assert.Equal(t, 1, result.Cleaned)
	assert.Equal(t, 0, result.Failed)

	// Продление: старый канал остановлен, новый зарегистрирован
	assert.Equal(t, []string{"chan"}, client.stopped)
	assert.Equal(t, []int64{1}, repo.setChannels)

	// Чистка выключает синхронизацию и шлет уведомление
	assert.Equal(t, []int64{2}, repo.cleared)
	assert.Equal(t, []bool{true}, repo.clearedSync)
	require.Len(t, notifier.events, 1)
	assert.Equal(t, notify.EventWebhookChannelClean, notifier.events[0].Type)
}

func TestRunSweep_RenewalFailureDoesNotStopSweep(t *testing.T) {
	first := integrationWithChannel(1, testNow.Add(24*time.Hour))
	second := integrationWithChannel(2, testNow.Add(24*time.Hour))
	second.CalendarID = "secondary"

	repo := &fakeIntegrationRepo{integrations: []*domain.CalendarIntegration{first, second}}
	provider := &fakeProvider{integrations: map[int64]*domain.CalendarIntegration{1: first, 2: second}}
	client := &fakeCalendarClient{
		watchResp: &googlecalendar.WatchResponse{
			ID:         "new-chan",
			ResourceID: "new-res",
			Expiration: testNow.Add(7 * 24 * time.Hour).UnixMilli(),
		},
		watchErrs: map[string]error{"primary": errors.New("quota exceeded")},
	}
	notifier := &fakeNotifier{}
	svc := newTestService(repo, provider, client, &fakeSyncer{}, notifier)

	result, err := svc.RunSweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Renewed)
	assert.Equal(t, 1, result.Failed)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, notify.EventWebhookRenewalFailed, notifier.events[0].Type)
	assert.Equal(t, int64(1), notifier.events[0].BusinessID)
}

func TestSetupWebhook_UsesConfiguredCallbackWhenEmpty(t *testing.T) {
	integration := integrationWithChannel(1, testNow.Add(72*time.Hour))
	repo := &fakeIntegrationRepo{}
	provider := &fakeProvider{integrations: map[int64]*domain.CalendarIntegration{1: integration}}
	client := &fakeCalendarClient{
		watchResp: &googlecalendar.WatchResponse{
			ID:         "chan-new",
			ResourceID: "res-new",
			Expiration: testNow.Add(7 * 24 * time.Hour).UnixMilli(),
		},
	}
	svc := newTestService(repo, provider, client, &fakeSyncer{}, &fakeNotifier{})

	info, err := svc.SetupWebhook(context.Background(), 1, "")
	require.NoError(t, err)

	assert.Equal(t, "chan-new", info.ChannelID)
	assert.Equal(t, "res-new", info.ResourceID)
	assert.Equal(t, testNow.Add(7*24*time.Hour), info.ExpiresAt)
	assert.Equal(t, []int64{1}, repo.setChannels)
}

func TestSetupWebhook_NotConfigured(t *testing.T) {
	provider := &fakeProvider{errs: map[int64]error{1: calendarsync.ErrNotConfigured}}
	svc := newTestService(&fakeIntegrationRepo{}, provider, &fakeCalendarClient{}, &fakeSyncer{}, &fakeNotifier{})

	_, err := svc.SetupWebhook(context.Background(), 1, "")
	assert.ErrorIs(t, err, calendarsync.ErrNotConfigured)
}

func TestHandleNotification_SyncStateAckedWithoutSyncing(t *testing.T) {
	syncer := &fakeSyncer{}
	svc := newTestService(&fakeIntegrationRepo{}, &fakeProvider{}, &fakeCalendarClient{}, syncer, &fakeNotifier{})

	err := svc.HandleNotification(context.Background(), "chan", "res", "sync")
	require.NoError(t, err)
	assert.Empty(t, syncer.synced)
}

func TestHandleNotification_TriggersInboundSync(t *testing.T) {
	repo := &fakeIntegrationRepo{byChannel: integrationWithChannel(7, testNow.Add(72*time.Hour))}
	syncer := &fakeSyncer{}
	svc := newTestService(repo, &fakeProvider{}, &fakeCalendarClient{}, syncer, &fakeNotifier{})

	err := svc.HandleNotification(context.Background(), "chan", "res", "exists")
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, syncer.synced)
}

func TestHandleNotification_SyncErrorStillAcked(t *testing.T) {
	repo := &fakeIntegrationRepo{byChannel: integrationWithChannel(7, testNow.Add(72*time.Hour))}
	syncer := &fakeSyncer{syncErr: errors.New("provider down")}
	svc := newTestService(repo, &fakeProvider{}, &fakeCalendarClient{}, syncer, &fakeNotifier{})

	err := svc.HandleNotification(context.Background(), "chan", "res", "exists")
	assert.NoError(t, err, "sync failures must not cause provider retries")
}

func TestHandleNotification_UnknownChannel(t *testing.T) {
	repo := &fakeIntegrationRepo{byChannelErr: integrationRepo.ErrIntegrationNotFound}
	svc := newTestService(repo, &fakeProvider{}, &fakeCalendarClient{}, &fakeSyncer{}, &fakeNotifier{})

	err := svc.HandleNotification(context.Background(), "stale", "res", "exists")
	assert.ErrorIs(t, err, ErrChannelNotFound)
}
