package autoconfirm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lobba/scheduling-service/internal/domain"
	"github.com/lobba/scheduling-service/internal/infra/notify"
	reservationRepo "github.com/lobba/scheduling-service/internal/infra/storage/reservation"
	"github.com/lobba/scheduling-service/internal/integrations/settingsservice"
)

type fakeReservationRepo struct {
	reservation    *domain.Reservation
	getErr         error
	confirmErr     error
	confirmedIDs   []int64
	countByUser    int
	countByUserErr error
	noShows        int
	completed      int
	countStatusErr error
	sameDay        int
	sameDayErr     error
}

func (f *fakeReservationRepo) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.reservation, nil
}

func (f *fakeReservationRepo) ConfirmAuto(ctx context.Context, id int64) error {
	if f.confirmErr != nil {
		return f.confirmErr
	}
	f.confirmedIDs = append(f.confirmedIDs, id)
	return nil
}

func (f *fakeReservationRepo) CountByUser(ctx context.Context, userID, businessID int64) (int, error) {
	return f.countByUser, f.countByUserErr
}

func (f *fakeReservationRepo) CountByUserAndStatus(ctx context.Context, userID, businessID int64, status domain.ReservationStatus) (int, error) {
	if f.countStatusErr != nil {
		return 0, f.countStatusErr
	}
	if status == domain.StatusNoShow {
		return f.noShows, nil
	}
	return f.completed, nil
}

func (f *fakeReservationRepo) CountSameDay(ctx context.Context, userID, businessID int64, dayStart, dayEnd time.Time) (int, error) {
	return f.sameDay, f.sameDayErr
}

type fakeSettingsClient struct {
	business    *settingsservice.Business
	businessErr error
	settings    *settingsservice.AutoConfirmSettings
	settingsErr error
}

func (f *fakeSettingsClient) GetBusiness(ctx context.Context, businessID int64) (*settingsservice.Business, error) {
	if f.businessErr != nil {
		return nil, f.businessErr
	}
	if f.business == nil {
		return nil, settingsservice.ErrBusinessNotFound
	}
	return f.business, nil
}

func (f *fakeSettingsClient) GetAutoConfirmSettings(ctx context.Context, businessID int64) (*settingsservice.AutoConfirmSettings, error) {
	if f.settingsErr != nil {
		return nil, f.settingsErr
	}
	return f.settings, nil
}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
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

func pendingReservation() *domain.Reservation {
	return &domain.Reservation{
		ID:         100,
		BusinessID: 1,
		ServiceID:  10,
		UserID:     42,
		StartAt:    testNow.Add(48 * time.Hour),
		EndAt:      testNow.Add(49 * time.Hour),
		Status:     domain.StatusPending,
	}
}

func permissiveSettings() *settingsservice.AutoConfirmSettings {
	return &settingsservice.AutoConfirmSettings{
		Enabled:         true,
		MinAdvanceHours: 2,
	}
}

func newTestService(repo *fakeReservationRepo, settings *fakeSettingsClient, notifier *fakeNotifier) *Service {
	return &Service{
		reservationRepo: repo,
		settingsClient:  settings,
		txManager:       fakeTxManager{},
		notifier:        notifier,
		timeProvider:    &fakeTimeProvider{now: testNow},
		logger:          nopLogger{},
	}
}

func TestEvaluate_AllChecksPass(t *testing.T) {
	repo := &fakeReservationRepo{
		reservation: pendingReservation(),
		countByUser: 3,
		completed:   2,
		sameDay:     1,
	}
	svc := newTestService(repo, &fakeSettingsClient{settings: permissiveSettings()}, &fakeNotifier{})

	decision, err := svc.Evaluate(context.Background(), 100)
	require.NoError(t, err)

	assert.True(t, decision.ShouldAutoConfirm)
	assert.Equal(t, "all checks passed", decision.Reason)
	require.Len(t, decision.Checks, len(CheckOrder))
	for _, name := range CheckOrder {
		assert.True(t, decision.Checks[name], "check %s should pass", name)
	}
}

func TestEvaluate_DisabledShortCircuits(t *testing.T) {
	repo := &fakeReservationRepo{reservation: pendingReservation()}
	settings := &fakeSettingsClient{settings: &settingsservice.AutoConfirmSettings{Enabled: false}}
	svc := newTestService(repo, settings, &fakeNotifier{})

	decision, err := svc.Evaluate(context.Background(), 100)
	require.NoError(t, err)

	assert.False(t, decision.ShouldAutoConfirm)
	assert.Equal(t, "auto-confirmation is disabled for this business", decision.Reason)

	// Упавшая первая проверка оставляет всю трассу в false
	for _, name := range CheckOrder {
		assert.False(t, decision.Checks[name], "check %s must stay false", name)
	}
}

func TestEvaluate_LeadTimeTooShort(t *testing.T) {
	reservation := pendingReservation()
	reservation.StartAt = testNow.Add(time.Hour)

	repo := &fakeReservationRepo{reservation: reservation}
	svc := newTestService(repo, &fakeSettingsClient{settings: permissiveSettings()}, &fakeNotifier{})

	decision, err := svc.Evaluate(context.Background(), 100)
	require.NoError(t, err)

	assert.False(t, decision.ShouldAutoConfirm)
	assert.True(t, decision.Checks[CheckEnabled])
	assert.False(t, decision.Checks[CheckLeadTime])
	assert.False(t, decision.Checks[CheckFirstBooking], "later checks must not run")
}

func TestEvaluate_FirstBookingPolicy(t *testing.T) {
	settings := permissiveSettings()
	settings.RequireManualFirstBooking = true

	// Свежесозданная запись уже в базе: единственная запись пользователя
	repo := &fakeReservationRepo{reservation: pendingReservation(), countByUser: 1}
	svc := newTestService(repo, &fakeSettingsClient{settings: settings}, &fakeNotifier{})

	decision, err := svc.Evaluate(context.Background(), 100)
	require.NoError(t, err)

	assert.False(t, decision.ShouldAutoConfirm)
	assert.Equal(t, "first booking requires manual approval", decision.Reason)
	assert.True(t, decision.Checks[CheckLeadTime])
	assert.False(t, decision.Checks[CheckFirstBooking])
}

func TestEvaluate_ServiceRequiresManualApproval(t *testing.T) {
	settings := permissiveSettings()
	settings.ManualApprovalServiceIDs = []int64{10}

	repo := &fakeReservationRepo{reservation: pendingReservation(), countByUser: 3}
	svc := newTestService(repo, &fakeSettingsClient{settings: settings}, &fakeNotifier{})

	decision, err := svc.Evaluate(context.Background(), 100)
	require.NoError(t, err)

	assert.False(t, decision.ShouldAutoConfirm)
	assert.Equal(t, "service requires manual approval", decision.Reason)
	assert.False(t, decision.Checks[CheckServiceApproval])
}

func TestEvaluate_NoShowRateAtThreshold(t *testing.T) {
	// 1 неявка из 5 визитов = 20%, порог включительно
	repo := &fakeReservationRepo{
		reservation: pendingReservation(),
		countByUser: 6,
		noShows:     1,
		completed:   4,
	}
	svc := newTestService(repo, &fakeSettingsClient{settings: permissiveSettings()}, &fakeNotifier{})

	decision, err := svc.Evaluate(context.Background(), 100)
	require.NoError(t, err)

	assert.False(t, decision.ShouldAutoConfirm)
	assert.False(t, decision.Checks[CheckNoShowRate])
	assert.False(t, decision.Checks[CheckCompletedHistory])
}

func TestEvaluate_ZeroHistory(t *testing.T) {
	// Нулевая история: доля неявок равна нулю (проверка 5 проходит),
	// но завершённых записей нет - падает проверка 6
	repo := &fakeReservationRepo{
		reservation: pendingReservation(),
		countByUser: 1,
	}
	svc := newTestService(repo, &fakeSettingsClient{settings: permissiveSettings()}, &fakeNotifier{})

	decision, err := svc.Evaluate(context.Background(), 100)
	require.NoError(t, err)

	assert.False(t, decision.ShouldAutoConfirm)
	assert.Equal(t, "no completed bookings", decision.Reason)
	assert.True(t, decision.Checks[CheckNoShowRate])
	assert.False(t, decision.Checks[CheckCompletedHistory])
	assert.False(t, decision.Checks[CheckDailyLimit])
}

func TestEvaluate_DailyLimit(t *testing.T) {
	// Новая запись уже в подсчёте: 11 записей за день превышают лимит 10
	repo := &fakeReservationRepo{
		reservation: pendingReservation(),
		countByUser: 20,
		completed:   5,
		sameDay:     domain.MaxSameDayReservations + 1,
	}
	svc := newTestService(repo, &fakeSettingsClient{settings: permissiveSettings()}, &fakeNotifier{})

	decision, err := svc.Evaluate(context.Background(), 100)
	require.NoError(t, err)

	assert.False(t, decision.ShouldAutoConfirm)
	assert.False(t, decision.Checks[CheckDailyLimit])
	assert.False(t, decision.Checks[CheckAvailability])
}

func TestEvaluate_InternalErrorBecomesNegativeDecision(t *testing.T) {
	repo := &fakeReservationRepo{
		reservation:    pendingReservation(),
		countByUser:    3,
		countStatusErr: errors.New("db gone"),
	}
	svc := newTestService(repo, &fakeSettingsClient{settings: permissiveSettings()}, &fakeNotifier{})

	decision, err := svc.Evaluate(context.Background(), 100)
	require.NoError(t, err, "internal evaluation errors must not surface as errors")

	assert.False(t, decision.ShouldAutoConfirm)
	assert.Contains(t, decision.Reason, "failed to count no-shows")
}

func TestEvaluate_SettingsUnavailable(t *testing.T) {
	repo := &fakeReservationRepo{reservation: pendingReservation()}
	settings := &fakeSettingsClient{settingsErr: errors.New("settings service down")}
	svc := newTestService(repo, settings, &fakeNotifier{})

	decision, err := svc.Evaluate(context.Background(), 100)
	require.NoError(t, err)

	assert.False(t, decision.ShouldAutoConfirm)
	assert.Contains(t, decision.Reason, "failed to load auto-confirm settings")
}

func TestEvaluate_NotFound(t *testing.T) {
	repo := &fakeReservationRepo{getErr: reservationRepo.ErrReservationNotFound}
	svc := newTestService(repo, &fakeSettingsClient{settings: permissiveSettings()}, &fakeNotifier{})

	_, err := svc.Evaluate(context.Background(), 100)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestApply_ConfirmsAndNotifies(t *testing.T) {
	repo := &fakeReservationRepo{
		reservation: pendingReservation(),
		countByUser: 3,
		completed:   2,
		sameDay:     1,
	}
	notifier := &fakeNotifier{}
	svc := newTestService(repo, &fakeSettingsClient{settings: permissiveSettings()}, notifier)

	result, err := svc.Apply(context.Background(), 100)
	require.NoError(t, err)

	assert.True(t, result.Applied)
	assert.Equal(t, []int64{100}, repo.confirmedIDs)
	require.Len(t, notifier.events, 1)
	assert.Equal(t, notify.EventReservationConfirmed, notifier.events[0].Type)
}

func TestApply_NegativeDecisionLeavesPending(t *testing.T) {
	settings := &fakeSettingsClient{settings: &settingsservice.AutoConfirmSettings{Enabled: false}}
	repo := &fakeReservationRepo{reservation: pendingReservation()}
	notifier := &fakeNotifier{}
	svc := newTestService(repo, settings, notifier)

	result, err := svc.Apply(context.Background(), 100)
	require.NoError(t, err)

	assert.False(t, result.Applied)
	assert.Empty(t, repo.confirmedIDs)
	assert.Empty(t, notifier.events)
}

func TestApply_NotPending(t *testing.T) {
	reservation := pendingReservation()
	reservation.Status = domain.StatusConfirmed

	repo := &fakeReservationRepo{reservation: reservation}
	svc := newTestService(repo, &fakeSettingsClient{settings: permissiveSettings()}, &fakeNotifier{})

	_, err := svc.Apply(context.Background(), 100)
	assert.ErrorIs(t, err, ErrNotPending)
}
