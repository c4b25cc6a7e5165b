package create_reservation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lobba/scheduling-service/internal/domain"
	"github.com/lobba/scheduling-service/internal/integrations/settingsservice"
	"github.com/lobba/scheduling-service/internal/service/autoconfirm"
	"github.com/lobba/scheduling-service/pkg/ptr"
)

type fakeReservationRepo struct {
	overlapping []*domain.Reservation
	overlapErr  error
	created     []*domain.Reservation
	createErr   error
}

func (f *fakeReservationRepo) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	res.ID = int64(len(f.created) + 1)
	res.CreatedAt = time.Now()
	res.UpdatedAt = res.CreatedAt
	f.created = append(f.created, res)
	return res, nil
}

func (f *fakeReservationRepo) GetOverlappingWindow(ctx context.Context, businessID int64, from, to time.Time) ([]*domain.Reservation, error) {
	if f.overlapErr != nil {
		return nil, f.overlapErr
	}
	return f.overlapping, nil
}

type fakeBlockRepo struct {
	blocks []*domain.AvailabilityBlock
}

func (f *fakeBlockRepo) GetActiveInWindow(ctx context.Context, businessID int64, from, to time.Time) ([]*domain.AvailabilityBlock, error) {
	return f.blocks, nil
}

type fakeSettingsClient struct {
	business *settingsservice.Business
	service  *settingsservice.Service
}

func (f *fakeSettingsClient) GetBusiness(ctx context.Context, businessID int64) (*settingsservice.Business, error) {
	if f.business == nil {
		return nil, settingsservice.ErrBusinessNotFound
	}
	return f.business, nil
}

func (f *fakeSettingsClient) GetService(ctx context.Context, businessID, serviceID int64) (*settingsservice.Service, error) {
	if f.service == nil {
		return nil, settingsservice.ErrServiceNotFound
	}
	return f.service, nil
}

type fakeAutoConfirm struct {
	result *autoconfirm.ApplyResult
	err    error
	calls  []int64
}

func (f *fakeAutoConfirm) Apply(ctx context.Context, reservationID int64) (*autoconfirm.ApplyResult, error) {
	f.calls = append(f.calls, reservationID)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
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

// Вторник 10 марта 2026
var testNow = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

func testBusiness() *settingsservice.Business {
	open := "09:00"
	close := "18:00"
	allWeek := settingsservice.DaySchedule{IsOpen: true, OpenTime: &open, CloseTime: &close}

	return &settingsservice.Business{
		ID:       1,
		Name:     "Salon",
		Timezone: "UTC",
		WorkingHours: settingsservice.WeeklyHours{
			Monday:    allWeek,
			Tuesday:   allWeek,
			Wednesday: allWeek,
			Thursday:  allWeek,
			Friday:    allWeek,
			Saturday:  allWeek,
			Sunday:    settingsservice.DaySchedule{IsOpen: false},
		},
		CapacityEnabled:      true,
		SimultaneousCapacity: 2,
		DefaultBufferMinutes: 10,
	}
}

func testService() *settingsservice.Service {
	return &settingsservice.Service{
		ID:              10,
		BusinessID:      1,
		Name:            "Haircut",
		DurationMinutes: 60,
		Price:           ptr.Ptr(35.0),
	}
}

func newTestUseCase(repo *fakeReservationRepo, blocks *fakeBlockRepo, settings *fakeSettingsClient, ac *fakeAutoConfirm) *UseCase {
	var autoConfirm AutoConfirmService
	if ac != nil {
		autoConfirm = ac
	}
	return &UseCase{
		reservationRepo: repo,
		blockRepo:       blocks,
		settingsClient:  settings,
		autoConfirm:     autoConfirm,
		txManager:       fakeTxManager{},
		timeProvider:    &fakeTimeProvider{now: testNow},
		logger:          nopLogger{},
	}
}

func validRequest() *Request {
	return &Request{
		UserID:     42,
		BusinessID: 1,
		ServiceID:  10,
		StartAt:    time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
	}
}

func TestExecute_CreatesPendingReservation(t *testing.T) {
	repo := &fakeReservationRepo{}
	uc := newTestUseCase(repo, &fakeBlockRepo{}, &fakeSettingsClient{business: testBusiness(), service: testService()}, nil)

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.False(t, resp.AutoConfirmed)
	assert.Equal(t, time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC), resp.EndAt,
		"end time comes from the service duration")
	assert.Equal(t, 10, resp.BufferMinutes, "business default buffer is applied")
	assert.Equal(t, "Haircut", resp.ServiceName)
	assert.Equal(t, 35.0, resp.ServicePrice)

	require.Len(t, repo.created, 1)
	assert.Equal(t, domain.StatusPending, repo.created[0].Status)
}

func TestExecute_BufferOverride(t *testing.T) {
	repo := &fakeReservationRepo{}
	uc := newTestUseCase(repo, &fakeBlockRepo{}, &fakeSettingsClient{business: testBusiness(), service: testService()}, nil)

	req := validRequest()
	req.BufferMinutes = ptr.Ptr(30)

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 30, resp.BufferMinutes)
}

func TestExecute_SlotFull(t *testing.T) {
	// Вместимость 2, оба места заняты пересекающимися бронями
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	repo := &fakeReservationRepo{
		overlapping: []*domain.Reservation{
			{Status: domain.StatusConfirmed, StartAt: start, EndAt: end},
			{Status: domain.StatusPending, StartAt: start, EndAt: end},
		},
	}
	uc := newTestUseCase(repo, &fakeBlockRepo{}, &fakeSettingsClient{business: testBusiness(), service: testService()}, nil)

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Empty(t, repo.created)
}

func TestExecute_BufferedNeighborBlocksSlot(t *testing.T) {
	business := testBusiness()
	business.CapacityEnabled = false

	// Сосед 08:45-09:45 с буфером 30 минут занимает [08:15, 10:15)
	neighbor := &domain.Reservation{
		Status:        domain.StatusConfirmed,
		StartAt:       time.Date(2026, 3, 10, 8, 45, 0, 0, time.UTC),
		EndAt:         time.Date(2026, 3, 10, 9, 45, 0, 0, time.UTC),
		BufferMinutes: 30,
	}
	repo := &fakeReservationRepo{overlapping: []*domain.Reservation{neighbor}}
	uc := newTestUseCase(repo, &fakeBlockRepo{}, &fakeSettingsClient{business: business, service: testService()}, nil)

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestExecute_ActiveBlockOccupiesCapacity(t *testing.T) {
	business := testBusiness()
	business.CapacityEnabled = false

	block := &domain.AvailabilityBlock{
		Active:  true,
		StartAt: time.Date(2026, 3, 10, 10, 30, 0, 0, time.UTC),
		EndAt:   time.Date(2026, 3, 10, 11, 30, 0, 0, time.UTC),
	}
	uc := newTestUseCase(&fakeReservationRepo{}, &fakeBlockRepo{blocks: []*domain.AvailabilityBlock{block}},
		&fakeSettingsClient{business: business, service: testService()}, nil)

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestExecute_PastStartTime(t *testing.T) {
	uc := newTestUseCase(&fakeReservationRepo{}, &fakeBlockRepo{}, &fakeSettingsClient{business: testBusiness(), service: testService()}, nil)

	req := validRequest()
	req.StartAt = testNow.Add(-time.Hour)

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestExecute_ClosedDay(t *testing.T) {
	uc := newTestUseCase(&fakeReservationRepo{}, &fakeBlockRepo{}, &fakeSettingsClient{business: testBusiness(), service: testService()}, nil)

	req := validRequest()
	// Воскресенье 15 марта 2026
	req.StartAt = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrBusinessClosed)
}

func TestExecute_OutsideWorkingHours(t *testing.T) {
	uc := newTestUseCase(&fakeReservationRepo{}, &fakeBlockRepo{}, &fakeSettingsClient{business: testBusiness(), service: testService()}, nil)

	// 17:30 + 60 минут = 18:30, позже закрытия
	req := validRequest()
	req.StartAt = time.Date(2026, 3, 10, 17, 30, 0, 0, time.UTC)

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrOutsideWorkingHours)
}

func TestExecute_BusinessNotFound(t *testing.T) {
	uc := newTestUseCase(&fakeReservationRepo{}, &fakeBlockRepo{}, &fakeSettingsClient{}, nil)

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrBusinessNotFound)
}

func TestExecute_ServiceNotFound(t *testing.T) {
	uc := newTestUseCase(&fakeReservationRepo{}, &fakeBlockRepo{}, &fakeSettingsClient{business: testBusiness()}, nil)

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestExecute_AutoConfirmApplied(t *testing.T) {
	ac := &fakeAutoConfirm{result: &autoconfirm.ApplyResult{Applied: true, Reason: "all checks passed"}}
	uc := newTestUseCase(&fakeReservationRepo{}, &fakeBlockRepo{}, &fakeSettingsClient{business: testBusiness(), service: testService()}, ac)

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.True(t, resp.AutoConfirmed)
	assert.Equal(t, []int64{1}, ac.calls)
}

func TestExecute_AutoConfirmFailureDoesNotBreakCreation(t *testing.T) {
	ac := &fakeAutoConfirm{err: errors.New("engine down")}
	repo := &fakeReservationRepo{}
	uc := newTestUseCase(repo, &fakeBlockRepo{}, &fakeSettingsClient{business: testBusiness(), service: testService()}, ac)

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err, "auto-confirmation errors must not fail the created reservation")

	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.False(t, resp.AutoConfirmed)
	require.Len(t, repo.created, 1)
}

func TestValidateRequest(t *testing.T) {
	longNotes := make([]byte, domain.MaxNotesLength+1)
	for i := range longNotes {
		longNotes[i] = 'a'
	}

	tests := []struct {
		name    string
		mutate  func(r *Request)
		wantErr bool
	}{
		{"valid", func(r *Request) {}, false},
		{"zero user", func(r *Request) { r.UserID = 0 }, true},
		{"negative business", func(r *Request) { r.BusinessID = -1 }, true},
		{"zero service", func(r *Request) { r.ServiceID = 0 }, true},
		{"zero start", func(r *Request) { r.StartAt = time.Time{} }, true},
		{"notes too long", func(r *Request) { r.Notes = ptr.Ptr(string(longNotes)) }, true},
		{"negative buffer", func(r *Request) { r.BufferMinutes = ptr.Ptr(-5) }, true},
		{"zero buffer is fine", func(r *Request) { r.BufferMinutes = ptr.Ptr(0) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			err := validateRequest(req)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
