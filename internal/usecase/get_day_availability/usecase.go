package get_day_availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lobba/scheduling-service/internal/domain"
	settingsClient "github.com/lobba/scheduling-service/internal/integrations/settingsservice"
)

// UseCase use case для получения дневной сетки слотов с аннотацией загруженности
type UseCase struct {
	reservationRepo ReservationRepository
	blockRepo       BlockRepository
	settingsClient  SettingsServiceClient
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	blockRepo BlockRepository,
	settingsClient SettingsServiceClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		blockRepo:       blockRepo,
		settingsClient:  settingsClient,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case получения дневной сетки слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetDayAvailability: business=%d, service=%d, date=%s",
		req.BusinessID, req.ServiceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetDayAvailability: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем бизнес
	business, err := uc.settingsClient.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, settingsClient.ErrBusinessNotFound) {
			uc.logger.Warn("GetDayAvailability: business id=%d not found", req.BusinessID)
			return nil, ErrBusinessNotFound
		}
		uc.logger.Error("GetDayAvailability: failed to get business id=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}

	// 4. Получаем услугу
	service, err := uc.settingsClient.GetService(ctx, req.BusinessID, req.ServiceID)
	if err != nil {
		if errors.Is(err, settingsClient.ErrServiceNotFound) {
			uc.logger.Warn("GetDayAvailability: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetDayAvailability: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 5. Вычисляем эффективную вместимость
	maxCapacity := domain.EffectiveCapacity(business.CapacityEnabled, business.SimultaneousCapacity)

	// 6. Таймзона бизнеса; при ошибке падаем в UTC
	loc, err := time.LoadLocation(business.Timezone)
	if err != nil {
		uc.logger.Warn("GetDayAvailability: unknown timezone %q for business id=%d, falling back to UTC",
			business.Timezone, req.BusinessID)
		loc = time.UTC
	}

	// 7. Прошедшие даты возвращают пустую сетку
	if isDateInPast(req.Date, now, loc) {
		uc.logger.Info("GetDayAvailability: date %s is in the past", req.Date.Format(domain.DateFormat))
		return uc.emptyResponse(req, maxCapacity), nil
	}

	// 8. Рабочие часы на указанный день недели
	workingHours := workingHoursForDay(business, req.Date)
	if !workingHours.IsOpen {
		uc.logger.Info("GetDayAvailability: business is closed on %s", req.Date.Format(domain.DateFormat))
		return uc.emptyResponse(req, maxCapacity), nil
	}

	// 9. Генерируем времена начала слотов
	starts, err := generateSlotStarts(workingHours, service.DurationMinutes)
	if err != nil {
		uc.logger.Error("GetDayAvailability: failed to generate slots: %v", err)
		return nil, fmt.Errorf("%w: failed to generate slots: %v", ErrInternal, err)
	}

	if len(starts) == 0 {
		return uc.emptyResponse(req, maxCapacity), nil
	}

	// 10. Загружаем записи и блокировки на весь день одним окном
	dayStart := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	reservations, err := uc.reservationRepo.GetOverlappingWindow(ctx, req.BusinessID, dayStart, dayEnd)
	if err != nil {
		uc.logger.Error("GetDayAvailability: failed to get reservations: %v", err)
		return nil, fmt.Errorf("%w: failed to get reservations: %v", ErrInternal, err)
	}

	blocks, err := uc.blockRepo.GetActiveInWindow(ctx, req.BusinessID, dayStart, dayEnd)
	if err != nil {
		uc.logger.Error("GetDayAvailability: failed to get blocks: %v", err)
		return nil, fmt.Errorf("%w: failed to get blocks: %v", ErrInternal, err)
	}

	// 11. Аннотируем каждый слот загруженностью
	slots, err := annotateSlots(starts, req.Date, loc, service.DurationMinutes, reservations, blocks, maxCapacity)
	if err != nil {
		uc.logger.Error("GetDayAvailability: failed to annotate slots: %v", err)
		return nil, fmt.Errorf("%w: failed to annotate slots: %v", ErrInternal, err)
	}

	uc.logger.Info("GetDayAvailability: generated %d slots for business=%d, service=%d, date=%s",
		len(slots), req.BusinessID, req.ServiceID, req.Date.Format(domain.DateFormat))

	return &Response{
		Date:        req.Date,
		BusinessID:  req.BusinessID,
		ServiceID:   req.ServiceID,
		MaxCapacity: maxCapacity,
		Slots:       slots,
	}, nil
}

func (uc *UseCase) emptyResponse(req *Request, maxCapacity int) *Response {
	return &Response{
		Date:        req.Date,
		BusinessID:  req.BusinessID,
		ServiceID:   req.ServiceID,
		MaxCapacity: maxCapacity,
		Slots:       []Slot{},
	}
}
