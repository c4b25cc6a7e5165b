package create_reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lobba/scheduling-service/internal/domain"
	settingsClient "github.com/lobba/scheduling-service/internal/integrations/settingsservice"
)

// UseCase use case для создания записи
type UseCase struct {
	reservationRepo ReservationRepository
	blockRepo       BlockRepository
	settingsClient  SettingsServiceClient
	autoConfirm     AutoConfirmService
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	blockRepo BlockRepository,
	settingsClient SettingsServiceClient,
	autoConfirm AutoConfirmService,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		blockRepo:       blockRepo,
		settingsClient:  settingsClient,
		autoConfirm:     autoConfirm,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case создания записи
// Проверка вместимости и вставка выполняются в одной сериализуемой транзакции,
// чтобы две конкурентные записи не заняли последнее место одновременно
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateReservation: user=%d, business=%d, service=%d, start=%s",
		req.UserID, req.BusinessID, req.ServiceID, req.StartAt.Format(domain.TimeFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateReservation: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	if !req.StartAt.After(now) {
		uc.logger.Warn("CreateReservation: start time %s is in the past", req.StartAt.Format(domain.TimeFormat))
		return nil, ErrInvalidDate
	}

	// 3. Получаем бизнес
	business, err := uc.settingsClient.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, settingsClient.ErrBusinessNotFound) {
			uc.logger.Warn("CreateReservation: business id=%d not found", req.BusinessID)
			return nil, ErrBusinessNotFound
		}
		uc.logger.Error("CreateReservation: failed to get business id=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}

	// 4. Получаем услугу; её длительность определяет конец окна
	service, err := uc.settingsClient.GetService(ctx, req.BusinessID, req.ServiceID)
	if err != nil {
		if errors.Is(err, settingsClient.ErrServiceNotFound) {
			uc.logger.Warn("CreateReservation: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateReservation: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	endAt := req.StartAt.Add(time.Duration(service.DurationMinutes) * time.Minute)

	// 5. Таймзона бизнеса для проверки рабочих часов
	loc, err := time.LoadLocation(business.Timezone)
	if err != nil {
		uc.logger.Warn("CreateReservation: unknown timezone %q for business id=%d, falling back to UTC",
			business.Timezone, req.BusinessID)
		loc = time.UTC
	}

	workingHours := workingHoursForDay(business, req.StartAt.In(loc))
	if err := validateWithinWorkingHours(workingHours, req.StartAt, endAt, loc); err != nil {
		uc.logger.Warn("CreateReservation: working hours validation failed: %v", err)
		return nil, err
	}

	// 6. Буфер: переопределение из запроса, иначе дефолт бизнеса
	// Разрешается при создании и сохраняется на записи
	bufferMinutes := business.DefaultBufferMinutes
	if req.BufferMinutes != nil {
		bufferMinutes = *req.BufferMinutes
	}

	maxCapacity := domain.EffectiveCapacity(business.CapacityEnabled, business.SimultaneousCapacity)

	var result *domain.Reservation

	// 7. Проверка вместимости и вставка в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 7.1. Записи, пересекающие окно, с блокировкой FOR UPDATE
		reservations, err := uc.reservationRepo.GetOverlappingWindow(txCtx, req.BusinessID, req.StartAt, endAt)
		if err != nil {
			uc.logger.Error("CreateReservation: failed to get reservations: %v", err)
			return fmt.Errorf("%w: failed to get reservations: %v", ErrInternal, err)
		}

		blocks, err := uc.blockRepo.GetActiveInWindow(txCtx, req.BusinessID, req.StartAt, endAt)
		if err != nil {
			uc.logger.Error("CreateReservation: failed to get blocks: %v", err)
			return fmt.Errorf("%w: failed to get blocks: %v", ErrInternal, err)
		}

		// 7.2. Проверяем вместимость слота
		window := domain.Interval{Start: req.StartAt, End: endAt}
		count := domain.CountOverlapping(window, reservations, blocks)

		if count >= maxCapacity {
			uc.logger.Warn("CreateReservation: slot not available, %d/%d spots taken", count, maxCapacity)
			return ErrSlotNotAvailable
		}

		uc.logger.Info("CreateReservation: slot available, %d/%d spots taken", count, maxCapacity)

		// 7.3. Создаем запись со статусом pending и денормализацией услуги
		reservation := &domain.Reservation{
			BusinessID:    req.BusinessID,
			ServiceID:     req.ServiceID,
			UserID:        req.UserID,
			StartAt:       req.StartAt.UTC(),
			EndAt:         endAt.UTC(),
			Status:        domain.StatusPending,
			BufferMinutes: bufferMinutes,
			ServiceName:   service.Name,
			ServicePrice:  servicePrice(service),
			Notes:         req.Notes,
		}

		created, err := uc.reservationRepo.Create(txCtx, reservation)
		if err != nil {
			uc.logger.Error("CreateReservation: failed to create reservation: %v", err)
			return fmt.Errorf("%w: failed to create reservation: %v", ErrInternal, err)
		}

		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateReservation: successfully created reservation id=%d", result.ID)

	// 8. Пробуем автоподтверждение; ошибка движка не ломает созданную запись
	status := result.Status
	autoConfirmed := false

	if uc.autoConfirm != nil {
		applied, err := uc.autoConfirm.Apply(ctx, result.ID)
		if err != nil {
			uc.logger.Warn("CreateReservation: auto-confirmation failed for reservation id=%d: %v", result.ID, err)
		} else if applied.Applied {
			status = domain.StatusConfirmed
			autoConfirmed = true
			uc.logger.Info("CreateReservation: reservation id=%d auto-confirmed", result.ID)
		} else {
			uc.logger.Info("CreateReservation: reservation id=%d left pending: %s", result.ID, applied.Reason)
		}
	}

	return &Response{
		ID:            result.ID,
		UserID:        result.UserID,
		BusinessID:    result.BusinessID,
		ServiceID:     result.ServiceID,
		StartAt:       result.StartAt,
		EndAt:         result.EndAt,
		Status:        string(status),
		BufferMinutes: result.BufferMinutes,
		AutoConfirmed: autoConfirmed,
		ServiceName:   result.ServiceName,
		ServicePrice:  result.ServicePrice,
		Notes:         result.Notes,
		CreatedAt:     result.CreatedAt,
		UpdatedAt:     result.UpdatedAt,
	}, nil
}
