package check_slot

import (
	"context"
	"errors"
	"fmt"

	"github.com/lobba/scheduling-service/internal/domain"
	settingsClient "github.com/lobba/scheduling-service/internal/integrations/settingsservice"
)

// UseCase use case для проверки доступности конкретного слота
type UseCase struct {
	reservationRepo ReservationRepository
	blockRepo       BlockRepository
	settingsClient  SettingsServiceClient
	txManager       TransactionManager
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	blockRepo BlockRepository,
	settingsClient SettingsServiceClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		blockRepo:       blockRepo,
		settingsClient:  settingsClient,
		txManager:       txManager,
		logger:          logger,
	}
}

// Execute выполняет use case проверки слота
// Подсчет выполняется в сериализуемой транзакции, чтобы результат был
// согласован с параллельными созданиями записей
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CheckSlot: business=%d, start=%s, end=%s",
		req.BusinessID, req.StartAt.Format(domain.TimeFormat), req.EndAt.Format(domain.TimeFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CheckSlot: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем бизнес для вычисления вместимости
	business, err := uc.settingsClient.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, settingsClient.ErrBusinessNotFound) {
			uc.logger.Warn("CheckSlot: business id=%d not found", req.BusinessID)
			return nil, ErrBusinessNotFound
		}
		uc.logger.Error("CheckSlot: failed to get business id=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}

	maxCapacity := domain.EffectiveCapacity(business.CapacityEnabled, business.SimultaneousCapacity)

	var count int

	// 3. Подсчет пересечений в транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		reservations, err := uc.reservationRepo.GetOverlappingWindow(txCtx, req.BusinessID, req.StartAt, req.EndAt)
		if err != nil {
			return fmt.Errorf("%w: failed to get reservations: %v", ErrInternal, err)
		}

		blocks, err := uc.blockRepo.GetActiveInWindow(txCtx, req.BusinessID, req.StartAt, req.EndAt)
		if err != nil {
			return fmt.Errorf("%w: failed to get blocks: %v", ErrInternal, err)
		}

		window := domain.Interval{Start: req.StartAt, End: req.EndAt}
		count = domain.CountOverlapping(window, reservations, blocks)
		return nil
	})
	if err != nil {
		uc.logger.Error("CheckSlot: transaction failed: %v", err)
		return nil, err
	}

	remaining := maxCapacity - count
	if remaining < 0 {
		remaining = 0
	}

	uc.logger.Info("CheckSlot: business=%d slot %d/%d taken", req.BusinessID, count, maxCapacity)

	return &Response{
		Available:      count < maxCapacity,
		CurrentCount:   count,
		MaxCapacity:    maxCapacity,
		SlotsRemaining: remaining,
	}, nil
}
