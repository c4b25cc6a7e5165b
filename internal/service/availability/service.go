package availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/lobba/scheduling-service/internal/domain"
	settingsClient "github.com/lobba/scheduling-service/internal/integrations/settingsservice"
)

// Capacity настройки вместимости бизнеса
type Capacity struct {
	CapacityEnabled bool `json:"capacity_enabled"`
	MaxCapacity     int  `json:"max_capacity"`
}

// Service фасад настроек вместимости
type Service struct {
	settingsClient SettingsServiceClient
	logger         Logger
}

// NewService создает новый экземпляр сервиса вместимости
func NewService(settingsClient SettingsServiceClient, logger Logger) *Service {
	return &Service{
		settingsClient: settingsClient,
		logger:         logger,
	}
}

// GetCapacity получает эффективную вместимость бизнеса
// При выключенной вместимости действует лимит в одну запись
func (s *Service) GetCapacity(ctx context.Context, businessID int64) (*Capacity, error) {
	s.logger.Info("GetCapacity: business id=%d", businessID)

	business, err := s.settingsClient.GetBusiness(ctx, businessID)
	if err != nil {
		if errors.Is(err, settingsClient.ErrBusinessNotFound) {
			s.logger.Warn("GetCapacity: business id=%d not found", businessID)
			return nil, ErrBusinessNotFound
		}
		s.logger.Error("GetCapacity: failed to get business id=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: GetCapacity - failed to get business: %v", ErrInternal, err)
	}

	return &Capacity{
		CapacityEnabled: business.CapacityEnabled,
		MaxCapacity:     domain.EffectiveCapacity(business.CapacityEnabled, business.SimultaneousCapacity),
	}, nil
}
