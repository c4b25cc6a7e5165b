package create_reservation

import (
	"fmt"
	"time"

	"github.com/lobba/scheduling-service/internal/domain"
	"github.com/lobba/scheduling-service/internal/integrations/settingsservice"
	"github.com/lobba/scheduling-service/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.BusinessID <= 0 {
		return fmt.Errorf("%w: businessID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.StartAt.IsZero() {
		return fmt.Errorf("%w: startAt is required", ErrInvalidInput)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must not exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	if req.BufferMinutes != nil && *req.BufferMinutes < 0 {
		return fmt.Errorf("%w: bufferMinutes must not be negative", ErrInvalidInput)
	}

	return nil
}

// validateWithinWorkingHours проверяет, что окно записи лежит внутри рабочих часов
// Границы сравниваются в таймзоне бизнеса
func validateWithinWorkingHours(
	workingHours settingsservice.DaySchedule,
	startAt, endAt time.Time,
	loc *time.Location,
) error {
	if !workingHours.IsOpen || workingHours.OpenTime == nil || workingHours.CloseTime == nil {
		return ErrBusinessClosed
	}

	openTime, err := types.NewTimeStringFromString(*workingHours.OpenTime)
	if err != nil {
		return fmt.Errorf("%w: invalid open time: %v", ErrInternal, err)
	}

	closeTime, err := types.NewTimeStringFromString(*workingHours.CloseTime)
	if err != nil {
		return fmt.Errorf("%w: invalid close time: %v", ErrInternal, err)
	}

	startLocal := types.NewTimeString(startAt.In(loc))
	endLocal := types.NewTimeString(endAt.In(loc))

	if startLocal.IsBefore(openTime) || endLocal.IsAfter(closeTime) {
		return ErrOutsideWorkingHours
	}

	return nil
}

// workingHoursForDay возвращает расписание бизнеса на указанный день недели
func workingHoursForDay(business *settingsservice.Business, date time.Time) settingsservice.DaySchedule {
	switch date.Weekday() {
	case time.Monday:
		return business.WorkingHours.Monday
	case time.Tuesday:
		return business.WorkingHours.Tuesday
	case time.Wednesday:
		return business.WorkingHours.Wednesday
	case time.Thursday:
		return business.WorkingHours.Thursday
	case time.Friday:
		return business.WorkingHours.Friday
	case time.Saturday:
		return business.WorkingHours.Saturday
	case time.Sunday:
		return business.WorkingHours.Sunday
	default:
		return settingsservice.DaySchedule{IsOpen: false}
	}
}

// servicePrice извлекает цену услуги; nil трактуется как 0.0
func servicePrice(service *settingsservice.Service) float64 {
	if service.Price == nil {
		return 0.0
	}
	return *service.Price
}
