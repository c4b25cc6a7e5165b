package get_day_availability

import (
	"time"

	"github.com/lobba/scheduling-service/internal/domain"
	"github.com/lobba/scheduling-service/internal/integrations/settingsservice"
	"github.com/lobba/scheduling-service/pkg/types"
)

// generateSlotStarts генерирует времена начала слотов от открытия до закрытия
// Шаг генерации фиксированный (domain.SlotStepMinutes), кандидаты,
// чей конец (start + serviceDuration) выходит за закрытие, отбрасываются
func generateSlotStarts(
	workingHours settingsservice.DaySchedule,
	serviceDurationMinutes int,
) ([]types.TimeString, error) {
	if !workingHours.IsOpen || workingHours.OpenTime == nil || workingHours.CloseTime == nil {
		return []types.TimeString{}, nil
	}

	openTime, err := types.NewTimeStringFromString(*workingHours.OpenTime)
	if err != nil {
		return nil, err
	}

	closeTime, err := types.NewTimeStringFromString(*workingHours.CloseTime)
	if err != nil {
		return nil, err
	}

	starts := make([]types.TimeString, 0)
	current := openTime

	for current.IsBefore(closeTime) {
		slotEnd, err := current.AddMinutes(serviceDurationMinutes)
		if err != nil {
			break
		}
		if slotEnd.IsAfter(closeTime) {
			break
		}

		starts = append(starts, current)
		current, err = current.AddMinutes(domain.SlotStepMinutes)
		if err != nil {
			break
		}
	}

	return starts, nil
}

// annotateSlots вычисляет загруженность каждого слота
// Пересечение проверяется по половинно-открытым интервалам: запись,
// заканчивающаяся ровно в начале слота, пересечением не считается
func annotateSlots(
	starts []types.TimeString,
	date time.Time,
	loc *time.Location,
	serviceDurationMinutes int,
	reservations []*domain.Reservation,
	blocks []*domain.AvailabilityBlock,
	maxCapacity int,
) ([]Slot, error) {
	result := make([]Slot, 0, len(starts))

	for _, start := range starts {
		startAt, err := start.OnDate(date, loc)
		if err != nil {
			return nil, err
		}
		endAt := startAt.Add(time.Duration(serviceDurationMinutes) * time.Minute)

		window := domain.Interval{Start: startAt, End: endAt}
		count := domain.CountOverlapping(window, reservations, blocks)

		remaining := maxCapacity - count
		if remaining < 0 {
			remaining = 0
		}

		result = append(result, Slot{
			StartAt:        startAt.UTC(),
			EndAt:          endAt.UTC(),
			Available:      count < maxCapacity,
			CurrentCount:   count,
			MaxCapacity:    maxCapacity,
			SlotsRemaining: remaining,
		})
	}

	return result, nil
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

// isDateInPast проверяет, что дата раньше сегодняшнего дня в указанной таймзоне
func isDateInPast(date, now time.Time, loc *time.Location) bool {
	nowLocal := now.In(loc)
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	nowOnly := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), 0, 0, 0, 0, loc)
	return dateOnly.Before(nowOnly)
}
