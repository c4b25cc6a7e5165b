package create_reservation

import "errors"

var (
	// ErrBusinessNotFound возвращается, когда бизнес не найден
	ErrBusinessNotFound = errors.New("business not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("service not found")

	// ErrBusinessClosed возвращается, когда бизнес закрыт в указанную дату
	ErrBusinessClosed = errors.New("business is closed on this date")

	// ErrOutsideWorkingHours возвращается, когда слот выходит за рабочие часы
	ErrOutsideWorkingHours = errors.New("slot is outside working hours")

	// ErrInvalidDate возвращается при попытке записи на прошедшее время
	ErrInvalidDate = errors.New("invalid reservation date")

	// ErrSlotNotAvailable возвращается, когда вместимость слота исчерпана
	ErrSlotNotAvailable = errors.New("slot is not available")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
