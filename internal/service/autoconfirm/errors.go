package autoconfirm

import "errors"

var (
	// ErrReservationNotFound возвращается, когда запись не найдена
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrNotPending возвращается при попытке подтвердить запись не в статусе pending
	ErrNotPending = errors.New("reservation is not pending")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("autoconfirm service: internal error")
)
