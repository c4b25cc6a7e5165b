package webhookmgr

import "errors"

var (
	// ErrChannelNotFound возвращается, когда уведомление не резолвится в бизнес
	ErrChannelNotFound = errors.New("webhook channel not found")

	// ErrUpstream возвращается при ошибках провайдера календаря
	ErrUpstream = errors.New("calendar provider error")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("webhookmgr service: internal error")
)
