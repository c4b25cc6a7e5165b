package calendarsync

import "errors"

var (
	// ErrNotConfigured возвращается, когда у бизнеса нет настроенной привязки календаря
	ErrNotConfigured = errors.New("calendar is not configured for this business")

	// ErrOAuth возвращается при ошибках обмена кода и обновления токенов
	ErrOAuth = errors.New("calendar oauth error")

	// ErrUpstream возвращается при ошибках провайдера календаря
	ErrUpstream = errors.New("calendar provider error")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("calendarsync service: internal error")
)
