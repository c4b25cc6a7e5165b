package googlecalendar

import "errors"

var (
	// ErrUnauthorized возвращается на 401 - access token истёк или отозван
	ErrUnauthorized = errors.New("googlecalendar client: unauthorized")

	// ErrNotFound возвращается, когда календарь, событие или канал не найдены
	ErrNotFound = errors.New("googlecalendar client: resource not found")

	// ErrOAuth возвращается при ошибке обмена кода или обновления токена
	ErrOAuth = errors.New("googlecalendar client: oauth error")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("googlecalendar client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе провайдера
	ErrInvalidResponse = errors.New("googlecalendar client: invalid response")

	// ErrUpstream возвращается при 5xx от провайдера
	ErrUpstream = errors.New("googlecalendar client: upstream failure")
)
