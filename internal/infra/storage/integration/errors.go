package integration

import "errors"

var (
	// ErrIntegrationNotFound возвращается, когда привязка календаря не найдена
	ErrIntegrationNotFound = errors.New("integration.repository: calendar integration not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("integration.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("integration.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("integration.repository: failed to scan row")
)
