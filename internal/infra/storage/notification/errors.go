package notification

import "errors"

var (
	// ErrJobNotFound возвращается, когда задача не найдена
	ErrJobNotFound = errors.New("notification.repository: job not found")

	// ErrJobNotClaimed возвращается, когда задача уже не в статусе SENDING
	ErrJobNotClaimed = errors.New("notification.repository: job is not claimed")

	// ErrContextNotFound возвращается, когда не найдено бронирование для контекста сообщения
	ErrContextNotFound = errors.New("notification.repository: booking context not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("notification.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("notification.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("notification.repository: failed to scan row")
)
