package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrSlotTaken возвращается, когда слот мастера уже занят неотменённым бронированием
	ErrSlotTaken = errors.New("booking.repository: slot already taken")

	// ErrStatusChanged возвращается, когда условное обновление не нашло строку в ожидаемом состоянии
	ErrStatusChanged = errors.New("booking.repository: booking status changed concurrently")

	// ErrSessionAlreadyLinked возвращается, когда checkout-сессия уже привязана к другому бронированию
	ErrSessionAlreadyLinked = errors.New("booking.repository: checkout session already linked")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)
