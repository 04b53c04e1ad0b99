package notifications

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование для планирования не найдено
	ErrBookingNotFound = errors.New("notifications: booking not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("notifications: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("notifications: internal error")
)
