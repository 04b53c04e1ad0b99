package reconcile_payment

import "errors"

var (
	// ErrInvalidInput возвращается при невалидных входных данных
	ErrInvalidInput = errors.New("reconcile_payment: invalid input")

	// ErrInvalidWebhook возвращается, когда подпись или тело webhook не прошли проверку
	ErrInvalidWebhook = errors.New("reconcile_payment: invalid webhook")

	// ErrSessionNotFound возвращается, когда провайдер не знает checkout-сессию
	ErrSessionNotFound = errors.New("reconcile_payment: session not found")

	// ErrBookingNotFound возвращается, когда сессия не привязана ни к одному бронированию
	ErrBookingNotFound = errors.New("reconcile_payment: booking not found")

	// ErrConflict возвращается, когда событие противоречит состоянию провайдера или хранилища
	ErrConflict = errors.New("reconcile_payment: conflict")

	// ErrProvider возвращается при недоступности платёжного провайдера
	ErrProvider = errors.New("reconcile_payment: payment provider error")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reconcile_payment: internal error")

	// errRevivalBlocked откатывает транзакцию, когда оплаченное отменённое бронирование
	// нельзя восстановить, потому что слот уже занят
	errRevivalBlocked = errors.New("reconcile_payment: revival blocked by taken slot")
)
