package fulfill_waitlist

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("fulfill_waitlist: internal error")

	// errSlotTaken откатывает транзакцию, когда освобождённый слот уже занят
	errSlotTaken = errors.New("fulfill_waitlist: slot taken")
)
