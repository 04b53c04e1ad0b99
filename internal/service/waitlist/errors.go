package waitlist

import "errors"

var (
	// ErrEntryNotFound возвращается, когда запись не найдена или не принадлежит пользователю
	ErrEntryNotFound = errors.New("waitlist.service: entry not found")

	// ErrAlreadyOnWaitlist возвращается при повторной активной записи на тот же день
	ErrAlreadyOnWaitlist = errors.New("waitlist.service: already on waitlist")

	ErrBarbershopNotFound = errors.New("waitlist.service: barbershop not found")
	ErrBarberNotFound     = errors.New("waitlist.service: barber not found")
	ErrServiceNotFound    = errors.New("waitlist.service: service not found")

	// ErrInvalidDate возвращается для прошедшей или слишком далёкой даты
	ErrInvalidDate = errors.New("waitlist.service: invalid date")

	// ErrAccessDenied возвращается при чтении чужого листа ожидания
	ErrAccessDenied = errors.New("waitlist.service: access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("waitlist.service: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("waitlist.service: internal error")
)
