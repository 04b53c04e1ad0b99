package twilio

import "errors"

var (
	// ErrInvalidDestination возвращается, когда провайдер отклонил номер получателя
	ErrInvalidDestination = errors.New("twilio client: invalid destination")

	// ErrSend возвращается при ошибке отправки сообщения
	ErrSend = errors.New("twilio client: send failed")

	// ErrTimeout возвращается, когда отправка не уложилась в отведённое время
	ErrTimeout = errors.New("twilio client: send timed out")
)
