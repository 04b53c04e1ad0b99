package stripe

import "errors"

var (
	// ErrSessionNotFound возвращается, когда провайдер не знает checkout-сессию
	ErrSessionNotFound = errors.New("stripe client: checkout session not found")

	// ErrInvalidSignature возвращается, когда подпись webhook не прошла проверку
	ErrInvalidSignature = errors.New("stripe client: invalid webhook signature")

	// ErrInvalidPayload возвращается, когда тело webhook не удалось разобрать
	ErrInvalidPayload = errors.New("stripe client: invalid webhook payload")

	// ErrProvider возвращается при ошибках обращения к API провайдера
	ErrProvider = errors.New("stripe client: provider error")
)
