package availability

import "errors"

var (
	// ErrInvalidDuration длительность услуги должна быть положительной
	ErrInvalidDuration = errors.New("availability: invalid duration")

	// ErrInvalidStep шаг сетки слотов должен быть положительным
	ErrInvalidStep = errors.New("availability: invalid slot step")
)
