package barbershop

import "errors"

var (
	// ErrBarbershopNotFound возвращается, когда барбершоп не найден
	ErrBarbershopNotFound = errors.New("barbershop.repository: barbershop not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена или не принадлежит барбершопу
	ErrServiceNotFound = errors.New("barbershop.repository: service not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("barbershop.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("barbershop.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("barbershop.repository: failed to scan row")
)
