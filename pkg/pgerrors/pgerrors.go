package pgerrors

import (
	"errors"

	"github.com/lib/pq"
)

// Коды ошибок postgres, которые репозитории переводят в доменные ошибки
const (
	CodeUniqueViolation    pq.ErrorCode = "23505"
	CodeExclusionViolation pq.ErrorCode = "23P01"
	CodeSerializationFail  pq.ErrorCode = "40001"
)

func code(err error) (pq.ErrorCode, string, bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return "", "", false
	}
	return pqErr.Code, pqErr.Constraint, true
}

// IsUniqueViolation нарушение уникального индекса
// Если переданы имена ограничений, проверяет, что нарушено одно из них
func IsUniqueViolation(err error, constraints ...string) bool {
	return is(err, CodeUniqueViolation, constraints)
}

// IsExclusionViolation нарушение EXCLUDE ограничения (пересечение интервалов)
func IsExclusionViolation(err error, constraints ...string) bool {
	return is(err, CodeExclusionViolation, constraints)
}

// IsSerializationFailure конфликт сериализуемой транзакции
func IsSerializationFailure(err error) bool {
	c, _, ok := code(err)
	return ok && c == CodeSerializationFail
}

func is(err error, want pq.ErrorCode, constraints []string) bool {
	c, constraint, ok := code(err)
	if !ok || c != want {
		return false
	}
	if len(constraints) == 0 {
		return true
	}
	for _, name := range constraints {
		if name == constraint {
			return true
		}
	}
	return false
}
