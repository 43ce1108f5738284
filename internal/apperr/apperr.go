package apperr

import "errors"

// Ошибки доменного уровня. Обработчики переводят их в HTTP-статусы,
// репозитории заворачивают через fmt.Errorf("...: %w", ...).
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
)
