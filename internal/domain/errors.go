package domain

import (
	"errors"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrQuotaExceeded     = errors.New("capacidad del almacenamiento excedida")
	ErrStorageFull       = errors.New("almacenamiento lleno: no se pudo guardar tras la limpieza")
	ErrInvalidSnapshot   = errors.New("snapshot inválido")
)

// FieldError describe un campo de negocio inválido.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ValidationErrors agrupa los errores de campo detectados antes de persistir.
// errors.Is(err, ErrInvalidInput) es verdadero para cualquier ValidationErrors.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ErrInvalidInput.Error()
	}
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Is(target error) bool {
	return target == ErrInvalidInput
}
