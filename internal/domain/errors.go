package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrForbidden         = errors.New("acceso denegado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrIllegalTransition = errors.New("transición de estado no permitida")
	ErrPolicyViolation   = errors.New("regla de negocio violada")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrEmailAlreadyUsed  = errors.New("el email ya está registrado")
)

// InsufficientStockError lleva la cantidad disponible para que el caller pueda ajustar
// la solicitud. errors.Is(err, ErrInsufficientStock) sigue funcionando.
type InsufficientStockError struct {
	PartID    string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: solicitado %d, disponible %d", e.Requested, e.Available)
}

// Unwrap permite comparar contra el sentinel con errors.Is.
func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ConflictError acompaña ErrConflict con el campo que violó la unicidad
// (sku, document, code...), para que la respuesta HTTP lo señale.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string { return "valor duplicado en el campo " + e.Field }

func (e *ConflictError) Unwrap() error { return ErrConflict }

// PolicyError acompaña ErrPolicyViolation con el motivo específico para el usuario.
type PolicyError struct {
	Reason string
}

func (e *PolicyError) Error() string { return "regla de negocio violada: " + e.Reason }

func (e *PolicyError) Unwrap() error { return ErrPolicyViolation }
