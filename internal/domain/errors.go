package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrUnauthenticated   = errors.New("no autenticado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrAlreadyExists     = errors.New("el recurso ya existe")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInsufficientStock = errors.New("stock insuficiente")

	// ErrInvalidCredentials y ErrInvalidToken son casos de ErrUnauthenticated.
	ErrInvalidCredentials = fmt.Errorf("credenciales inválidas: %w", ErrUnauthenticated)
	ErrInvalidToken       = fmt.Errorf("token inválido o expirado: %w", ErrUnauthenticated)
)

// Nombres de entidad usados en NotFoundError.
const (
	EntityUser    = "user"
	EntityProduct = "product"
	EntityClient  = "client"
	EntityOrder   = "order"
)

// NotFoundError indica qué entidad (y qué id) no existe. errors.Is(err, ErrNotFound) es true.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s no encontrado", e.Entity)
	}
	return fmt.Sprintf("%s %q no encontrado", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFound atajo para construir un NotFoundError.
func NewNotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// InsufficientStockError la cantidad pedida de un producto supera su existencia.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("el artículo %q excede la cantidad disponible (pedido %d, disponible %d)",
		e.ProductName, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// ValidationError describe un campo inválido. errors.Is(err, ErrInvalidInput) es true.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NewValidation atajo para construir un ValidationError.
func NewValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
