package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrInvariantViolation = errors.New("invariante violada")
	ErrTransactionFailure = errors.New("fallo de transacción")
)

// InsufficientStockError detalla una salida rechazada por falta de existencias.
// errors.Is(err, ErrInsufficientStock) es verdadero.
type InsufficientStockError struct {
	VariantID   string
	WarehouseID string
	Available   int64
	Requested   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para variante %s en bodega %s: disponible %d, solicitado %d",
		e.VariantID, e.WarehouseID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// NotFoundError identifica el recurso ausente (bodega, variante, pedido, compra, movimiento).
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s no encontrado", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound construye un *NotFoundError.
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// InvariantError reporta una regla de negocio que la operación habría roto.
// Nunca se corrige en silencio: se devuelve al caller como error 400.
type InvariantError struct {
	Rule   string
	Detail string
}

func (e *InvariantError) Error() string {
	if e.Detail == "" {
		return "invariante violada: " + e.Rule
	}
	return fmt.Sprintf("invariante violada: %s: %s", e.Rule, e.Detail)
}

func (e *InvariantError) Is(target error) bool { return target == ErrInvariantViolation }

// Invariant construye un *InvariantError con detalle formateado.
func Invariant(rule, format string, args ...any) error {
	return &InvariantError{Rule: rule, Detail: fmt.Sprintf(format, args...)}
}

// Reglas conocidas.
const (
	RuleNonPositiveQuantity   = "cantidad_no_positiva"
	RuleSecondPrimary         = "segunda_bodega_principal"
	RuleInactiveWarehouse     = "bodega_inactiva"
	RuleWarehouseHasHistory   = "bodega_con_historial"
	RuleInvalidTransition     = "transicion_invalida"
	RuleSameWarehouseTransfer = "traslado_misma_bodega"
	RuleEmptyDocument         = "documento_sin_lineas"
	RuleZeroMovement          = "movimiento_en_cero"
)

// TransactionError envuelve un fallo del almacenamiento subyacente. Siempre provoca rollback.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transacción (%s): %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

func (e *TransactionError) Is(target error) bool { return target == ErrTransactionFailure }

// IsBusinessError indica si err pertenece a la taxonomía de negocio (se devuelve tal cual al caller).
// Cualquier otro error se trata como fallo de transacción.
func IsBusinessError(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrInvalidInput, ErrDuplicate, ErrUnauthorized, ErrForbidden,
		ErrConflict, ErrInsufficientStock, ErrInvariantViolation, ErrTransactionFailure,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
