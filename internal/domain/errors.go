package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrProductNotFound   = errors.New("producto no encontrado")
	ErrDuplicateCode     = errors.New("código de producto ya registrado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrNegativeStock     = errors.New("el stock no puede quedar negativo")
	ErrStorage           = errors.New("falla de almacenamiento")
)

// InvalidInput envuelve ErrInvalidInput con el detalle del campo rechazado.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// NegativeStockError lo devuelve el Ledger cuando un delta dejaría la cantidad bajo cero.
// Current es la cantidad vigente al momento del rechazo.
type NegativeStockError struct {
	Code    int64
	Current int64
	Delta   int64
}

func (e *NegativeStockError) Error() string {
	return fmt.Sprintf("producto %d: stock %d, delta %d: %s", e.Code, e.Current, e.Delta, ErrNegativeStock.Error())
}

func (e *NegativeStockError) Is(target error) bool { return target == ErrNegativeStock }

// InsufficientStockError regla de negocio: la venta o salida pide más de lo disponible.
type InsufficientStockError struct {
	Code      int64
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el producto %d: solicitado %d, disponible %d", e.Code, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// StorageError falla de la capa de persistencia. El llamador puede reintentar;
// el núcleo nunca reintenta por su cuenta.
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError envuelve err salvo que ya sea un StorageError o un error de dominio.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) || isDomainError(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorage.Error(), e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func isDomainError(err error) bool {
	for _, target := range []error{
		ErrInvalidInput, ErrProductNotFound, ErrDuplicateCode,
		ErrInsufficientStock, ErrConflict, ErrNegativeStock,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
