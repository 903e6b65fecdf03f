package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Cantina-api/internal/domain"
	"github.com/jhoicas/Cantina-api/internal/domain/entity"
	"github.com/jhoicas/Cantina-api/internal/domain/repository"
	"github.com/jhoicas/Cantina-api/pkg/keylock"
	"github.com/jhoicas/Cantina-api/pkg/logger"
)

// Engine motor de inventario: único escritor de Stock y Sale.
// Toda operación sobre un código corre bajo el lock de ese código y dentro de una transacción
// (TxRunner), por lo que las ventas de un mismo producto quedan serializadas y las de
// productos distintos nunca compiten entre sí.
type Engine struct {
	tx    repository.TxRunner
	locks *keylock.Locker
	log   *logger.Logger
	now   func() time.Time
	newID func() string
}

// Option configura el Engine (reloj y generador de IDs, útil en tests).
type Option func(*Engine)

// WithClock reemplaza el reloj usado para sellar ventas.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator reemplaza el generador de IDs de venta.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// NewEngine construye el motor. locks debe ser el mismo Locker que usa el catálogo.
func NewEngine(tx repository.TxRunner, locks *keylock.Locker, log *logger.Logger, opts ...Option) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	e := &Engine{
		tx:    tx,
		locks: locks,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StockEntry suma quantity unidades al stock del producto.
func (e *Engine) StockEntry(ctx context.Context, code, quantity int64) (*entity.Stock, error) {
	if err := validateMovement(code, quantity); err != nil {
		return nil, err
	}
	return e.applyDelta(ctx, code, quantity)
}

// StockExit descuenta quantity unidades sin registrar venta (merma, consumo interno).
func (e *Engine) StockExit(ctx context.Context, code, quantity int64) (*entity.Stock, error) {
	if err := validateMovement(code, quantity); err != nil {
		return nil, err
	}
	return e.applyDelta(ctx, code, -quantity)
}

func (e *Engine) applyDelta(ctx context.Context, code, delta int64) (*entity.Stock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	unlock := e.locks.Lock(code)
	defer unlock()
	ctx = context.WithoutCancel(ctx)

	var stock *entity.Stock
	err := e.tx.Run(ctx, func(products repository.ProductRepository, ledger repository.Ledger) error {
		product, err := products.GetByCode(ctx, code)
		if err != nil {
			return domain.NewStorageError("load product", err)
		}
		if product == nil {
			return fmt.Errorf("producto %d: %w", code, domain.ErrProductNotFound)
		}
		stock, err = ledger.ApplyStockDelta(ctx, code, delta)
		if err != nil {
			return insufficient(code, -delta, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Debug().Int64("product_code", code).Int64("delta", delta).Int64("quantity", stock.Quantity).Msg("stock actualizado")
	return stock, nil
}

// RegisterSale verifica stock, descuenta la cantidad y registra la venta como una sola unidad.
// Si algo falla, stock y ventas quedan como si la venta nunca hubiera ocurrido.
// Una vez tomado el lock la operación no se cancela: el contexto solo se consulta antes.
func (e *Engine) RegisterSale(ctx context.Context, code, quantity int64) (*entity.Sale, error) {
	if err := validateMovement(code, quantity); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	unlock := e.locks.Lock(code)
	defer unlock()
	ctx = context.WithoutCancel(ctx)

	var sale *entity.Sale
	err := e.tx.Run(ctx, func(products repository.ProductRepository, ledger repository.Ledger) error {
		// El precio se lee dentro de la sección crítica: es la foto que queda en la venta.
		product, err := products.GetForUpdate(ctx, code)
		if err != nil {
			return domain.NewStorageError("load product", err)
		}
		if product == nil {
			return fmt.Errorf("producto %d: %w", code, domain.ErrProductNotFound)
		}

		if _, err := ledger.ApplyStockDelta(ctx, code, -quantity); err != nil {
			return insufficient(code, quantity, err)
		}

		s := entity.NewSale(e.newID(), product, quantity, e.now())
		id, err := ledger.AppendSale(ctx, s)
		if err != nil {
			return e.compensate(ctx, ledger, code, quantity, err)
		}
		s.ID = id
		sale = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("sale_id", sale.ID).
		Int64("product_code", code).
		Int64("quantity", quantity).
		Str("total", sale.Total.StringFixed(2)).
		Msg("venta registrada")
	return sale, nil
}

// compensate devuelve al stock lo descontado cuando la venta no pudo registrarse.
func (e *Engine) compensate(ctx context.Context, ledger repository.Ledger, code, quantity int64, cause error) error {
	failure := &domain.StorageError{Op: "append sale", Err: cause}
	if _, err := ledger.ApplyStockDelta(ctx, code, quantity); err != nil {
		e.log.Error().
			Err(err).
			Int64("product_code", code).
			Int64("quantity", quantity).
			Msg("no se pudo revertir el descuento de stock")
		return errors.Join(failure, fmt.Errorf("compensación de stock del producto %d: %w", code, err))
	}
	e.log.Warn().Err(cause).Int64("product_code", code).Msg("venta revertida")
	return failure
}

// insufficient traduce el rechazo del Ledger a la regla de negocio.
func insufficient(code, requested int64, err error) error {
	var neg *domain.NegativeStockError
	if errors.As(err, &neg) {
		return &domain.InsufficientStockError{Code: code, Requested: requested, Available: neg.Current}
	}
	return domain.NewStorageError("apply stock delta", err)
}

func validateMovement(code, quantity int64) error {
	if code <= 0 {
		return domain.InvalidInput("código de producto %d debe ser positivo", code)
	}
	if quantity <= 0 {
		return domain.InvalidInput("cantidad %d debe ser positiva", quantity)
	}
	return nil
}
