package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Cantina-api/internal/domain"
	"github.com/jhoicas/Cantina-api/internal/domain/entity"
	"github.com/jhoicas/Cantina-api/internal/domain/repository"
)

var _ repository.Ledger = (*Ledger)(nil)

const saleColumns = `id, product_code, product_name, quantity, unit_price, total, created_at`

// Ledger stock y ventas sobre PostgreSQL. El descuento de stock es un UPDATE condicional:
// verificación y escritura ocurren en la misma sentencia.
type Ledger struct {
	q    Querier
	inTx bool
}

// NewLedger construye el Ledger sobre el pool (lecturas de reportes).
func NewLedger(q Querier) *Ledger {
	return &Ledger{q: q}
}

// newTxLedger Ledger atado a una transacción: AppendSale usa un savepoint para que
// la transacción siga usable y la compensación pueda ejecutarse.
func newTxLedger(tx pgx.Tx) *Ledger {
	return &Ledger{q: tx, inTx: true}
}

// GetOrInitStock devuelve el stock creando el registro en cero si no existe.
func (l *Ledger) GetOrInitStock(ctx context.Context, code int64) (*entity.Stock, error) {
	query := `
		INSERT INTO stock (product_code, quantity, updated_at) VALUES ($1, 0, now())
		ON CONFLICT (product_code) DO UPDATE SET product_code = EXCLUDED.product_code
		RETURNING product_code, quantity, updated_at`
	var st entity.Stock
	if err := l.q.QueryRow(ctx, query, code).Scan(&st.ProductCode, &st.Quantity, &st.UpdatedAt); err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("producto %d: %w", code, domain.ErrProductNotFound)
		}
		return nil, domain.NewStorageError("init stock", err)
	}
	return &st, nil
}

// ApplyStockDelta suma delta al stock. Para delta negativo el UPDATE solo afecta la fila si
// el resultado es >= 0; si no hay fila devuelta se informa la cantidad vigente.
func (l *Ledger) ApplyStockDelta(ctx context.Context, code, delta int64) (*entity.Stock, error) {
	var st entity.Stock
	if delta >= 0 {
		query := `
			INSERT INTO stock (product_code, quantity, updated_at) VALUES ($1, $2, now())
			ON CONFLICT (product_code) DO UPDATE
			SET quantity = stock.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
			RETURNING product_code, quantity, updated_at`
		if err := l.q.QueryRow(ctx, query, code, delta).Scan(&st.ProductCode, &st.Quantity, &st.UpdatedAt); err != nil {
			if isForeignKeyViolation(err) {
				return nil, fmt.Errorf("producto %d: %w", code, domain.ErrProductNotFound)
			}
			return nil, domain.NewStorageError("increase stock", err)
		}
		return &st, nil
	}

	query := `
		UPDATE stock SET quantity = quantity + $2, updated_at = now()
		WHERE product_code = $1 AND quantity + $2 >= 0
		RETURNING product_code, quantity, updated_at`
	err := l.q.QueryRow(ctx, query, code, delta).Scan(&st.ProductCode, &st.Quantity, &st.UpdatedAt)
	if err == nil {
		return &st, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewStorageError("decrease stock", err)
	}
	current, err := l.GetStock(ctx, code)
	if err != nil {
		return nil, err
	}
	neg := &domain.NegativeStockError{Code: code, Delta: delta}
	if current != nil {
		neg.Current = current.Quantity
	}
	return nil, neg
}

// AppendSale inserta la venta. Dentro de una transacción el INSERT va en un savepoint.
func (l *Ledger) AppendSale(ctx context.Context, sale *entity.Sale) (string, error) {
	if sale == nil || sale.ID == "" {
		return "", domain.InvalidInput("venta sin ID")
	}
	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id::text`
	args := []any{sale.ID, sale.ProductCode, sale.ProductName, sale.Quantity, sale.UnitPrice, sale.Total, sale.CreatedAt}

	if l.inTx {
		if _, err := l.q.Exec(ctx, `SAVEPOINT append_sale`); err != nil {
			return "", domain.NewStorageError("savepoint", err)
		}
	}
	var id string
	if err := l.q.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if l.inTx {
			if _, rbErr := l.q.Exec(ctx, `ROLLBACK TO SAVEPOINT append_sale`); rbErr != nil {
				err = errors.Join(err, rbErr)
			}
		}
		return "", domain.NewStorageError("insert sale", err)
	}
	if l.inTx {
		if _, err := l.q.Exec(ctx, `RELEASE SAVEPOINT append_sale`); err != nil {
			return "", domain.NewStorageError("release savepoint", err)
		}
	}
	return id, nil
}

// AggregateSales total y cantidad sobre todo el filtro; registros más recientes primero.
func (l *Ledger) AggregateSales(ctx context.Context, filter repository.SaleFilter) (*repository.SaleAggregate, error) {
	agg := &repository.SaleAggregate{}
	query := `SELECT COALESCE(SUM(total), 0), COUNT(*) FROM sales WHERE ($1::bigint IS NULL OR product_code = $1)`
	if err := l.q.QueryRow(ctx, query, filter.ProductCode).Scan(&agg.TotalRevenue, &agg.Count); err != nil {
		return nil, domain.NewStorageError("aggregate sales", err)
	}
	if !filter.WithRecords || agg.Count == 0 {
		return agg, nil
	}

	var limit *int
	if filter.Limit > 0 {
		limit = &filter.Limit
	}
	rows, err := l.q.Query(ctx, `
		SELECT id::text, product_code, product_name, quantity, unit_price, total, created_at
		FROM sales
		WHERE ($1::bigint IS NULL OR product_code = $1)
		ORDER BY created_at DESC, seq DESC
		LIMIT $2`, filter.ProductCode, limit)
	if err != nil {
		return nil, domain.NewStorageError("list sales", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s entity.Sale
		if err := rows.Scan(&s.ID, &s.ProductCode, &s.ProductName, &s.Quantity, &s.UnitPrice, &s.Total, &s.CreatedAt); err != nil {
			return nil, domain.NewStorageError("scan sale", err)
		}
		agg.Records = append(agg.Records, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list sales", err)
	}
	return agg, nil
}

// GetStock devuelve (nil, nil) si el producto nunca tuvo stock.
func (l *Ledger) GetStock(ctx context.Context, code int64) (*entity.Stock, error) {
	var st entity.Stock
	err := l.q.QueryRow(ctx, `SELECT product_code, quantity, updated_at FROM stock WHERE product_code = $1`, code).
		Scan(&st.ProductCode, &st.Quantity, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.NewStorageError("get stock", err)
	}
	return &st, nil
}

// ListStock stock por código ascendente; Below filtra quantity < Below.
func (l *Ledger) ListStock(ctx context.Context, filter repository.StockFilter) ([]*entity.Stock, error) {
	rows, err := l.q.Query(ctx, `
		SELECT product_code, quantity, updated_at FROM stock
		WHERE ($1::bigint IS NULL OR quantity < $1)
		ORDER BY product_code`, filter.Below)
	if err != nil {
		return nil, domain.NewStorageError("list stock", err)
	}
	defer rows.Close()
	var list []*entity.Stock
	for rows.Next() {
		var st entity.Stock
		if err := rows.Scan(&st.ProductCode, &st.Quantity, &st.UpdatedAt); err != nil {
			return nil, domain.NewStorageError("scan stock", err)
		}
		list = append(list, &st)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list stock", err)
	}
	return list, nil
}

// DeleteEmptyStock elimina el registro solo si está en cero.
func (l *Ledger) DeleteEmptyStock(ctx context.Context, code int64) error {
	tag, err := l.q.Exec(ctx, `DELETE FROM stock WHERE product_code = $1 AND quantity = 0`, code)
	if err != nil {
		return domain.NewStorageError("delete stock", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	st, err := l.GetStock(ctx, code)
	if err != nil {
		return err
	}
	if st != nil && st.Quantity > 0 {
		return fmt.Errorf("producto %d con stock %d: %w", code, st.Quantity, domain.ErrConflict)
	}
	return nil
}
