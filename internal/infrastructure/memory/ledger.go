package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/Cantina-api/internal/domain"
	"github.com/jhoicas/Cantina-api/internal/domain/entity"
	"github.com/jhoicas/Cantina-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.Ledger = (*Ledger)(nil)

// Ledger implementación en memoria del puerto Ledger.
type Ledger struct {
	s *Store
}

// NewLedger construye el Ledger sobre el Store.
func NewLedger(s *Store) *Ledger {
	return &Ledger{s: s}
}

// GetOrInitStock devuelve el stock creando el registro en cero si no existe.
func (l *Ledger) GetOrInitStock(_ context.Context, code int64) (*entity.Stock, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	st, ok := l.s.stock[code]
	if !ok {
		st = entity.Stock{ProductCode: code, UpdatedAt: l.s.now()}
		l.s.stock[code] = st
	}
	return &st, nil
}

// ApplyStockDelta verifica el invariante y confirma el nuevo valor bajo el mismo lock.
func (l *Ledger) ApplyStockDelta(_ context.Context, code, delta int64) (*entity.Stock, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	st, ok := l.s.stock[code]
	if !ok {
		st = entity.Stock{ProductCode: code}
	}
	if st.Quantity+delta < 0 {
		return nil, &domain.NegativeStockError{Code: code, Current: st.Quantity, Delta: delta}
	}
	st.Quantity += delta
	st.UpdatedAt = l.s.now()
	l.s.stock[code] = st
	return &st, nil
}

// AppendSale agrega la venta al final del registro.
func (l *Ledger) AppendSale(_ context.Context, sale *entity.Sale) (string, error) {
	if sale == nil || sale.ID == "" {
		return "", fmt.Errorf("append sale: %w", domain.InvalidInput("venta sin ID"))
	}
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	l.s.sales = append(l.s.sales, *sale)
	return sale.ID, nil
}

// AggregateSales suma y cuenta las ventas del filtro; los registros van de la más reciente a la más antigua.
func (l *Ledger) AggregateSales(_ context.Context, filter repository.SaleFilter) (*repository.SaleAggregate, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	agg := &repository.SaleAggregate{TotalRevenue: decimal.Zero}
	for i := len(l.s.sales) - 1; i >= 0; i-- {
		sale := l.s.sales[i]
		if filter.ProductCode != nil && sale.ProductCode != *filter.ProductCode {
			continue
		}
		agg.Count++
		agg.TotalRevenue = agg.TotalRevenue.Add(sale.Total)
		if filter.WithRecords && (filter.Limit <= 0 || len(agg.Records) < filter.Limit) {
			agg.Records = append(agg.Records, &sale)
		}
	}
	// Inserciones en orden de llegada; el recorrido inverso ya deja newest-first,
	// el sort estable solo corrige relojes no monótonos.
	sort.SliceStable(agg.Records, func(i, j int) bool {
		return agg.Records[i].CreatedAt.After(agg.Records[j].CreatedAt)
	})
	return agg, nil
}

// GetStock devuelve (nil, nil) si el producto nunca tuvo stock.
func (l *Ledger) GetStock(_ context.Context, code int64) (*entity.Stock, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	st, ok := l.s.stock[code]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

// ListStock lista el stock ordenado por código, opcionalmente solo los que están por debajo de Below.
func (l *Ledger) ListStock(_ context.Context, filter repository.StockFilter) ([]*entity.Stock, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	list := make([]*entity.Stock, 0, len(l.s.stock))
	for _, st := range l.s.stock {
		if filter.Below != nil && st.Quantity >= *filter.Below {
			continue
		}
		st := st
		list = append(list, &st)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ProductCode < list[j].ProductCode })
	return list, nil
}

// DeleteEmptyStock elimina el registro si la cantidad es cero.
func (l *Ledger) DeleteEmptyStock(_ context.Context, code int64) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	st, ok := l.s.stock[code]
	if !ok {
		return nil
	}
	if st.Quantity > 0 {
		return fmt.Errorf("producto %d con stock %d: %w", code, st.Quantity, domain.ErrConflict)
	}
	delete(l.s.stock, code)
	return nil
}
