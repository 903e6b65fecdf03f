package repository

import (
	"context"

	"github.com/jhoicas/Cantina-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SaleFilter filtra la agregación de ventas.
// Sin WithRecords solo se calculan total y cantidad; Limit 0 = sin límite de registros.
type SaleFilter struct {
	ProductCode *int64
	WithRecords bool
	Limit       int
}

// SaleAggregate resultado de AggregateSales. Records va de la más reciente a la más antigua.
type SaleAggregate struct {
	TotalRevenue decimal.Decimal
	Count        int64
	Records      []*entity.Sale
}

// StockFilter filtra el listado de stock. Below selecciona quantity < *Below.
type StockFilter struct {
	Below *int64
}

// Ledger es el almacenamiento durable de Stock y Sale. Expone primitivas atómicas por
// producto: ningún llamador debe leer la cantidad y escribirla en dos pasos separados.
type Ledger interface {
	// GetOrInitStock devuelve el stock del producto creando un registro en cero si no existe.
	GetOrInitStock(ctx context.Context, code int64) (*entity.Stock, error)
	// ApplyStockDelta verifica y aplica current+delta en una sola operación indivisible.
	// Devuelve *domain.NegativeStockError si el resultado sería negativo.
	ApplyStockDelta(ctx context.Context, code, delta int64) (*entity.Stock, error)
	// AppendSale agrega la venta y devuelve su ID.
	AppendSale(ctx context.Context, sale *entity.Sale) (string, error)
	AggregateSales(ctx context.Context, filter SaleFilter) (*SaleAggregate, error)
	// GetStock devuelve (nil, nil) si el producto nunca tuvo stock.
	GetStock(ctx context.Context, code int64) (*entity.Stock, error)
	// ListStock ordena por código ascendente.
	ListStock(ctx context.Context, filter StockFilter) ([]*entity.Stock, error)
	// DeleteEmptyStock elimina el registro de stock en cero (usado al borrar un producto).
	DeleteEmptyStock(ctx context.Context, code int64) error
}
