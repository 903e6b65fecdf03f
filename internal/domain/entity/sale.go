package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale registro inmutable de una venta. UnitPrice y ProductName son una foto
// del producto al momento de verificar el stock; no se recalculan después.
type Sale struct {
	ID          string
	ProductCode int64
	ProductName string
	Quantity    int64
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
	CreatedAt   time.Time
}

// NewSale arma la venta con Total = UnitPrice × quantity.
func NewSale(id string, product *Product, quantity int64, at time.Time) *Sale {
	return &Sale{
		ID:          id,
		ProductCode: product.Code,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   product.UnitPrice,
		Total:       product.UnitPrice.Mul(decimal.NewFromInt(quantity)),
		CreatedAt:   at,
	}
}
