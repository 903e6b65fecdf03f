package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo de la cantina.
// Code es único e inmutable; UnitPrice es decimal exacto (nunca float).
type Product struct {
	Code      int64
	Name      string
	UnitPrice decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}
