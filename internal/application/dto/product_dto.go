package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	Code      int64           `json:"code" validate:"required,gt=0"`
	Name      string          `json:"name" validate:"required,min=1,max=100"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// UpdateProductRequest actualización parcial (solo los campos presentes).
type UpdateProductRequest struct {
	Name      *string          `json:"name" validate:"omitempty,min=1,max=100"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	Code      int64           `json:"code"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
