package dto

import "time"

// StockMovementRequest body para POST /api/stock/entries y /api/stock/exits.
type StockMovementRequest struct {
	ProductCode int64 `json:"product_code" validate:"required,gt=0"`
	Quantity    int64 `json:"quantity" validate:"required,gt=0"`
}

// StockResponse salida de un registro de stock.
type StockResponse struct {
	ProductCode int64     `json:"product_code"`
	Quantity    int64     `json:"quantity"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}
