package entity

import "time"

// Stock cantidad disponible de un producto (1:1 con Product, creado en la primera entrada).
// Invariante: Quantity >= 0.
type Stock struct {
	ProductCode int64
	Quantity    int64
	UpdatedAt   time.Time
}
