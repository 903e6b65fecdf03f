// Package memory implementa los puertos de persistencia en memoria del proceso.
// Cada primitiva toma el mutex del Store, por lo que es atómica respecto de las demás.
package memory

import (
	"sync"
	"time"

	"github.com/jhoicas/Cantina-api/internal/domain/entity"
)

// Store estado compartido por ProductRepo y Ledger (equivalente a las tres tablas).
type Store struct {
	mu       sync.RWMutex
	products map[int64]entity.Product
	stock    map[int64]entity.Stock
	sales    []entity.Sale
	now      func() time.Time
}

// NewStore construye un Store vacío.
func NewStore() *Store {
	return &Store{
		products: make(map[int64]entity.Product),
		stock:    make(map[int64]entity.Stock),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) hasSales(code int64) bool {
	for i := range s.sales {
		if s.sales[i].ProductCode == code {
			return true
		}
	}
	return false
}
