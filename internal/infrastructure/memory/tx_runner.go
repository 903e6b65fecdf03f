package memory

import (
	"context"

	"github.com/jhoicas/Cantina-api/internal/domain/repository"
)

var _ repository.TxRunner = (*TxRunner)(nil)

// TxRunner en memoria no hay rollback: fn recibe los mismos repositorios del Store.
// La atomicidad de la venta la garantiza la compensación del motor de inventario.
type TxRunner struct {
	products *ProductRepo
	ledger   *Ledger
}

// NewTxRunner construye el runner sobre el Store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{products: NewProductRepository(s), ledger: NewLedger(s)}
}

// Run ejecuta fn con los repositorios del Store.
func (r *TxRunner) Run(_ context.Context, fn func(products repository.ProductRepository, ledger repository.Ledger) error) error {
	return fn(r.products, r.ledger)
}
