package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/Cantina-api/internal/domain"
	"github.com/jhoicas/Cantina-api/internal/domain/entity"
	"github.com/jhoicas/Cantina-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación de ProductRepository sobre el Store.
type ProductRepo struct {
	s *Store
}

// NewProductRepository construye el adaptador de productos.
func NewProductRepository(s *Store) *ProductRepo {
	return &ProductRepo{s: s}
}

// Create persiste un producto nuevo; ErrDuplicateCode si el código existe.
func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[product.Code]; ok {
		return fmt.Errorf("producto %d: %w", product.Code, domain.ErrDuplicateCode)
	}
	r.s.products[product.Code] = *product
	return nil
}

// GetByCode obtiene un producto por código.
func (r *ProductRepo) GetByCode(_ context.Context, code int64) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[code]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// GetForUpdate en memoria no hay filas que bloquear: la serialización la da keylock.
func (r *ProductRepo) GetForUpdate(ctx context.Context, code int64) (*entity.Product, error) {
	return r.GetByCode(ctx, code)
}

// Update reemplaza nombre y precio del producto.
func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[product.Code]; !ok {
		return fmt.Errorf("producto %d: %w", product.Code, domain.ErrProductNotFound)
	}
	r.s.products[product.Code] = *product
	return nil
}

// Delete elimina el producto. Emula las FK: el stock vacío cae en cascada y las ventas lo impiden.
func (r *ProductRepo) Delete(_ context.Context, code int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[code]; !ok {
		return fmt.Errorf("producto %d: %w", code, domain.ErrProductNotFound)
	}
	if st, ok := r.s.stock[code]; ok && st.Quantity > 0 {
		return fmt.Errorf("producto %d con stock %d: %w", code, st.Quantity, domain.ErrConflict)
	}
	if r.s.hasSales(code) {
		return fmt.Errorf("producto %d con ventas: %w", code, domain.ErrConflict)
	}
	delete(r.s.stock, code)
	delete(r.s.products, code)
	return nil
}

// List devuelve los productos ordenados por código.
func (r *ProductRepo) List(_ context.Context) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		p := p
		list = append(list, &p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list, nil
}
