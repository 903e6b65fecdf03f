package repository

import (
	"context"

	"github.com/jhoicas/Cantina-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByCode y GetForUpdate devuelven (nil, nil) si el código no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByCode(ctx context.Context, code int64) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto dentro de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, code int64) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, code int64) error
	List(ctx context.Context) ([]*entity.Product, error)
}
