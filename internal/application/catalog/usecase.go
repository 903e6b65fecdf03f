// Package catalog casos de uso del catálogo de productos. Es el único escritor de Product.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Cantina-api/internal/domain"
	"github.com/jhoicas/Cantina-api/internal/domain/entity"
	"github.com/jhoicas/Cantina-api/internal/domain/repository"
	"github.com/jhoicas/Cantina-api/pkg/keylock"
	"github.com/jhoicas/Cantina-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// UpdateProduct cambios parciales; los campos nil no se tocan.
type UpdateProduct struct {
	Name      *string
	UnitPrice *decimal.Decimal
}

// UseCase catálogo de productos.
type UseCase struct {
	repo  repository.ProductRepository
	tx    repository.TxRunner
	locks *keylock.Locker
	log   *logger.Logger
	now   func() time.Time
}

// NewUseCase construye el caso de uso. locks debe ser el mismo Locker del motor de inventario
// para que un cambio de precio quede ordenado respecto de las ventas en curso.
func NewUseCase(repo repository.ProductRepository, tx repository.TxRunner, locks *keylock.Locker, log *logger.Logger) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		repo:  repo,
		tx:    tx,
		locks: locks,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Register da de alta un producto nuevo.
func (uc *UseCase) Register(ctx context.Context, code int64, name string, unitPrice decimal.Decimal) (*entity.Product, error) {
	if code <= 0 {
		return nil, domain.InvalidInput("código de producto %d debe ser positivo", code)
	}
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validatePrice(unitPrice); err != nil {
		return nil, err
	}

	now := uc.now()
	product := &entity.Product{
		Code:      code,
		Name:      name,
		UnitPrice: unitPrice,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, domain.NewStorageError("create product", err)
	}
	uc.log.Info().Int64("product_code", code).Str("name", name).Msg("producto registrado")
	return product, nil
}

// Find obtiene un producto por código.
func (uc *UseCase) Find(ctx context.Context, code int64) (*entity.Product, error) {
	product, err := uc.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, domain.NewStorageError("find product", err)
	}
	if product == nil {
		return nil, fmt.Errorf("producto %d: %w", code, domain.ErrProductNotFound)
	}
	return product, nil
}

// Update aplica los cambios indicados. Sin cambios devuelve ErrInvalidInput.
func (uc *UseCase) Update(ctx context.Context, code int64, in UpdateProduct) (*entity.Product, error) {
	if in.Name == nil && in.UnitPrice == nil {
		return nil, domain.InvalidInput("no hay campos para actualizar")
	}
	var name string
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
	}
	if in.UnitPrice != nil {
		if err := validatePrice(*in.UnitPrice); err != nil {
			return nil, err
		}
	}

	unlock := uc.locks.Lock(code)
	defer unlock()

	var updated *entity.Product
	err := uc.tx.Run(ctx, func(products repository.ProductRepository, _ repository.Ledger) error {
		product, err := products.GetForUpdate(ctx, code)
		if err != nil {
			return domain.NewStorageError("load product", err)
		}
		if product == nil {
			return fmt.Errorf("producto %d: %w", code, domain.ErrProductNotFound)
		}
		if in.Name != nil {
			product.Name = name
		}
		if in.UnitPrice != nil {
			product.UnitPrice = *in.UnitPrice
		}
		product.UpdatedAt = uc.now()
		if err := products.Update(ctx, product); err != nil {
			return domain.NewStorageError("update product", err)
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Remove elimina un producto sin stock y sin ventas. El registro de stock en cero se borra con él.
func (uc *UseCase) Remove(ctx context.Context, code int64) error {
	unlock := uc.locks.Lock(code)
	defer unlock()

	err := uc.tx.Run(ctx, func(products repository.ProductRepository, ledger repository.Ledger) error {
		product, err := products.GetForUpdate(ctx, code)
		if err != nil {
			return domain.NewStorageError("load product", err)
		}
		if product == nil {
			return fmt.Errorf("producto %d: %w", code, domain.ErrProductNotFound)
		}

		stock, err := ledger.GetStock(ctx, code)
		if err != nil {
			return domain.NewStorageError("load stock", err)
		}
		if stock != nil && stock.Quantity > 0 {
			return fmt.Errorf("producto %d tiene %d unidades en stock: %w", code, stock.Quantity, domain.ErrConflict)
		}

		agg, err := ledger.AggregateSales(ctx, repository.SaleFilter{ProductCode: &code})
		if err != nil {
			return domain.NewStorageError("aggregate sales", err)
		}
		if agg.Count > 0 {
			return fmt.Errorf("producto %d tiene %d ventas registradas: %w", code, agg.Count, domain.ErrConflict)
		}

		if stock != nil {
			if err := ledger.DeleteEmptyStock(ctx, code); err != nil {
				return domain.NewStorageError("delete stock", err)
			}
		}
		if err := products.Delete(ctx, code); err != nil {
			return domain.NewStorageError("delete product", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	uc.log.Info().Int64("product_code", code).Msg("producto eliminado")
	return nil
}

// List devuelve todos los productos ordenados por código.
func (uc *UseCase) List(ctx context.Context) ([]*entity.Product, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, domain.NewStorageError("list products", err)
	}
	return list, nil
}

func validateName(name string) error {
	if name == "" {
		return domain.InvalidInput("el nombre del producto es obligatorio")
	}
	return nil
}

// validatePrice precio >= 0 con a lo sumo dos decimales (NUMERIC(12,2)).
func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return domain.InvalidInput("precio %s no puede ser negativo", price.String())
	}
	if !price.Equal(price.Round(2)) {
		return domain.InvalidInput("precio %s admite a lo sumo dos decimales", price.String())
	}
	return nil
}
