package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Cantina-api/internal/domain"
	"github.com/jhoicas/Cantina-api/internal/domain/entity"
	"github.com/jhoicas/Cantina-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `code, name, unit_price, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (code, name, unit_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query,
		product.Code, product.Name, product.UnitPrice, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("producto %d: %w", product.Code, domain.ErrDuplicateCode)
		}
		if isCheckViolation(err) {
			return domain.InvalidInput("producto %d rechazado por la base: %v", product.Code, err)
		}
		return domain.NewStorageError("insert product", err)
	}
	return nil
}

// GetByCode obtiene un producto por código.
func (r *ProductRepo) GetByCode(ctx context.Context, code int64) (*entity.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products WHERE code = $1`, code)
}

// GetForUpdate obtiene el producto bloqueando su fila hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, code int64) (*entity.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products WHERE code = $1 FOR UPDATE`, code)
}

func (r *ProductRepo) get(ctx context.Context, query string, code int64) (*entity.Product, error) {
	var p entity.Product
	err := r.q.QueryRow(ctx, query, code).Scan(&p.Code, &p.Name, &p.UnitPrice, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.NewStorageError("get product", err)
	}
	return &p, nil
}

// Update actualiza nombre y precio.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `UPDATE products SET name = $2, unit_price = $3, updated_at = $4 WHERE code = $1`
	tag, err := r.q.Exec(ctx, query, product.Code, product.Name, product.UnitPrice, product.UpdatedAt)
	if err != nil {
		if isCheckViolation(err) {
			return domain.InvalidInput("producto %d rechazado por la base: %v", product.Code, err)
		}
		return domain.NewStorageError("update product", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("producto %d: %w", product.Code, domain.ErrProductNotFound)
	}
	return nil
}

// Delete elimina el producto. Las ventas que lo referencian lo impiden (ON DELETE RESTRICT).
func (r *ProductRepo) Delete(ctx context.Context, code int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE code = $1`, code)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("producto %d con ventas: %w", code, domain.ErrConflict)
		}
		return domain.NewStorageError("delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("producto %d: %w", code, domain.ErrProductNotFound)
	}
	return nil
}

// List devuelve los productos ordenados por código.
func (r *ProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY code`)
	if err != nil {
		return nil, domain.NewStorageError("list products", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.Code, &p.Name, &p.UnitPrice, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, domain.NewStorageError("scan product", err)
		}
		list = append(list, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list products", err)
	}
	return list, nil
}
