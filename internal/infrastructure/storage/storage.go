// Package storage abre el backend configurado (memoria o PostgreSQL) y expone sus repositorios.
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/Cantina-api/internal/domain/repository"
	"github.com/jhoicas/Cantina-api/internal/infrastructure/memory"
	"github.com/jhoicas/Cantina-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Cantina-api/pkg/config"
	"github.com/jhoicas/Cantina-api/pkg/logger"
)

// Backend repositorios listos para inyectar en los casos de uso.
type Backend struct {
	Products repository.ProductRepository
	Ledger   repository.Ledger
	Tx       repository.TxRunner
	Driver   string

	close func()
}

// Close libera el backend (cierra el pool en PostgreSQL).
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Open abre el backend indicado por cfg.Storage.Driver. En PostgreSQL aplica el esquema.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Backend, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory, "":
		store := memory.NewStore()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return &Backend{
			Products: memory.NewProductRepository(store),
			Ledger:   memory.NewLedger(store),
			Tx:       memory.NewTxRunner(store),
			Driver:   config.StorageMemory,
		}, nil

	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("storage: esquema: %w", err)
		}
		log.Info().Str("db", cfg.DB.DBName).Msg("PostgreSQL listo")
		return &Backend{
			Products: postgres.NewProductRepository(pool),
			Ledger:   postgres.NewLedger(pool),
			Tx:       postgres.NewTxRunner(pool),
			Driver:   config.StoragePostgres,
			close:    pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("storage: driver desconocido %q", cfg.Storage.Driver)
	}
}
