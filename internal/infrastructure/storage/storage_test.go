package storage_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cantina-api/internal/domain/entity"
	"github.com/jhoicas/Cantina-api/internal/domain/repository"
	"github.com/jhoicas/Cantina-api/internal/infrastructure/storage"
	"github.com/jhoicas/Cantina-api/pkg/config"
	"github.com/jhoicas/Cantina-api/pkg/logger"
)

func TestOpen_MemoriaCompartePersistenciaEntreRepositorios(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Driver: config.StorageMemory}}
	b, err := storage.Open(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	defer b.Close()
	assert.Equal(t, config.StorageMemory, b.Driver)

	ctx := context.Background()
	p := &entity.Product{Code: 1, Name: "Suco", UnitPrice: decimal.RequireFromString("2.50")}
	require.NoError(t, b.Products.Create(ctx, p))

	err = b.Tx.Run(ctx, func(_ repository.ProductRepository, ledger repository.Ledger) error {
		_, err := ledger.ApplyStockDelta(ctx, 1, 4)
		return err
	})
	require.NoError(t, err)

	st, err := b.Ledger.GetStock(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, int64(4), st.Quantity)
}

func TestOpen_DriverDesconocido(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Driver: "sqlite"}}
	_, err := storage.Open(context.Background(), cfg, logger.Nop())
	assert.Error(t, err)
}
