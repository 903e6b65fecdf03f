package inventory_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Cantina-api/internal/application/inventory"
	"github.com/jhoicas/Cantina-api/internal/domain"
	"github.com/jhoicas/Cantina-api/internal/domain/entity"
	"github.com/jhoicas/Cantina-api/internal/domain/repository"
	"github.com/jhoicas/Cantina-api/internal/infrastructure/memory"
	"github.com/jhoicas/Cantina-api/pkg/keylock"
	"github.com/jhoicas/Cantina-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	store    *memory.Store
	products *memory.ProductRepo
	ledger   *memory.Ledger
	engine   *inventory.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	return &fixture{
		store:    store,
		products: memory.NewProductRepository(store),
		ledger:   memory.NewLedger(store),
		engine:   inventory.NewEngine(memory.NewTxRunner(store), keylock.New(), logger.Nop()),
	}
}

func (f *fixture) product(t *testing.T, code int64, name, price string) {
	t.Helper()
	require.NoError(t, f.products.Create(context.Background(), &entity.Product{
		Code:      code,
		Name:      name,
		UnitPrice: decimal.RequireFromString(price),
	}))
}

func (f *fixture) stock(t *testing.T, code int64) int64 {
	t.Helper()
	st, err := f.ledger.GetStock(context.Background(), code)
	require.NoError(t, err)
	if st == nil {
		return 0
	}
	return st.Quantity
}

func (f *fixture) sales(t *testing.T) *repository.SaleAggregate {
	t.Helper()
	agg, err := f.ledger.AggregateSales(context.Background(), repository.SaleFilter{WithRecords: true})
	require.NoError(t, err)
	return agg
}

// failingTx envuelve el runner en memoria con un Ledger que falla al registrar la venta.
type failingTx struct {
	inner          repository.TxRunner
	failCompensate bool
}

func (r *failingTx) Run(ctx context.Context, fn func(repository.ProductRepository, repository.Ledger) error) error {
	return r.inner.Run(ctx, func(products repository.ProductRepository, ledger repository.Ledger) error {
		return fn(products, &failingLedger{Ledger: ledger, failCompensate: r.failCompensate})
	})
}

type failingLedger struct {
	repository.Ledger
	failCompensate bool
}

var errDiskFull = errors.New("disco lleno")

func (l *failingLedger) AppendSale(context.Context, *entity.Sale) (string, error) {
	return "", errDiskFull
}

func (l *failingLedger) ApplyStockDelta(ctx context.Context, code, delta int64) (*entity.Stock, error) {
	if delta > 0 && l.failCompensate {
		return nil, errors.New("conexión perdida")
	}
	return l.Ledger.ApplyStockDelta(ctx, code, delta)
}

// ──────────────────────────────────────────────────────────────────────────────
// StockEntry / StockExit
// ──────────────────────────────────────────────────────────────────────────────

func TestStockEntry_SumaCantidad(t *testing.T) {
	f := newFixture(t)
	f.product(t, 1, "Suco", "2.50")
	ctx := context.Background()

	st, err := f.engine.StockEntry(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), st.Quantity)

	st, err = f.engine.StockEntry(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(15), st.Quantity)
}

func TestStockEntry_ValidaEntrada(t *testing.T) {
	f := newFixture(t)
	f.product(t, 1, "Suco", "2.50")

	cases := []struct {
		name     string
		code     int64
		quantity int64
		want     error
	}{
		{"cantidad cero", 1, 0, domain.ErrInvalidInput},
		{"cantidad negativa", 1, -3, domain.ErrInvalidInput},
		{"código inválido", 0, 3, domain.ErrInvalidInput},
		{"producto inexistente", 99, 3, domain.ErrProductNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.engine.StockEntry(context.Background(), tc.code, tc.quantity)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, int64(0), f.stock(t, 1))
}

func TestStockExit_InsuficienteNoModifica(t *testing.T) {
	f := newFixture(t)
	f.product(t, 1, "Suco", "2.50")
	ctx := context.Background()
	_, err := f.engine.StockEntry(ctx, 1, 4)
	require.NoError(t, err)

	_, err = f.engine.StockExit(ctx, 1, 5)
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(5), insufficient.Requested)
	assert.Equal(t, int64(4), insufficient.Available)
	assert.Equal(t, int64(4), f.stock(t, 1))

	st, err := f.engine.StockExit(ctx, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(0), st.Quantity)
	assert.Zero(t, f.sales(t).Count, "la salida manual no registra ventas")
}

// ──────────────────────────────────────────────────────────────────────────────
// RegisterSale
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterSale_EscenarioSuco(t *testing.T) {
	f := newFixture(t)
	f.product(t, 1, "Suco", "2.50")
	ctx := context.Background()
	_, err := f.engine.StockEntry(ctx, 1, 10)
	require.NoError(t, err)

	sale, err := f.engine.RegisterSale(ctx, 1, 3)
	require.NoError(t, err)
	assert.NotEmpty(t, sale.ID)
	assert.Equal(t, "Suco", sale.ProductName)
	assert.True(t, sale.Total.Equal(decimal.RequireFromString("7.50")), "total = 2.50 × 3")
	assert.Equal(t, int64(7), f.stock(t, 1))

	_, err = f.engine.RegisterSale(ctx, 1, 8)
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(7), insufficient.Available)
	assert.Equal(t, int64(7), f.stock(t, 1))

	agg := f.sales(t)
	assert.Equal(t, int64(1), agg.Count)
	assert.True(t, agg.TotalRevenue.Equal(decimal.RequireFromString("7.50")))
}

func TestRegisterSale_TotalExacto(t *testing.T) {
	f := newFixture(t)
	f.product(t, 1, "Pão de queijo", "0.10")
	ctx := context.Background()
	_, err := f.engine.StockEntry(ctx, 1, 1000)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := f.engine.RegisterSale(ctx, 1, 1)
		require.NoError(t, err)
	}
	agg := f.sales(t)
	assert.Equal(t, "0.30", agg.TotalRevenue.StringFixed(2))
	assert.True(t, agg.TotalRevenue.Equal(decimal.RequireFromString("0.3")), "sin error de punto flotante")
}

func TestRegisterSale_ProductoInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.RegisterSale(context.Background(), 42, 1)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Zero(t, f.sales(t).Count)
}

func TestRegisterSale_SinStockPrevio(t *testing.T) {
	f := newFixture(t)
	f.product(t, 1, "Suco", "2.50")
	_, err := f.engine.RegisterSale(context.Background(), 1, 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(0), f.stock(t, 1))
}

func TestRegisterSale_ContextoCanceladoNoEscribe(t *testing.T) {
	f := newFixture(t)
	f.product(t, 1, "Suco", "2.50")
	_, err := f.engine.StockEntry(context.Background(), 1, 5)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.engine.RegisterSale(ctx, 1, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(5), f.stock(t, 1))
}

func TestRegisterSale_ConcurrentesSobreStockEscaso(t *testing.T) {
	const n = 50
	f := newFixture(t)
	f.product(t, 1, "Coxinha", "4.00")
	ctx := context.Background()
	_, err := f.engine.StockEntry(ctx, 1, n-1)
	require.NoError(t, err)

	var ok, rejected int32
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := f.engine.RegisterSale(ctx, 1, 1)
			switch {
			case err == nil:
				atomic.AddInt32(&ok, 1)
			case errors.Is(err, domain.ErrInsufficientStock):
				atomic.AddInt32(&rejected, 1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(n-1), ok)
	assert.Equal(t, int32(1), rejected)
	assert.Equal(t, int64(0), f.stock(t, 1))
	agg := f.sales(t)
	assert.Equal(t, int64(n-1), agg.Count)
	assert.True(t, agg.TotalRevenue.Equal(decimal.NewFromInt(4*(n-1))))
}

func TestRegisterSale_ProductosDistintosEnParalelo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for code := int64(1); code <= 4; code++ {
		f.product(t, code, "Produto", "1.00")
		_, err := f.engine.StockEntry(ctx, code, 20)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for code := int64(1); code <= 4; code++ {
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(code int64) {
				defer wg.Done()
				_, err := f.engine.RegisterSale(ctx, code, 1)
				assert.NoError(t, err)
			}(code)
		}
	}
	wg.Wait()

	for code := int64(1); code <= 4; code++ {
		assert.Equal(t, int64(0), f.stock(t, code))
	}
	assert.Equal(t, int64(80), f.sales(t).Count)
}

func TestRegisterSale_FallaAlRegistrarRevierteStock(t *testing.T) {
	store := memory.NewStore()
	products := memory.NewProductRepository(store)
	ledger := memory.NewLedger(store)
	ctx := context.Background()
	require.NoError(t, products.Create(ctx, &entity.Product{Code: 1, Name: "Suco", UnitPrice: decimal.RequireFromString("2.50")}))
	_, err := ledger.ApplyStockDelta(ctx, 1, 10)
	require.NoError(t, err)

	engine := inventory.NewEngine(&failingTx{inner: memory.NewTxRunner(store)}, keylock.New(), logger.Nop())
	_, err = engine.RegisterSale(ctx, 1, 3)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorIs(t, err, errDiskFull)
	st, err := ledger.GetStock(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), st.Quantity, "el descuento debe revertirse")
	agg, err := ledger.AggregateSales(ctx, repository.SaleFilter{})
	require.NoError(t, err)
	assert.Zero(t, agg.Count)
}

func TestRegisterSale_FallaLaCompensacionSeReporta(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, memory.NewProductRepository(store).Create(ctx, &entity.Product{Code: 1, Name: "Suco", UnitPrice: decimal.RequireFromString("2.50")}))
	_, err := memory.NewLedger(store).ApplyStockDelta(ctx, 1, 10)
	require.NoError(t, err)

	var buf bytes.Buffer
	engine := inventory.NewEngine(
		&failingTx{inner: memory.NewTxRunner(store), failCompensate: true},
		keylock.New(),
		logger.NewWithWriter(&buf, "debug"),
	)
	_, err = engine.RegisterSale(ctx, 1, 3)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.Contains(t, err.Error(), "compensación")
	assert.Contains(t, buf.String(), "no se pudo revertir")
}

func TestRegisterSale_UsaRelojEIDInyectados(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, memory.NewProductRepository(store).Create(ctx, &entity.Product{Code: 7, Name: "Bolo", UnitPrice: decimal.RequireFromString("3.25")}))
	_, err := memory.NewLedger(store).ApplyStockDelta(ctx, 7, 2)
	require.NoError(t, err)

	at := mustTime(t, "2026-03-01T12:00:00Z")
	engine := inventory.NewEngine(memory.NewTxRunner(store), keylock.New(), nil,
		inventory.WithClock(func() time.Time { return at }),
		inventory.WithIDGenerator(func() string { return "venta-1" }),
	)
	sale, err := engine.RegisterSale(ctx, 7, 2)
	require.NoError(t, err)
	assert.Equal(t, "venta-1", sale.ID)
	assert.True(t, sale.CreatedAt.Equal(at))
	assert.Equal(t, "6.50", sale.Total.StringFixed(2))
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	at, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return at
}
