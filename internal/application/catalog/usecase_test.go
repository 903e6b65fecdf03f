package catalog_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cantina-api/internal/application/catalog"
	"github.com/jhoicas/Cantina-api/internal/domain"
	"github.com/jhoicas/Cantina-api/internal/domain/entity"
	"github.com/jhoicas/Cantina-api/internal/infrastructure/memory"
	"github.com/jhoicas/Cantina-api/pkg/keylock"
)

func newCatalog(t *testing.T) (*catalog.UseCase, *memory.Ledger) {
	t.Helper()
	store := memory.NewStore()
	uc := catalog.NewUseCase(memory.NewProductRepository(store), memory.NewTxRunner(store), keylock.New(), nil)
	return uc, memory.NewLedger(store)
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Register / Find
// ──────────────────────────────────────────────────────────────────────────────

func TestRegister_RoundTrip(t *testing.T) {
	uc, _ := newCatalog(t)
	ctx := context.Background()

	created, err := uc.Register(ctx, 10, "  Suco de laranja ", price("2.50"))
	require.NoError(t, err)
	assert.Equal(t, "Suco de laranja", created.Name, "el nombre se guarda sin espacios sobrantes")

	found, err := uc.Find(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), found.Code)
	assert.Equal(t, "Suco de laranja", found.Name)
	assert.True(t, found.UnitPrice.Equal(price("2.50")))
}

func TestRegister_Validaciones(t *testing.T) {
	cases := []struct {
		name  string
		code  int64
		pname string
		price string
	}{
		{"código cero", 0, "Suco", "1.00"},
		{"código negativo", -1, "Suco", "1.00"},
		{"nombre vacío", 1, "   ", "1.00"},
		{"precio negativo", 1, "Suco", "-0.01"},
		{"más de dos decimales", 1, "Suco", "1.005"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc, _ := newCatalog(t)
			_, err := uc.Register(context.Background(), tc.code, tc.pname, price(tc.price))
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestRegister_PrecioCeroPermitido(t *testing.T) {
	uc, _ := newCatalog(t)
	_, err := uc.Register(context.Background(), 1, "Água da casa", decimal.Zero)
	assert.NoError(t, err)
}

func TestRegister_CodigoDuplicado(t *testing.T) {
	uc, _ := newCatalog(t)
	ctx := context.Background()
	_, err := uc.Register(ctx, 1, "Suco", price("2.50"))
	require.NoError(t, err)

	_, err = uc.Register(ctx, 1, "Outro", price("1.00"))
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)

	found, err := uc.Find(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Suco", found.Name, "el original no se modifica")
}

func TestRegister_ConcurrenteSoloUnoGana(t *testing.T) {
	uc, _ := newCatalog(t)
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		oks int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := uc.Register(context.Background(), 5, "Pastel", price("6.00")); err == nil {
				mu.Lock()
				oks++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, domain.ErrDuplicateCode)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, oks)
}

func TestFind_NoExiste(t *testing.T) {
	uc, _ := newCatalog(t)
	_, err := uc.Find(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Update
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdate_Parcial(t *testing.T) {
	uc, _ := newCatalog(t)
	ctx := context.Background()
	_, err := uc.Register(ctx, 1, "Suco", price("2.50"))
	require.NoError(t, err)

	newPrice := price("3.00")
	updated, err := uc.Update(ctx, 1, catalog.UpdateProduct{UnitPrice: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, "Suco", updated.Name)
	assert.True(t, updated.UnitPrice.Equal(newPrice))

	name := "Suco natural"
	updated, err = uc.Update(ctx, 1, catalog.UpdateProduct{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Suco natural", updated.Name)
	assert.True(t, updated.UnitPrice.Equal(newPrice))
}

func TestUpdate_Errores(t *testing.T) {
	uc, _ := newCatalog(t)
	ctx := context.Background()
	_, err := uc.Register(ctx, 1, "Suco", price("2.50"))
	require.NoError(t, err)

	empty := " "
	negative := price("-1")
	valid := price("1.00")

	_, err = uc.Update(ctx, 1, catalog.UpdateProduct{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin campos")
	_, err = uc.Update(ctx, 1, catalog.UpdateProduct{Name: &empty})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Update(ctx, 1, catalog.UpdateProduct{UnitPrice: &negative})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Update(ctx, 2, catalog.UpdateProduct{UnitPrice: &valid})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Remove / List
// ──────────────────────────────────────────────────────────────────────────────

func TestRemove_ConflictoConStockOVentas(t *testing.T) {
	uc, ledger := newCatalog(t)
	ctx := context.Background()
	_, err := uc.Register(ctx, 1, "Suco", price("2.50"))
	require.NoError(t, err)
	_, err = ledger.ApplyStockDelta(ctx, 1, 1)
	require.NoError(t, err)

	err = uc.Remove(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrConflict, "con stock")

	_, err = ledger.ApplyStockDelta(ctx, 1, -1)
	require.NoError(t, err)
	p, err := uc.Find(ctx, 1)
	require.NoError(t, err)
	_, err = ledger.AppendSale(ctx, entity.NewSale("s-1", p, 1, p.CreatedAt))
	require.NoError(t, err)

	err = uc.Remove(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrConflict, "con ventas")
	_, err = uc.Find(ctx, 1)
	assert.NoError(t, err, "el producto sigue registrado")
}

func TestRemove_BorraStockVacio(t *testing.T) {
	uc, ledger := newCatalog(t)
	ctx := context.Background()
	_, err := uc.Register(ctx, 1, "Suco", price("2.50"))
	require.NoError(t, err)
	_, err = ledger.GetOrInitStock(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, uc.Remove(ctx, 1))

	_, err = uc.Find(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	st, err := ledger.GetStock(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, st)

	assert.ErrorIs(t, uc.Remove(ctx, 1), domain.ErrProductNotFound)
}

func TestList_OrdenadoPorCodigo(t *testing.T) {
	uc, _ := newCatalog(t)
	ctx := context.Background()
	for _, code := range []int64{30, 10, 20} {
		_, err := uc.Register(ctx, code, "P", price("1"))
		require.NoError(t, err)
	}
	list, err := uc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{10, 20, 30}, []int64{list[0].Code, list[1].Code, list[2].Code})
}
