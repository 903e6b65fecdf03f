package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) (*IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewIdempotencyStore(client, ttl), mr
}

func TestIdempotency_ReservaUnaSolaVez(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	ok, err := store.Reserve(ctx, "caixa1:abc")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Reserve(ctx, "caixa1:abc")
	require.NoError(t, err)
	assert.False(t, ok, "la segunda reserva debe fallar")

	rec, err := store.Get(ctx, "caixa1:abc")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.Pending)
}

func TestIdempotency_CompleteYGet(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	_, err := store.Reserve(ctx, "k")
	require.NoError(t, err)
	require.NoError(t, store.Complete(ctx, "k", Record{Status: 201, ContentType: "application/json", Body: []byte(`{"id":"1"}`)}))

	rec, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.False(t, rec.Pending)
	assert.Equal(t, 201, rec.Status)
	assert.JSONEq(t, `{"id":"1"}`, string(rec.Body))

	mr.FastForward(2 * time.Hour)
	rec, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, rec, "la respuesta expira con el TTL")
}

func TestIdempotency_ReleasePermiteReintentar(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	_, err := store.Reserve(ctx, "k")
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "k"))

	ok, err := store.Reserve(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIdempotency_ReservaNoCaducaDuranteLaPeticion(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	_, err := store.Reserve(ctx, "k")
	require.NoError(t, err)
	mr.FastForward(10 * time.Minute)

	ok, err := store.Reserve(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "una venta lenta sigue reservada")

	mr.FastForward(time.Hour)
	ok, err = store.Reserve(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok, "una reserva abandonada no bloquea para siempre")
}

func TestIdempotency_RedisCaido(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	mr.Close()

	_, err := store.Reserve(context.Background(), "k")
	assert.Error(t, err)
}
