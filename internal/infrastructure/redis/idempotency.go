package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Cantina-api/internal/application/ports"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "cantina:idem:"

// Record respuesta guardada para una clave.
type Record = ports.IdempotentResponse

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore guarda la primera respuesta de cada Idempotency-Key.
type IdempotencyStore struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewIdempotencyStore construye el store. ttl es la vida de una respuesta completada.
func NewIdempotencyStore(client *goredis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Reserve marca la clave como en curso. false si ya existía (en curso o completada).
// La reserva dura el TTL completo: solo Complete o Release la sustituyen, nunca el paso del tiempo
// mientras la petición original sigue ejecutándose.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (bool, error) {
	raw, err := json.Marshal(Record{Pending: true})
	if err != nil {
		return false, err
	}
	ok, err := s.client.SetNX(ctx, keyPrefix+key, raw, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis: reserve %s: %w", key, err)
	}
	return ok, nil
}

// Get devuelve el registro de la clave o nil si no existe.
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*Record, error) {
	raw, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get %s: %w", key, err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("redis: decode %s: %w", key, err)
	}
	return &rec, nil
}

// Complete guarda la respuesta definitiva con el TTL configurado.
func (s *IdempotencyStore) Complete(ctx context.Context, key string, rec Record) error {
	rec.Pending = false
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, keyPrefix+key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis: complete %s: %w", key, err)
	}
	return nil
}

// Release libera la reserva para que la petición pueda reintentarse.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis: release %s: %w", key, err)
	}
	return nil
}
