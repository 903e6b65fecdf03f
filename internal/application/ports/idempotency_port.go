package ports

import "context"

// IdempotentResponse respuesta guardada para una Idempotency-Key.
// Pending indica que la petición original todavía no terminó.
type IdempotentResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
	Pending     bool   `json:"pending"`
}

// IdempotencyStore puerto de salida para reintentos seguros de peticiones POST.
// La implementación (Redis) debe reservar la clave de forma atómica.
type IdempotencyStore interface {
	// Reserve marca la clave como en curso; false si ya existía.
	Reserve(ctx context.Context, key string) (bool, error)
	// Get devuelve nil si la clave no existe.
	Get(ctx context.Context, key string) (*IdempotentResponse, error)
	Complete(ctx context.Context, key string, resp IdempotentResponse) error
	// Release borra la reserva para permitir un nuevo intento.
	Release(ctx context.Context, key string) error
}
