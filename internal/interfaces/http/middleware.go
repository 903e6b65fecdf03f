package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Cantina-api/internal/application/dto"
	"github.com/jhoicas/Cantina-api/internal/application/ports"
	"github.com/jhoicas/Cantina-api/pkg/logger"
)

// HeaderIdempotencyKey y HeaderReplayed cabeceras del protocolo de reintentos.
const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
)

// RequestLogger registra método, ruta, status y latencia de cada petición.
// Debe ir después de requestid para incluir el ID.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		}
		rid, _ := c.Locals("requestid").(string)
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("request_id", rid).
			Str("user_id", GetUserID(c)).
			Err(err).
			Msg("http")
		return err
	}
}

// Idempotency repite la respuesta original cuando llega de nuevo la misma Idempotency-Key
// del mismo usuario. Sin cabecera la petición pasa tal cual. Se guardan respuestas 2xx y 4xx;
// ante 5xx se libera la clave para permitir el reintento. Si no se puede guardar la respuesta
// la reserva queda en curso hasta su TTL: los reintentos reciben 409 en vez de repetir la operación.
//   - 409 CONFLICT → la petición original con esa clave sigue en curso.
//   - 503 STORAGE  → no se pudo consultar el almacén de claves.
func Idempotency(store ports.IdempotencyStore, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderIdempotencyKey)
		if key == "" || store == nil {
			return c.Next()
		}
		if len(key) > 128 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "Idempotency-Key demasiado larga"})
		}
		scoped := GetUserID(c) + ":" + c.Method() + ":" + c.Path() + ":" + key
		ctx := c.UserContext()

		prev, err := store.Get(ctx, scoped)
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("idempotencia: consulta fallida")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STORAGE", Message: "no se pudo verificar la Idempotency-Key"})
		}
		if prev != nil {
			return replay(c, prev)
		}

		reserved, err := store.Reserve(ctx, scoped)
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("idempotencia: reserva fallida")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STORAGE", Message: "no se pudo reservar la Idempotency-Key"})
		}
		if !reserved {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "petición con la misma Idempotency-Key en curso"})
		}

		if err := c.Next(); err != nil {
			if rerr := store.Release(ctx, scoped); rerr != nil {
				log.Warn().Err(rerr).Str("key", key).Msg("idempotencia: no se pudo liberar la clave")
			}
			return err
		}

		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError {
			if rerr := store.Release(ctx, scoped); rerr != nil {
				log.Warn().Err(rerr).Str("key", key).Msg("idempotencia: no se pudo liberar la clave")
			}
			return nil
		}
		body := append([]byte(nil), c.Response().Body()...)
		resp := ports.IdempotentResponse{
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        body,
		}
		if err := store.Complete(ctx, scoped, resp); err != nil {
			log.Error().Err(err).Str("key", key).Int("status", status).Msg("idempotencia: no se pudo guardar la respuesta, la clave queda reservada")
		}
		return nil
	}
}

func replay(c *fiber.Ctx, prev *ports.IdempotentResponse) error {
	if prev.Pending {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "petición con la misma Idempotency-Key en curso"})
	}
	c.Set(HeaderReplayed, "true")
	if prev.ContentType != "" {
		c.Set(fiber.HeaderContentType, prev.ContentType)
	}
	return c.Status(prev.Status).Send(prev.Body)
}
