package http

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Cantina-api/internal/application/dto"
	"github.com/jhoicas/Cantina-api/internal/domain"
)

// respondError traduce errores de dominio a status y código HTTP.
func respondError(c *fiber.Ctx, err error) error {
	status, code := classify(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrProductNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrDuplicateCode):
		return fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrStorage):
		return fiber.StatusServiceUnavailable, "STORAGE"
	default:
		return fiber.StatusInternalServerError, "INTERNAL"
	}
}

// newValidator usa el nombre JSON de cada campo en los mensajes.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseBody decodifica y valida el cuerpo; los errores salen como ErrInvalidInput.
func parseBody(c *fiber.Ctx, v *validator.Validate, out any) error {
	if err := c.BodyParser(out); err != nil {
		return domain.InvalidInput("cuerpo inválido: %v", err)
	}
	if err := v.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field()+" ("+fe.Tag()+")")
			}
			return domain.InvalidInput("campos inválidos: %s", strings.Join(fields, ", "))
		}
		return domain.InvalidInput("%v", err)
	}
	return nil
}

// paramCode lee el código de producto de la ruta.
func paramCode(c *fiber.Ctx) (int64, error) {
	code, err := strconv.ParseInt(c.Params("code"), 10, 64)
	if err != nil || code <= 0 {
		return 0, domain.InvalidInput("código de producto inválido %q", c.Params("code"))
	}
	return code, nil
}
