package http

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Cantina-api/internal/application/dto"
	"github.com/jhoicas/Cantina-api/internal/application/inventory"
	"github.com/jhoicas/Cantina-api/internal/application/reporting"
	"github.com/jhoicas/Cantina-api/internal/domain"
	"github.com/jhoicas/Cantina-api/internal/domain/entity"
)

const (
	defaultSalesLimit = 100
	maxSalesLimit     = 1000
)

// SaleHandler registro y consulta de ventas.
type SaleHandler struct {
	engine    *inventory.Engine
	reporting *reporting.UseCase
	validate  *validator.Validate
}

// NewSaleHandler construye el handler.
func NewSaleHandler(engine *inventory.Engine, rep *reporting.UseCase) *SaleHandler {
	return &SaleHandler{engine: engine, reporting: rep, validate: newValidator()}
}

// Register godoc
// @Summary      Registrar venta
// @Description  Descuenta stock y registra la venta de forma atómica. Acepta Idempotency-Key.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Clave para reintentos seguros"
// @Param        body  body  dto.RegisterSaleRequest  true  "Producto y cantidad"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterSaleRequest
	if err := parseBody(c, h.validate, &in); err != nil {
		return respondError(c, err)
	}
	sale, err := h.engine.RegisterSale(c.UserContext(), in.ProductCode, in.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToSaleResponse(sale))
}

// List godoc
// @Summary      Listar ventas (más recientes primero)
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        product_code  query  int  false  "Filtrar por producto"
// @Param        limit         query  int  false  "Máximo de registros"  default(100)
// @Success      200  {object}  dto.ListResponse[dto.SaleResponse]
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	limit := defaultSalesLimit
	if raw := c.Query("limit"); raw != "" {
		n, perr := strconv.Atoi(raw)
		if perr != nil || n < 0 {
			return respondError(c, domain.InvalidInput("limit inválido %q", raw))
		}
		if n > 0 {
			limit = n
		}
	}
	if limit > maxSalesLimit {
		limit = maxSalesLimit
	}

	var (
		sales []*entity.Sale
		err   error
	)
	if raw := c.Query("product_code"); raw != "" {
		code, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil {
			return respondError(c, domain.InvalidInput("product_code inválido %q", raw))
		}
		sales, err = h.reporting.SalesForProduct(c.UserContext(), code, limit)
	} else {
		sales, err = h.reporting.ListSales(c.UserContext(), limit)
	}
	if err != nil {
		return respondError(c, err)
	}
	items := dto.ToSaleList(sales)
	return c.JSON(dto.ListResponse[dto.SaleResponse]{Items: items, Total: len(items)})
}
