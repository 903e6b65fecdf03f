package http

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Cantina-api/internal/application/dto"
	"github.com/jhoicas/Cantina-api/internal/application/inventory"
	"github.com/jhoicas/Cantina-api/internal/application/reporting"
	"github.com/jhoicas/Cantina-api/internal/domain/entity"
)

// InventoryHandler stock: consultas, entradas y salidas manuales.
type InventoryHandler struct {
	engine    *inventory.Engine
	reporting *reporting.UseCase
	validate  *validator.Validate
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(engine *inventory.Engine, rep *reporting.UseCase) *InventoryHandler {
	return &InventoryHandler{engine: engine, reporting: rep, validate: newValidator()}
}

// List godoc
// @Summary      Listar stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ListResponse[dto.StockResponse]
// @Router       /api/stock [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	list, err := h.reporting.ListStock(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	items := dto.ToStockList(list)
	return c.JSON(dto.ListResponse[dto.StockResponse]{Items: items, Total: len(items)})
}

// LowStock godoc
// @Summary      Productos con stock bajo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        threshold  query  int  false  "Umbral (quantity < threshold)"  default(5)
// @Success      200  {object}  dto.ListResponse[dto.StockResponse]
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/low [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	threshold := int64(c.QueryInt("threshold", int(h.reporting.LowStockThreshold())))
	list, err := h.reporting.LowStock(c.UserContext(), threshold)
	if err != nil {
		return respondError(c, err)
	}
	items := dto.ToStockList(list)
	return c.JSON(dto.ListResponse[dto.StockResponse]{Items: items, Total: len(items)})
}

// GetByCode godoc
// @Summary      Stock de un producto (0 si nunca tuvo)
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        code  path  int  true  "Código del producto"
// @Success      200   {object}  dto.StockResponse
// @Router       /api/stock/{code} [get]
func (h *InventoryHandler) GetByCode(c *fiber.Ctx) error {
	code, err := paramCode(c)
	if err != nil {
		return respondError(c, err)
	}
	quantity, err := h.reporting.StockLevel(c.UserContext(), code)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.StockResponse{ProductCode: code, Quantity: quantity})
}

// Entry godoc
// @Summary      Entrada de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMovementRequest  true  "Producto y cantidad"
// @Success      200   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/entries [post]
func (h *InventoryHandler) Entry(c *fiber.Ctx) error {
	return h.move(c, h.engine.StockEntry)
}

// Exit godoc
// @Summary      Salida manual de stock (sin venta)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMovementRequest  true  "Producto y cantidad"
// @Success      200   {object}  dto.StockResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/exits [post]
func (h *InventoryHandler) Exit(c *fiber.Ctx) error {
	return h.move(c, h.engine.StockExit)
}

func (h *InventoryHandler) move(c *fiber.Ctx, apply func(ctx context.Context, code, quantity int64) (*entity.Stock, error)) error {
	var in dto.StockMovementRequest
	if err := parseBody(c, h.validate, &in); err != nil {
		return respondError(c, err)
	}
	stock, err := apply(c.UserContext(), in.ProductCode, in.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToStockResponse(stock))
}
