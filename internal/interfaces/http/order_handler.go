package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/orders"
)

// OrderHandler maneja las peticiones HTTP de orders (protegido).
type OrderHandler struct {
	uc   *orders.FulfillmentUseCase
	errs errorMapper
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *orders.FulfillmentUseCase, errs errorMapper) *OrderHandler {
	return &OrderHandler{uc: uc, errs: errs}
}

// Create godoc
// @Summary      Crear pedido
// @Description  PENDING (por defecto) y COMPLETED descuentan stock al crearse. Sin warehouse_id usa la bodega principal.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Bodega, estado y líneas"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := bindBody(c, &in); err != nil {
		return h.errs.respond(c, err)
	}
	out, err := h.uc.CreateFromRequest(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener pedido con sus líneas
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar orders
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        status        query  string  false  "PENDING | COMPLETED | CANCELLED"
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.OrderListResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), documentFilter(c))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// UpdateLines godoc
// @Summary      Reemplazar líneas
// @Description  Revierte las líneas anteriores y aplica las nuevas en una sola transacción; si falta stock no cambia nada.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID"
// @Param        body  body  dto.UpdateOrderLinesRequest  true  "Líneas nuevas"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/lines [put]
func (h *OrderHandler) UpdateLines(c *fiber.Ctx) error {
	var in dto.UpdateOrderLinesRequest
	if err := bindBody(c, &in); err != nil {
		return h.errs.respond(c, err)
	}
	out, err := h.uc.UpdateLinesFromRequest(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// ChangeStatus godoc
// @Summary      Cambiar estado
// @Description  PENDING y COMPLETED descuentan stock; CANCELLED es terminal.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID"
// @Param        body  body  dto.ChangeStatusRequest  true  "PENDING | COMPLETED | CANCELLED"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/status [patch]
func (h *OrderHandler) ChangeStatus(c *fiber.Ctx) error {
	var in dto.ChangeStatusRequest
	if err := bindBody(c, &in); err != nil {
		return h.errs.respond(c, err)
	}
	out, err := h.uc.ChangeStatusFromRequest(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}
