package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/purchases"
)

// PurchaseHandler maneja las peticiones HTTP de purchases (protegido).
type PurchaseHandler struct {
	uc   *purchases.ReceivingUseCase
	errs errorMapper
}

// NewPurchaseHandler construye el handler.
func NewPurchaseHandler(uc *purchases.ReceivingUseCase, errs errorMapper) *PurchaseHandler {
	return &PurchaseHandler{uc: uc, errs: errs}
}

// Create godoc
// @Summary      Crear compra
// @Description  Con status RECEIVED ingresa el stock y actualiza el costo de la variante.
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseRequest  true  "Bodega, estado y líneas"
// @Success      201   {object}  dto.PurchaseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/purchases [post]
func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePurchaseRequest
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
// @Summary      Obtener compra con sus líneas
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.PurchaseResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchases/{id} [get]
func (h *PurchaseHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar purchases
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Param        status        query  string  false  "PENDING | RECEIVED | CANCELLED"
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.PurchaseListResponse
// @Router       /api/purchases [get]
func (h *PurchaseHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), documentFilter(c))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// UpdateLines godoc
// @Summary      Reemplazar líneas
// @Description  En una compra recibida revierte el ingreso anterior y aplica el nuevo.
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID"
// @Param        body  body  dto.UpdatePurchaseLinesRequest  true  "Líneas nuevas"
// @Success      200   {object}  dto.PurchaseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/purchases/{id}/lines [put]
func (h *PurchaseHandler) UpdateLines(c *fiber.Ctx) error {
	var in dto.UpdatePurchaseLinesRequest
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
// @Description  PENDING→RECEIVED ingresa stock; RECEIVED→CANCELLED lo retira y falla si ya salió.
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID"
// @Param        body  body  dto.ChangeStatusRequest  true  "PENDING | RECEIVED | CANCELLED"
// @Success      200   {object}  dto.PurchaseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/purchases/{id}/status [patch]
func (h *PurchaseHandler) ChangeStatus(c *fiber.Ctx) error {
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
