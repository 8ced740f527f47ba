package http

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// InventoryHandler maneja las peticiones HTTP de movimientos, Kardex y saldos (protegido).
type InventoryHandler struct {
	movements *inventory.RegisterMovementUseCase
	ledger    *inventory.LedgerUseCase
	reconcile *inventory.ReconcileUseCase
	errs      errorMapper
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(movements *inventory.RegisterMovementUseCase, ledger *inventory.LedgerUseCase, reconcile *inventory.ReconcileUseCase, errs errorMapper) *InventoryHandler {
	return &InventoryHandler{movements: movements, ledger: ledger, reconcile: reconcile, errs: errs}
}

// Adjust godoc
// @Summary      Registrar ajuste manual
// @Description  ENTRADA y AJUSTE suman, SALIDA resta y falla si no hay stock.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "variant_id, warehouse_id, type, quantity"
// @Success      201   {object}  dto.AdjustmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := bindBody(c, &in); err != nil {
		return h.errs.respond(c, err)
	}
	out, err := h.movements.AdjustFromRequest(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Transfer godoc
// @Summary      Trasladar stock entre bodegas
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "variant_id, from_warehouse_id, to_warehouse_id, quantity"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := bindBody(c, &in); err != nil {
		return h.errs.respond(c, err)
	}
	out, err := h.movements.TransferFromRequest(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements godoc
// @Summary      Listar movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        variant_id       query  string  false  "Variante"
// @Param        warehouse_id     query  string  false  "Bodega"
// @Param        kind             query  string  false  "PURCHASE | SALE | ADJUSTMENT | TRANSFER"
// @Param        reference_id     query  string  false  "Pedido, compra o traslado"
// @Param        from             query  string  false  "RFC3339"
// @Param        to               query  string  false  "RFC3339"
// @Param        include_deleted  query  bool    false  "Incluir ocultos"
// @Param        limit            query  int     false  "Límite"  default(20)
// @Param        offset           query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var in dto.MovementListRequest
	if err := bindQuery(c, &in); err != nil {
		return h.errs.respond(c, err)
	}
	from, to, err := timeRange(c)
	if err != nil {
		return h.errs.respond(c, err)
	}
	in.From, in.To = from, to
	out, err := h.ledger.ListMovements(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// HideMovement godoc
// @Summary      Ocultar movimiento
// @Description  Soft delete: el movimiento deja de verse en el Kardex pero su efecto en el saldo se mantiene.
// @Tags         inventory
// @Security     Bearer
// @Param        id   path  string  true  "ID del movimiento"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [delete]
func (h *InventoryHandler) HideMovement(c *fiber.Ctx) error {
	if err := h.ledger.HideMovement(c.UserContext(), GetCompanyID(c), c.Params("id")); err != nil {
		return h.errs.respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UpdateNote godoc
// @Summary      Editar nota de un movimiento
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                         true  "ID del movimiento"
// @Param        body  body  dto.UpdateMovementNoteRequest  true  "Nota"
// @Success      200   {object}  dto.MovementResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [patch]
func (h *InventoryHandler) UpdateNote(c *fiber.Ctx) error {
	var in dto.UpdateMovementNoteRequest
	if err := bindBody(c, &in); err != nil {
		return h.errs.respond(c, err)
	}
	out, err := h.ledger.UpdateNote(c.UserContext(), GetCompanyID(c), c.Params("id"), in.Note)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// Kardex godoc
// @Summary      Kardex de una variante en una bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        variant_id    query  string  true   "Variante"
// @Param        warehouse_id  query  string  true   "Bodega"
// @Param        from          query  string  false  "RFC3339"
// @Param        to            query  string  false  "RFC3339"
// @Success      200  {object}  dto.KardexResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/kardex [get]
func (h *InventoryHandler) Kardex(c *fiber.Ctx) error {
	variantID, warehouseID, from, to, err := kardexParams(c)
	if err != nil {
		return h.errs.respond(c, err)
	}
	out, err := h.ledger.Kardex(c.UserContext(), GetCompanyID(c), variantID, warehouseID, from, to)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// KardexPDF godoc
// @Summary      Kardex en PDF
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Param        variant_id    query  string  true   "Variante"
// @Param        warehouse_id  query  string  true   "Bodega"
// @Param        from          query  string  false  "RFC3339"
// @Param        to            query  string  false  "RFC3339"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/kardex/pdf [get]
func (h *InventoryHandler) KardexPDF(c *fiber.Ctx) error {
	variantID, warehouseID, from, to, err := kardexParams(c)
	if err != nil {
		return h.errs.respond(c, err)
	}
	var buf bytes.Buffer
	if err := h.ledger.KardexPDF(c.UserContext(), &buf, GetCompanyID(c), variantID, warehouseID, from, to); err != nil {
		return h.errs.respond(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="kardex-%s.pdf"`, variantID))
	return c.Send(buf.Bytes())
}

// StockByWarehouse godoc
// @Summary      Saldos de una bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la bodega"
// @Success      200  {array}   dto.StockLevelResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/warehouses/{id}/stock [get]
func (h *InventoryHandler) StockByWarehouse(c *fiber.Ctx) error {
	out, err := h.ledger.StockByWarehouse(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// StockByVariant godoc
// @Summary      Saldos de una variante en todas las bodegas
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la variante"
// @Success      200  {array}   dto.StockLevelResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/variants/{id}/stock [get]
func (h *InventoryHandler) StockByVariant(c *fiber.Ctx) error {
	out, err := h.ledger.StockByVariant(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// GetStock godoc
// @Summary      Saldo de un par variante/bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        variant_id    query  string  true  "Variante"
// @Param        warehouse_id  query  string  true  "Bodega"
// @Success      200  {object}  dto.StockLevelResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	variantID, warehouseID := c.Query("variant_id"), c.Query("warehouse_id")
	if variantID == "" || warehouseID == "" {
		return h.errs.respond(c, fmt.Errorf("%w: variant_id y warehouse_id son requeridos", domain.ErrInvalidInput))
	}
	out, err := h.ledger.GetStock(c.UserContext(), GetCompanyID(c), variantID, warehouseID)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Conciliar saldos contra el Kardex
// @Description  Compara cada saldo con la suma de sus movimientos (incluidos los ocultos) y reporta diferencias.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReconciliationReport
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/reconcile [post]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	out, err := h.reconcile.Reconcile(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

func kardexParams(c *fiber.Ctx) (variantID, warehouseID string, from, to *time.Time, err error) {
	variantID, warehouseID = c.Query("variant_id"), c.Query("warehouse_id")
	if variantID == "" || warehouseID == "" {
		return "", "", nil, nil, fmt.Errorf("%w: variant_id y warehouse_id son requeridos", domain.ErrInvalidInput)
	}
	from, to, err = timeRange(c)
	return variantID, warehouseID, from, to, err
}

// timeRange lee from/to (RFC3339 o fecha AAAA-MM-DD). to con solo fecha incluye el día completo.
func timeRange(c *fiber.Ctx) (from, to *time.Time, err error) {
	if from, err = parseTime(c.Query("from"), false); err != nil {
		return nil, nil, err
	}
	if to, err = parseTime(c.Query("to"), true); err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, fmt.Errorf("%w: to anterior a from", domain.ErrInvalidInput)
	}
	return from, to, nil
}

func parseTime(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha inválida %q", domain.ErrInvalidInput, s)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
