package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// documentFilter lee status, warehouse_id, limit y offset comunes a pedidos y compras.
func documentFilter(c *fiber.Ctx) repository.DocumentFilter {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return repository.DocumentFilter{
		Status:      c.Query("status"),
		WarehouseID: c.Query("warehouse_id"),
		Limit:       limit,
		Offset:      offset,
	}
}
