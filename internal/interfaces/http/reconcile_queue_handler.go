package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// ReconcileQueue encola reconciliaciones (jobs.Client).
type ReconcileQueue interface {
	EnqueueReconcile(ctx context.Context, companyID string) (string, error)
}

// ReconcileQueueHandler expone la reconciliación asíncrona.
type ReconcileQueueHandler struct {
	queue ReconcileQueue
	errs  errorMapper
}

func NewReconcileQueueHandler(queue ReconcileQueue, errs errorMapper) *ReconcileQueueHandler {
	return &ReconcileQueueHandler{queue: queue, errs: errs}
}

// Enqueue godoc
// @Summary      Encolar reconciliación
// @Description  Programa la comparación saldo/Kardex de la empresa en el worker.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      202  {object}  map[string]string
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/reconcile/async [post]
func (h *ReconcileQueueHandler) Enqueue(c *fiber.Ctx) error {
	taskID, err := h.queue.EnqueueReconcile(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"task_id": taskID})
}
