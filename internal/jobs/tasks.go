package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
)

const (
	// QueueDefault cola de trabajos del libro de inventario.
	QueueDefault = "default"
	// TypeReconcile compara saldos contra la suma del Kardex.
	TypeReconcile = "inventory:reconcile"
)

// ReconcilePayload company_id vacío reconcilia todas las empresas.
type ReconcilePayload struct {
	CompanyID string `json:"company_id,omitempty"`
}

// NewReconcileTask construye la tarea de reconciliación.
func NewReconcileTask(companyID string) (*asynq.Task, error) {
	body, err := json.Marshal(ReconcilePayload{CompanyID: companyID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeReconcile, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}

// Reconciler lo implementa inventory.ReconcileUseCase.
type Reconciler interface {
	Reconcile(ctx context.Context, companyID string) (*dto.ReconciliationReport, error)
	ReconcileAll(ctx context.Context) ([]*dto.ReconciliationReport, error)
}

// ReconcileHandler procesa TypeReconcile.
type ReconcileHandler struct {
	reconciler Reconciler
	logger     zerolog.Logger
}

func NewReconcileHandler(r Reconciler, logger zerolog.Logger) *ReconcileHandler {
	return &ReconcileHandler{reconciler: r, logger: logger.With().Str("job", TypeReconcile).Logger()}
}

// ProcessTask implementa asynq.Handler. La deriva se reporta en logs y métricas; no es un error de la tarea.
func (h *ReconcileHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p ReconcilePayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("payload de reconciliación inválido: %v: %w", err, asynq.SkipRetry)
		}
	}

	var reports []*dto.ReconciliationReport
	if p.CompanyID == "" {
		all, err := h.reconciler.ReconcileAll(ctx)
		if err != nil {
			return err
		}
		reports = all
	} else {
		r, err := h.reconciler.Reconcile(ctx, p.CompanyID)
		if err != nil {
			return err
		}
		reports = append(reports, r)
	}

	for _, r := range reports {
		ev := h.logger.Info()
		if len(r.Drift) > 0 {
			ev = h.logger.Warn()
		}
		ev.Str("company_id", r.CompanyID).
			Int("checked_pairs", r.CheckedPairs).
			Int("drift", len(r.Drift)).
			Msg("reconciliación completada")
	}
	return nil
}
