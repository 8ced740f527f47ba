package inventory

import (
	"context"
	"io"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit. Garantiza atomicidad para el motor de inventario.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos repository.TxRepos) error) error
}

// Metrics puerto de observabilidad del motor (Prometheus en producción).
type Metrics interface {
	MovementRecorded(kind entity.MovementKind, quantity int64)
	InsufficientStock(kind entity.MovementKind)
	DriftDetected(companyID string, pairs int)
}

// NopMetrics implementación vacía para tests y procesos sin /metrics.
type NopMetrics struct{}

func (NopMetrics) MovementRecorded(entity.MovementKind, int64) {}
func (NopMetrics) InsufficientStock(entity.MovementKind)       {}
func (NopMetrics) DriftDetected(string, int)                   {}

// KardexRenderer genera el documento PDF del Kardex (puerto hacia infrastructure/pdf).
type KardexRenderer interface {
	RenderKardex(w io.Writer, kardex *dto.KardexResponse) error
}
