package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/rs/zerolog"
)

// ReconcileUseCase audita que cada StockLevel coincida con la suma con signo de sus movimientos.
// Solo reporta: nunca corrige saldos.
type ReconcileUseCase struct {
	tx      TxRunner
	engine  *StockEngine
	metrics Metrics
	logger  zerolog.Logger
}

// NewReconcileUseCase construye el caso de uso.
func NewReconcileUseCase(tx TxRunner, engine *StockEngine, metrics Metrics, logger zerolog.Logger) *ReconcileUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &ReconcileUseCase{tx: tx, engine: engine, metrics: metrics, logger: logger}
}

// Reconcile compara saldos y Kardex de una empresa. Los movimientos ocultos cuentan.
func (uc *ReconcileUseCase) Reconcile(ctx context.Context, companyID string) (*dto.ReconciliationReport, error) {
	report := &dto.ReconciliationReport{CompanyID: companyID, CheckedAt: uc.engine.Now(), Drift: []dto.DriftItem{}}
	err := uc.tx.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		levels, err := repos.StockLevels.ListByCompany(ctx, companyID)
		if err != nil {
			return err
		}
		sums, err := repos.Movements.SumByStockKey(ctx, companyID)
		if err != nil {
			return err
		}

		balances := make(map[entity.StockKey]int64, len(levels))
		for _, l := range levels {
			balances[l.Key()] = l.Quantity
		}
		// Un par con movimientos pero sin fila de saldo también es deriva.
		keys := make([]entity.StockKey, 0, len(balances)+len(sums))
		for k := range balances {
			keys = append(keys, k)
		}
		for k := range sums {
			if _, ok := balances[k]; !ok {
				keys = append(keys, k)
			}
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

		report.CheckedPairs = len(keys)
		for _, k := range keys {
			bal, sum := balances[k], sums[k]
			if bal == sum {
				continue
			}
			report.Drift = append(report.Drift, dto.DriftItem{
				VariantID:   k.VariantID,
				WarehouseID: k.WarehouseID,
				Balance:     bal,
				LedgerSum:   sum,
				Difference:  bal - sum,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, d := range report.Drift {
		uc.logger.Error().
			Str("company_id", companyID).
			Str("variant_id", d.VariantID).
			Str("warehouse_id", d.WarehouseID).
			Int64("balance", d.Balance).
			Int64("ledger_sum", d.LedgerSum).
			Msg("saldo no coincide con el kardex")
	}
	uc.metrics.DriftDetected(companyID, len(report.Drift))
	return report, nil
}

// ReconcileAll recorre todas las empresas. Un fallo en una empresa no detiene las demás.
func (uc *ReconcileUseCase) ReconcileAll(ctx context.Context) ([]*dto.ReconciliationReport, error) {
	var companies []string
	err := uc.tx.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		var err error
		companies, err = repos.Warehouses.ListCompanyIDs(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	reports := make([]*dto.ReconciliationReport, 0, len(companies))
	for _, id := range companies {
		r, err := uc.Reconcile(ctx, id)
		if err != nil {
			uc.logger.Error().Err(err).Str("company_id", id).Msg("reconciliación fallida")
			continue
		}
		reports = append(reports, r)
	}
	return reports, nil
}
