package inventory

import (
	"context"
	"io"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// LedgerUseCase vistas de lectura del Kardex y las dos únicas ediciones permitidas sobre un
// movimiento: cambiar la nota y ocultarlo.
type LedgerUseCase struct {
	tx       TxRunner
	engine   *StockEngine
	renderer KardexRenderer
	logger   zerolog.Logger
}

// NewLedgerUseCase construye el caso de uso. renderer puede ser nil si no se exporta PDF.
func NewLedgerUseCase(tx TxRunner, engine *StockEngine, renderer KardexRenderer, logger zerolog.Logger) *LedgerUseCase {
	return &LedgerUseCase{tx: tx, engine: engine, renderer: renderer, logger: logger}
}

// ListMovements lista movimientos de la empresa con filtros. Los ocultos solo salen con IncludeDeleted.
func (uc *LedgerUseCase) ListMovements(ctx context.Context, companyID string, req dto.MovementListRequest) (*dto.MovementListResponse, error) {
	req.DefaultPage()
	filter := repository.MovementFilter{
		VariantID:      req.VariantID,
		WarehouseID:    req.WarehouseID,
		ReferenceID:    req.ReferenceID,
		From:           req.From,
		To:             req.To,
		IncludeDeleted: req.IncludeDeleted,
		Limit:          req.Limit,
		Offset:         req.Offset,
	}
	if req.Kind != "" {
		kind, err := entity.ParseMovementKind(req.Kind)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		filter.Kind = kind
	}

	var list []*entity.Movement
	err := uc.tx.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		var err error
		list, err = repos.Movements.List(ctx, companyID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, toMovementResponse(m))
	}
	return &dto.MovementListResponse{Items: items, Page: dto.PageResponse{Limit: req.Limit, Offset: req.Offset}}, nil
}

// Kardex devuelve los movimientos visibles de un par (variante, bodega) con saldo acumulado.
// El saldo se calcula sobre todos los movimientos, incluidos los ocultos, porque ocultar no revierte stock.
func (uc *LedgerUseCase) Kardex(ctx context.Context, companyID, variantID, warehouseID string, from, to *time.Time) (*dto.KardexResponse, error) {
	out := &dto.KardexResponse{
		CompanyID:   companyID,
		VariantID:   variantID,
		WarehouseID: warehouseID,
		GeneratedAt: uc.engine.Now(),
		Entries:     []dto.KardexEntry{},
	}
	err := uc.tx.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		variant, err := ResolveVariant(ctx, repos.Variants, companyID, variantID)
		if err != nil {
			return err
		}
		wh, err := repos.Warehouses.GetByID(ctx, companyID, warehouseID)
		if err != nil {
			return err
		}
		if wh == nil {
			return domain.NotFound("bodega", warehouseID)
		}
		out.SKU = variant.SKU
		out.VariantName = variant.Name
		out.WarehouseName = wh.Name

		movs, err := repos.Movements.List(ctx, companyID, repository.MovementFilter{
			VariantID:      variantID,
			WarehouseID:    warehouseID,
			IncludeDeleted: true,
			AppliedOrder:   true,
		})
		if err != nil {
			return err
		}

		var balance int64
		avg := decimal.Zero
		for _, m := range movs {
			if m.Inbound() && m.UnitCost != nil {
				avg = domaininv.WeightedAverageCost(balance, avg, m.Quantity, *m.UnitCost)
			}
			balance += m.Quantity
			if m.Hidden() || !inRange(m.OccurredAt, from, to) {
				continue
			}
			out.Entries = append(out.Entries, dto.KardexEntry{
				MovementResponse: toMovementResponse(m),
				Balance:          balance,
				AverageCost:      avg,
			})
		}
		out.FinalBalance = balance
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// KardexPDF escribe el Kardex del par en formato PDF.
func (uc *LedgerUseCase) KardexPDF(ctx context.Context, w io.Writer, companyID, variantID, warehouseID string, from, to *time.Time) error {
	if uc.renderer == nil {
		return domain.ErrInvalidInput
	}
	k, err := uc.Kardex(ctx, companyID, variantID, warehouseID, from, to)
	if err != nil {
		return err
	}
	return uc.renderer.RenderKardex(w, k)
}

// HideMovement oculta el movimiento de los listados. No revierte su efecto en el stock:
// para corregir un saldo se registra un ajuste.
func (uc *LedgerUseCase) HideMovement(ctx context.Context, companyID, id string) error {
	err := uc.tx.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		m, err := getMovement(ctx, repos.Movements, companyID, id)
		if err != nil {
			return err
		}
		if m.Hidden() {
			return nil
		}
		return repos.Movements.SoftDelete(ctx, companyID, id, uc.engine.Now())
	})
	if err != nil {
		return err
	}
	uc.logger.Info().Str("company_id", companyID).Str("movement_id", id).Msg("movimiento ocultado del historial (sin reverso de stock)")
	return nil
}

// UpdateNote cambia la nota, único campo editable de un movimiento.
func (uc *LedgerUseCase) UpdateNote(ctx context.Context, companyID, id, note string) (*dto.MovementResponse, error) {
	var out dto.MovementResponse
	err := uc.tx.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		m, err := getMovement(ctx, repos.Movements, companyID, id)
		if err != nil {
			return err
		}
		if err := repos.Movements.UpdateNote(ctx, companyID, id, note); err != nil {
			return err
		}
		m.Note = note
		out = toMovementResponse(m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// StockByWarehouse saldos de todas las variantes en una bodega.
func (uc *LedgerUseCase) StockByWarehouse(ctx context.Context, companyID, warehouseID string) ([]dto.StockLevelResponse, error) {
	var list []*entity.StockLevel
	err := uc.tx.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		wh, err := repos.Warehouses.GetByID(ctx, companyID, warehouseID)
		if err != nil {
			return err
		}
		if wh == nil {
			return domain.NotFound("bodega", warehouseID)
		}
		list, err = repos.StockLevels.ListByWarehouse(ctx, companyID, warehouseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toStockLevelResponses(list), nil
}

// StockByVariant saldos de una variante en todas las bodegas.
func (uc *LedgerUseCase) StockByVariant(ctx context.Context, companyID, variantID string) ([]dto.StockLevelResponse, error) {
	var list []*entity.StockLevel
	err := uc.tx.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		if _, err := ResolveVariant(ctx, repos.Variants, companyID, variantID); err != nil {
			return err
		}
		var err error
		list, err = repos.StockLevels.ListByVariant(ctx, companyID, variantID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toStockLevelResponses(list), nil
}

// GetStock saldo de un par; un par sin fila vale 0.
func (uc *LedgerUseCase) GetStock(ctx context.Context, companyID, variantID, warehouseID string) (*dto.StockLevelResponse, error) {
	out := &dto.StockLevelResponse{VariantID: variantID, WarehouseID: warehouseID}
	err := uc.tx.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		level, err := repos.StockLevels.Get(ctx, companyID, variantID, warehouseID)
		if err != nil {
			return err
		}
		if level != nil {
			out.Quantity = level.Quantity
			out.UpdatedAt = level.UpdatedAt
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func getMovement(ctx context.Context, repo repository.MovementRepository, companyID, id string) (*entity.Movement, error) {
	m, err := repo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NotFound("movimiento", id)
	}
	return m, nil
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

func toStockLevelResponses(list []*entity.StockLevel) []dto.StockLevelResponse {
	items := make([]dto.StockLevelResponse, 0, len(list))
	for _, l := range list {
		items = append(items, dto.StockLevelResponse{
			VariantID:   l.VariantID,
			WarehouseID: l.WarehouseID,
			Quantity:    l.Quantity,
			UpdatedAt:   l.UpdatedAt,
		})
	}
	return items
}
