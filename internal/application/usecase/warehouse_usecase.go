package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/rs/zerolog"
)

// WarehouseUseCase directorio de bodegas por empresa. Los cambios de bodega principal se hacen
// dentro de una transacción con el directorio de la empresa bloqueado.
type WarehouseUseCase struct {
	tx     inventory.TxRunner
	engine *inventory.StockEngine
	logger zerolog.Logger
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(tx inventory.TxRunner, engine *inventory.StockEngine, logger zerolog.Logger) *WarehouseUseCase {
	return &WarehouseUseCase{tx: tx, engine: engine, logger: logger}
}

// Create crea una nueva bodega (activa). Con IsPrimary exige que la empresa no tenga otra principal.
func (uc *WarehouseUseCase) Create(ctx context.Context, companyID string, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.engine.Now()
	warehouse := &entity.Warehouse{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      in.Name,
		Location:  in.Location,
		IsPrimary: in.IsPrimary,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := uc.tx.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		if err := repos.Warehouses.LockDirectory(ctx, companyID); err != nil {
			return err
		}
		if warehouse.IsPrimary {
			if err := ensureNoOtherPrimary(ctx, repos.Warehouses, companyID, warehouse.ID); err != nil {
				return err
			}
		}
		return repos.Warehouses.Create(ctx, warehouse)
	})
	if err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// GetByID obtiene una bodega de la empresa.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.WarehouseResponse, error) {
	var out *entity.Warehouse
	err := uc.tx.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		w, err := getWarehouse(ctx, repos.Warehouses, companyID, id)
		out = w
		return err
	})
	if err != nil {
		return nil, err
	}
	return toWarehouseResponse(out), nil
}

// Update actualiza nombre, ubicación o estado. Desactivar una bodega le quita la marca de principal.
// Reactivar nunca la vuelve principal: para eso está SetPrimary.
func (uc *WarehouseUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateWarehouseRequest) (*dto.WarehouseResponse, error) {
	var out *entity.Warehouse
	err := uc.tx.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		if err := repos.Warehouses.LockDirectory(ctx, companyID); err != nil {
			return err
		}
		w, err := getWarehouse(ctx, repos.Warehouses, companyID, id)
		if err != nil {
			return err
		}
		if in.Name != nil {
			if *in.Name == "" {
				return domain.ErrInvalidInput
			}
			w.Name = *in.Name
		}
		if in.Location != nil {
			w.Location = *in.Location
		}
		if in.Active != nil {
			w.Active = *in.Active
			if !w.Active {
				w.IsPrimary = false
			}
		}
		w.UpdatedAt = uc.engine.Now()
		out = w
		return repos.Warehouses.Update(ctx, w)
	})
	if err != nil {
		return nil, err
	}
	return toWarehouseResponse(out), nil
}

// SetPrimary marca la bodega como principal y degrada la anterior en la misma transacción.
func (uc *WarehouseUseCase) SetPrimary(ctx context.Context, companyID, id string) (*dto.WarehouseResponse, error) {
	var out *entity.Warehouse
	err := uc.tx.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		if err := repos.Warehouses.LockDirectory(ctx, companyID); err != nil {
			return err
		}
		w, err := getWarehouse(ctx, repos.Warehouses, companyID, id)
		if err != nil {
			return err
		}
		if !w.Active {
			return domain.Invariant(domain.RuleInactiveWarehouse, "la bodega %s está inactiva", w.Name)
		}
		now := uc.engine.Now()
		current, err := repos.Warehouses.GetPrimary(ctx, companyID)
		if err != nil {
			return err
		}
		if current != nil && current.ID != w.ID {
			current.IsPrimary = false
			current.UpdatedAt = now
			if err := repos.Warehouses.Update(ctx, current); err != nil {
				return err
			}
		}
		w.IsPrimary = true
		w.UpdatedAt = now
		out = w
		return repos.Warehouses.Update(ctx, w)
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info().Str("company_id", companyID).Str("warehouse_id", id).Msg("bodega principal actualizada")
	return toWarehouseResponse(out), nil
}

// Deactivate desactiva la bodega. Conserva su historial y saldos.
func (uc *WarehouseUseCase) Deactivate(ctx context.Context, companyID, id string) (*dto.WarehouseResponse, error) {
	inactive := false
	return uc.Update(ctx, companyID, id, dto.UpdateWarehouseRequest{Active: &inactive})
}

// List lista bodegas por empresa con paginación.
func (uc *WarehouseUseCase) List(ctx context.Context, companyID string, limit, offset int) (*dto.WarehouseListResponse, error) {
	var list []*entity.Warehouse
	err := uc.tx.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		var err error
		list, err = repos.Warehouses.ListByCompany(ctx, companyID, limit, offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *toWarehouseResponse(w))
	}
	return &dto.WarehouseListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete elimina una bodega sin historial. Con saldos o movimientos solo se puede desactivar.
func (uc *WarehouseUseCase) Delete(ctx context.Context, companyID, id string) error {
	return uc.tx.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		if err := repos.Warehouses.LockDirectory(ctx, companyID); err != nil {
			return err
		}
		w, err := getWarehouse(ctx, repos.Warehouses, companyID, id)
		if err != nil {
			return err
		}
		used, err := repos.Warehouses.HasStockHistory(ctx, companyID, w.ID)
		if err != nil {
			return err
		}
		if used {
			return domain.Invariant(domain.RuleWarehouseHasHistory, "la bodega %s tiene movimientos; desactívela en su lugar", w.Name)
		}
		return repos.Warehouses.Delete(ctx, companyID, w.ID)
	})
}

func getWarehouse(ctx context.Context, repo repository.WarehouseRepository, companyID, id string) (*entity.Warehouse, error) {
	w, err := repo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, domain.NotFound("bodega", id)
	}
	return w, nil
}

func ensureNoOtherPrimary(ctx context.Context, repo repository.WarehouseRepository, companyID, exceptID string) error {
	current, err := repo.GetPrimary(ctx, companyID)
	if err != nil {
		return err
	}
	if current != nil && current.ID != exceptID {
		return domain.Invariant(domain.RuleSecondPrimary, "la empresa ya tiene como principal la bodega %s", current.Name)
	}
	return nil
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	if w == nil {
		return nil
	}
	return &dto.WarehouseResponse{
		ID:        w.ID,
		CompanyID: w.CompanyID,
		Name:      w.Name,
		Location:  w.Location,
		IsPrimary: w.IsPrimary,
		Active:    w.Active,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}
