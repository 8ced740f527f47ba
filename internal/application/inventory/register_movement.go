package inventory

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RegisterMovementUseCase registra ajustes manuales y traslados entre bodegas de forma transaccional,
// con bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback a cargo del TxRunner.
type RegisterMovementUseCase struct {
	tx     TxRunner
	engine *StockEngine
	logger zerolog.Logger
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(tx TxRunner, engine *StockEngine, logger zerolog.Logger) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{tx: tx, engine: engine, logger: logger}
}

// AdjustmentInput entrada de un ajuste manual. ENTRADA y AJUSTE suman, SALIDA resta.
type AdjustmentInput struct {
	CompanyID   string
	UserID      string
	VariantID   string
	WarehouseID string
	Type        entity.AdjustmentType
	Quantity    int64
	UnitCost    *decimal.Decimal
	Note        string
}

// TransferInput entrada de un traslado entre dos bodegas de la misma empresa.
type TransferInput struct {
	CompanyID       string
	UserID          string
	VariantID       string
	FromWarehouseID string
	ToWarehouseID   string
	Quantity        int64
	Note            string
}

// Adjust aplica un ajuste de un solo lado y escribe exactamente un movimiento con el signo de la dirección.
func (uc *RegisterMovementUseCase) Adjust(ctx context.Context, in AdjustmentInput) (*dto.AdjustmentResponse, error) {
	if in.VariantID == "" || in.WarehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Quantity <= 0 {
		return nil, domain.Invariant(domain.RuleNonPositiveQuantity, "ajuste de %d unidades", in.Quantity)
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	var (
		balance int64
		mov     *entity.Movement
	)
	err := uc.tx.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		if _, err := ResolveVariant(ctx, repos.Variants, in.CompanyID, in.VariantID); err != nil {
			return err
		}
		if _, err := ResolveWarehouse(ctx, repos.Warehouses, in.CompanyID, in.WarehouseID); err != nil {
			return err
		}

		signed := in.Quantity
		var err error
		switch in.Type {
		case entity.AdjustmentEntrada, entity.AdjustmentAjuste:
			balance, err = uc.engine.Increase(ctx, repos.StockLevels, in.CompanyID, in.VariantID, in.WarehouseID, in.Quantity)
		case entity.AdjustmentSalida:
			signed = -in.Quantity
			balance, err = uc.engine.Decrease(ctx, repos.StockLevels, in.CompanyID, in.VariantID, in.WarehouseID, in.Quantity)
		default:
			return domain.ErrInvalidInput
		}
		if err != nil {
			return err
		}

		note := in.Note
		if note == "" {
			note = string(in.Type)
		}
		mov = &entity.Movement{
			CompanyID:   in.CompanyID,
			VariantID:   in.VariantID,
			WarehouseID: in.WarehouseID,
			Kind:        entity.MovementKindAdjustment,
			Quantity:    signed,
			UnitCost:    in.UnitCost,
			Note:        note,
			CreatedBy:   in.UserID,
		}
		return uc.engine.RecordMovement(ctx, repos.Movements, mov)
	})
	if err != nil {
		return nil, err
	}
	return &dto.AdjustmentResponse{Balance: balance, Movement: toMovementResponse(mov)}, nil
}

// Transfer resta en origen y suma en destino en la misma transacción. Escribe dos movimientos
// TRANSFER; cada uno referencia la bodega contraparte.
func (uc *RegisterMovementUseCase) Transfer(ctx context.Context, in TransferInput) (*dto.TransferResponse, error) {
	if in.VariantID == "" || in.FromWarehouseID == "" || in.ToWarehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.FromWarehouseID == in.ToWarehouseID {
		return nil, &domain.InvariantError{Rule: domain.RuleSameWarehouseTransfer, Detail: "origen y destino son la misma bodega"}
	}
	if in.Quantity <= 0 {
		return nil, domain.Invariant(domain.RuleNonPositiveQuantity, "traslado de %d unidades", in.Quantity)
	}

	out := &dto.TransferResponse{}
	err := uc.tx.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		variant, err := ResolveVariant(ctx, repos.Variants, in.CompanyID, in.VariantID)
		if err != nil {
			return err
		}
		if _, err := ResolveWarehouse(ctx, repos.Warehouses, in.CompanyID, in.FromWarehouseID); err != nil {
			return err
		}
		if _, err := ResolveWarehouse(ctx, repos.Warehouses, in.CompanyID, in.ToWarehouseID); err != nil {
			return err
		}

		cost := variant.Cost
		movs, err := uc.engine.Post(ctx, repos, in.CompanyID, in.UserID, []StockLine{
			{
				VariantID:   in.VariantID,
				WarehouseID: in.FromWarehouseID,
				Quantity:    -in.Quantity,
				Kind:        entity.MovementKindTransfer,
				UnitCost:    &cost,
				ReferenceID: in.ToWarehouseID,
				Note:        in.Note,
			},
			{
				VariantID:   in.VariantID,
				WarehouseID: in.ToWarehouseID,
				Quantity:    in.Quantity,
				Kind:        entity.MovementKindTransfer,
				UnitCost:    &cost,
				ReferenceID: in.FromWarehouseID,
				Note:        in.Note,
			},
		})
		if err != nil {
			return err
		}
		for _, m := range movs {
			out.Movements = append(out.Movements, toMovementResponse(m))
		}

		origin, err := repos.StockLevels.Get(ctx, in.CompanyID, in.VariantID, in.FromWarehouseID)
		if err != nil {
			return err
		}
		dest, err := repos.StockLevels.Get(ctx, in.CompanyID, in.VariantID, in.ToWarehouseID)
		if err != nil {
			return err
		}
		if origin != nil {
			out.OriginQuantity = origin.Quantity
		}
		if dest != nil {
			out.DestinationQuantity = dest.Quantity
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info().
		Str("company_id", in.CompanyID).
		Str("variant_id", in.VariantID).
		Str("from", in.FromWarehouseID).
		Str("to", in.ToWarehouseID).
		Int64("quantity", in.Quantity).
		Msg("traslado registrado")
	return out, nil
}

// AdjustFromRequest adapta el request HTTP al caso de uso Adjust.
func (uc *RegisterMovementUseCase) AdjustFromRequest(ctx context.Context, companyID, userID string, req dto.AdjustmentRequest) (*dto.AdjustmentResponse, error) {
	t, err := entity.ParseAdjustmentType(req.Type)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	return uc.Adjust(ctx, AdjustmentInput{
		CompanyID:   companyID,
		UserID:      userID,
		VariantID:   req.VariantID,
		WarehouseID: req.WarehouseID,
		Type:        t,
		Quantity:    req.Quantity,
		UnitCost:    req.UnitCost,
		Note:        req.Note,
	})
}

// TransferFromRequest adapta el request HTTP al caso de uso Transfer.
func (uc *RegisterMovementUseCase) TransferFromRequest(ctx context.Context, companyID, userID string, req dto.TransferRequest) (*dto.TransferResponse, error) {
	return uc.Transfer(ctx, TransferInput{
		CompanyID:       companyID,
		UserID:          userID,
		VariantID:       req.VariantID,
		FromWarehouseID: req.FromWarehouseID,
		ToWarehouseID:   req.ToWarehouseID,
		Quantity:        req.Quantity,
		Note:            req.Note,
	})
}

func toMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:          m.ID,
		VariantID:   m.VariantID,
		WarehouseID: m.WarehouseID,
		Kind:        string(m.Kind),
		Quantity:    m.Quantity,
		UnitCost:    m.UnitCost,
		ReferenceID: m.ReferenceID,
		OccurredAt:  m.OccurredAt,
		Note:        m.Note,
		CreatedBy:   m.CreatedBy,
		Hidden:      m.Hidden(),
	}
}
