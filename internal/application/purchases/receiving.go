package purchases

import (
	"context"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ReceivingUseCase traduce la recepción y cancelación de compras en entradas/salidas de stock.
// Solo el estado Received tiene efecto en el inventario.
type ReceivingUseCase struct {
	tx     inventory.TxRunner
	engine *inventory.StockEngine
	logger zerolog.Logger
}

// NewReceivingUseCase construye el caso de uso.
func NewReceivingUseCase(tx inventory.TxRunner, engine *inventory.StockEngine, logger zerolog.Logger) *ReceivingUseCase {
	return &ReceivingUseCase{tx: tx, engine: engine, logger: logger}
}

// LineInput línea de compra con su costo unitario histórico.
type LineInput struct {
	VariantID string
	Quantity  int64
	UnitCost  decimal.Decimal
}

// CreateInput entrada de Create. WarehouseID vacío usa la bodega principal.
type CreateInput struct {
	CompanyID   string
	UserID      string
	WarehouseID string
	SupplierID  string
	Status      entity.PurchaseStatus
	Lines       []LineInput
}

// Create registra la compra. Si nace Received ingresa el stock y actualiza el costo de cada variante.
func (uc *ReceivingUseCase) Create(ctx context.Context, in CreateInput) (*dto.PurchaseResponse, error) {
	status := in.Status
	if status == "" {
		status = entity.PurchasePending
	}
	if status != entity.PurchasePending && status != entity.PurchaseReceived {
		return nil, domain.Invariant(domain.RuleInvalidTransition, "una compra no puede crearse en estado %s", status)
	}

	var purchase *entity.Purchase
	err := uc.tx.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		wh, err := inventory.ResolveWarehouse(ctx, repos.Warehouses, in.CompanyID, in.WarehouseID)
		if err != nil {
			return err
		}
		now := uc.engine.Now()
		purchase = &entity.Purchase{
			ID:          uuid.New().String(),
			CompanyID:   in.CompanyID,
			WarehouseID: wh.ID,
			SupplierID:  in.SupplierID,
			Status:      status,
			CreatedBy:   in.UserID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		lines, err := buildLines(ctx, repos.Variants, in.CompanyID, purchase.ID, in.Lines)
		if err != nil {
			return err
		}
		purchase.Lines = lines
		purchase.Total = domaininv.PurchaseTotal(lines)

		if err := repos.Purchases.Create(ctx, purchase); err != nil {
			return err
		}
		if err := repos.Purchases.CreateLines(ctx, purchase.ID, lines); err != nil {
			return err
		}
		if status == entity.PurchaseReceived {
			return uc.receive(ctx, repos, in.UserID, purchase, lines)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info().Str("company_id", in.CompanyID).Str("purchase_id", purchase.ID).Str("status", string(purchase.Status)).Msg("compra creada")
	return toPurchaseResponse(purchase), nil
}

// ChangeStatus aplica la transición. Pending → Received ingresa stock; Received → Cancelled lo retira y
// falla con stock insuficiente si la mercancía ya salió. El resto de transiciones válidas no mueve stock.
func (uc *ReceivingUseCase) ChangeStatus(ctx context.Context, companyID, userID, purchaseID string, next entity.PurchaseStatus) (*dto.PurchaseResponse, error) {
	var (
		purchase *entity.Purchase
		prev     entity.PurchaseStatus
	)
	err := uc.tx.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		var err error
		purchase, err = lockPurchase(ctx, repos.Purchases, companyID, purchaseID)
		if err != nil {
			return err
		}
		// Se releen las líneas dentro de la transacción, con la cabecera bloqueada
		lines, err := repos.Purchases.ListLines(ctx, purchase.ID)
		if err != nil {
			return err
		}
		purchase.Lines = lines
		prev = purchase.Status
		if prev == next {
			return nil
		}
		if !prev.CanTransitionTo(next) {
			return domain.Invariant(domain.RuleInvalidTransition, "%s → %s", prev, next)
		}

		switch {
		case prev == entity.PurchasePending && next == entity.PurchaseReceived:
			if err := uc.receive(ctx, repos, userID, purchase, lines); err != nil {
				return err
			}
		case prev == entity.PurchaseReceived && next == entity.PurchaseCancelled:
			if _, err := uc.engine.Reverse(ctx, repos, companyID, userID, withNote(purchaseLines(purchase, lines), "reverso por cancelación")); err != nil {
				return err
			}
		}
		purchase.Status = next
		purchase.UpdatedAt = uc.engine.Now()
		return repos.Purchases.Update(ctx, purchase)
	})
	if err != nil {
		return nil, err
	}
	if prev != next {
		uc.logger.Info().Str("company_id", companyID).Str("purchase_id", purchaseID).
			Str("from", string(prev)).Str("to", string(next)).Msg("estado de compra actualizado")
	}
	return toPurchaseResponse(purchase), nil
}

// UpdateLines reemplaza las líneas. En una compra Pending solo cambia el documento; en una Received
// revierte la entrada anterior y aplica la nueva en la misma transacción.
func (uc *ReceivingUseCase) UpdateLines(ctx context.Context, companyID, userID, purchaseID string, in []LineInput) (*dto.PurchaseResponse, error) {
	var purchase *entity.Purchase
	err := uc.tx.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		var err error
		purchase, err = lockPurchase(ctx, repos.Purchases, companyID, purchaseID)
		if err != nil {
			return err
		}
		if purchase.Status == entity.PurchaseCancelled {
			return domain.Invariant(domain.RuleInvalidTransition, "la compra %s está cancelada", purchase.ID)
		}
		current, err := repos.Purchases.ListLines(ctx, purchase.ID)
		if err != nil {
			return err
		}
		lines, err := buildLines(ctx, repos.Variants, companyID, purchase.ID, in)
		if err != nil {
			return err
		}

		received := purchase.Status == entity.PurchaseReceived
		if received {
			if _, err := uc.engine.Reverse(ctx, repos, companyID, userID, withNote(purchaseLines(purchase, current), "reverso por edición")); err != nil {
				return err
			}
		}
		if err := repos.Purchases.DeleteLines(ctx, purchase.ID); err != nil {
			return err
		}
		if err := repos.Purchases.CreateLines(ctx, purchase.ID, lines); err != nil {
			return err
		}
		if received {
			if err := uc.receive(ctx, repos, userID, purchase, lines); err != nil {
				return err
			}
		}
		purchase.Lines = lines
		purchase.Total = domaininv.PurchaseTotal(lines)
		purchase.UpdatedAt = uc.engine.Now()
		return repos.Purchases.Update(ctx, purchase)
	})
	if err != nil {
		return nil, err
	}
	return toPurchaseResponse(purchase), nil
}

// Get devuelve la compra con sus líneas.
func (uc *ReceivingUseCase) Get(ctx context.Context, companyID, purchaseID string) (*dto.PurchaseResponse, error) {
	var purchase *entity.Purchase
	err := uc.tx.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		var err error
		purchase, err = repos.Purchases.GetByID(ctx, companyID, purchaseID)
		if err != nil {
			return err
		}
		if purchase == nil {
			return domain.NotFound("compra", purchaseID)
		}
		purchase.Lines, err = repos.Purchases.ListLines(ctx, purchase.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toPurchaseResponse(purchase), nil
}

// List lista compras de la empresa (sin líneas).
func (uc *ReceivingUseCase) List(ctx context.Context, companyID string, filter repository.DocumentFilter) (*dto.PurchaseListResponse, error) {
	var list []*entity.Purchase
	err := uc.tx.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		var err error
		list, err = repos.Purchases.List(ctx, companyID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.PurchaseResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toPurchaseResponse(p))
	}
	return &dto.PurchaseListResponse{Items: items, Page: dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset}}, nil
}

// receive ingresa cada línea y fija el costo de referencia de la variante al costo de la línea
// (política de último costo).
func (uc *ReceivingUseCase) receive(ctx context.Context, repos repository.TxRepos, userID string, p *entity.Purchase, lines []entity.PurchaseLine) error {
	if _, err := uc.engine.Post(ctx, repos, p.CompanyID, userID, purchaseLines(p, lines)); err != nil {
		return err
	}
	for _, l := range lines {
		if err := repos.Variants.UpdateCost(ctx, p.CompanyID, l.VariantID, l.UnitCost); err != nil {
			return err
		}
	}
	return nil
}

func lockPurchase(ctx context.Context, repo repository.PurchaseRepository, companyID, id string) (*entity.Purchase, error) {
	p, err := repo.GetForUpdate(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("compra", id)
	}
	return p, nil
}

func buildLines(ctx context.Context, variants repository.VariantRepository, companyID, purchaseID string, in []LineInput) ([]entity.PurchaseLine, error) {
	lines := make([]entity.PurchaseLine, 0, len(in))
	for _, l := range in {
		lines = append(lines, entity.PurchaseLine{
			ID:         uuid.New().String(),
			PurchaseID: purchaseID,
			VariantID:  l.VariantID,
			Quantity:   l.Quantity,
			UnitCost:   l.UnitCost,
		})
	}
	if err := domaininv.ValidatePurchaseLines(lines); err != nil {
		return nil, err
	}
	for _, l := range lines {
		if _, err := inventory.ResolveVariant(ctx, variants, companyID, l.VariantID); err != nil {
			return nil, err
		}
	}
	return lines, nil
}

func purchaseLines(p *entity.Purchase, lines []entity.PurchaseLine) []inventory.StockLine {
	out := make([]inventory.StockLine, 0, len(lines))
	for _, l := range lines {
		cost := l.UnitCost
		out = append(out, inventory.StockLine{
			VariantID:   l.VariantID,
			WarehouseID: p.WarehouseID,
			Quantity:    l.Quantity,
			Kind:        entity.MovementKindPurchase,
			UnitCost:    &cost,
			ReferenceID: p.ID,
		})
	}
	return out
}

func withNote(lines []inventory.StockLine, note string) []inventory.StockLine {
	for i := range lines {
		lines[i].Note = note
	}
	return lines
}

func toPurchaseResponse(p *entity.Purchase) *dto.PurchaseResponse {
	lines := make([]dto.PurchaseLineResponse, 0, len(p.Lines))
	for _, l := range p.Lines {
		lines = append(lines, dto.PurchaseLineResponse{
			ID:        l.ID,
			VariantID: l.VariantID,
			Quantity:  l.Quantity,
			UnitCost:  l.UnitCost,
			Subtotal:  l.Subtotal(),
		})
	}
	return &dto.PurchaseResponse{
		ID:          p.ID,
		CompanyID:   p.CompanyID,
		WarehouseID: p.WarehouseID,
		SupplierID:  p.SupplierID,
		Status:      string(p.Status),
		Total:       p.Total,
		Lines:       lines,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
