package orders

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

// FulfillmentUseCase traduce la vida de un pedido en mutaciones de stock y movimientos SALE.
// El stock se descuenta al crear el pedido, esté Pending o Completed.
type FulfillmentUseCase struct {
	tx              inventory.TxRunner
	engine          *inventory.StockEngine
	restockOnCancel bool
	logger          zerolog.Logger
}

// NewFulfillmentUseCase construye el caso de uso. Con restockOnCancel=false cancelar un pedido
// no devuelve stock.
func NewFulfillmentUseCase(tx inventory.TxRunner, engine *inventory.StockEngine, restockOnCancel bool, logger zerolog.Logger) *FulfillmentUseCase {
	return &FulfillmentUseCase{tx: tx, engine: engine, restockOnCancel: restockOnCancel, logger: logger}
}

// LineInput línea pedida. UnitPrice nil toma el precio de referencia de la variante.
type LineInput struct {
	VariantID string
	Quantity  int64
	UnitPrice *decimal.Decimal
}

// CreateInput entrada de Create. WarehouseID vacío usa la bodega principal.
type CreateInput struct {
	CompanyID   string
	UserID      string
	WarehouseID string
	CustomerID  string
	Status      entity.OrderStatus
	Lines       []LineInput
}

// Create crea el pedido y descuenta cada línea. Si una línea no tiene stock no queda nada del intento.
func (uc *FulfillmentUseCase) Create(ctx context.Context, in CreateInput) (*dto.OrderResponse, error) {
	status := in.Status
	if status == "" {
		status = entity.OrderPending
	}
	if status != entity.OrderPending && status != entity.OrderCompleted {
		return nil, domain.Invariant(domain.RuleInvalidTransition, "un pedido no puede crearse en estado %s", status)
	}

	var order *entity.Order
	err := uc.tx.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		wh, err := inventory.ResolveWarehouse(ctx, repos.Warehouses, in.CompanyID, in.WarehouseID)
		if err != nil {
			return err
		}
		now := uc.engine.Now()
		order = &entity.Order{
			ID:          uuid.New().String(),
			CompanyID:   in.CompanyID,
			WarehouseID: wh.ID,
			CustomerID:  in.CustomerID,
			Status:      status,
			CreatedBy:   in.UserID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		lines, err := buildLines(ctx, repos.Variants, in.CompanyID, order.ID, in.Lines)
		if err != nil {
			return err
		}
		order.Lines = lines
		order.Total = domaininv.OrderTotal(lines)

		if err := repos.Orders.Create(ctx, order); err != nil {
			return err
		}
		if _, err := uc.engine.Post(ctx, repos, in.CompanyID, in.UserID, saleLines(order, lines)); err != nil {
			return err
		}
		return repos.Orders.CreateLines(ctx, order.ID, lines)
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info().Str("company_id", in.CompanyID).Str("order_id", order.ID).Str("status", string(order.Status)).Msg("pedido creado")
	return toOrderResponse(order), nil
}

// UpdateLines reemplaza las líneas de un pedido en una sola transacción: primero revierte el efecto
// de las líneas actuales, luego aplica las nuevas. Si las nuevas no tienen stock el rollback deja el
// pedido y los saldos como estaban.
func (uc *FulfillmentUseCase) UpdateLines(ctx context.Context, companyID, userID, orderID string, in []LineInput) (*dto.OrderResponse, error) {
	var order *entity.Order
	err := uc.tx.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		var err error
		order, err = lockOrder(ctx, repos.Orders, companyID, orderID)
		if err != nil {
			return err
		}
		if !order.Status.Editable() {
			return domain.Invariant(domain.RuleInvalidTransition, "el pedido %s está %s", order.ID, order.Status)
		}

		current, err := repos.Orders.ListLines(ctx, order.ID)
		if err != nil {
			return err
		}
		if _, err := uc.engine.Reverse(ctx, repos, companyID, userID, withNote(saleLines(order, current), "reverso por edición")); err != nil {
			return err
		}
		if err := repos.Orders.DeleteLines(ctx, order.ID); err != nil {
			return err
		}

		lines, err := buildLines(ctx, repos.Variants, companyID, order.ID, in)
		if err != nil {
			return err
		}
		if _, err := uc.engine.Post(ctx, repos, companyID, userID, saleLines(order, lines)); err != nil {
			return err
		}
		if err := repos.Orders.CreateLines(ctx, order.ID, lines); err != nil {
			return err
		}
		order.Lines = lines
		order.Total = domaininv.OrderTotal(lines)
		order.UpdatedAt = uc.engine.Now()
		return repos.Orders.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info().Str("company_id", companyID).Str("order_id", orderID).Int("lines", len(order.Lines)).Msg("pedido editado")
	return toOrderResponse(order), nil
}

// ChangeStatus aplica la máquina de estados. Cambiar al mismo estado no hace nada.
// Cancelar solo devuelve stock si el servicio se configuró con restockOnCancel.
func (uc *FulfillmentUseCase) ChangeStatus(ctx context.Context, companyID, userID, orderID string, next entity.OrderStatus) (*dto.OrderResponse, error) {
	var (
		order *entity.Order
		prev  entity.OrderStatus
	)
	err := uc.tx.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		var err error
		order, err = lockOrder(ctx, repos.Orders, companyID, orderID)
		if err != nil {
			return err
		}
		lines, err := repos.Orders.ListLines(ctx, order.ID)
		if err != nil {
			return err
		}
		order.Lines = lines
		prev = order.Status
		if prev == next {
			return nil
		}
		if !prev.CanTransitionTo(next) {
			return domain.Invariant(domain.RuleInvalidTransition, "%s → %s", prev, next)
		}
		if next == entity.OrderCancelled && uc.restockOnCancel {
			if _, err := uc.engine.Reverse(ctx, repos, companyID, userID, withNote(saleLines(order, lines), "reverso por cancelación")); err != nil {
				return err
			}
		}
		order.Status = next
		order.UpdatedAt = uc.engine.Now()
		return repos.Orders.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	if prev != next {
		uc.logger.Info().Str("company_id", companyID).Str("order_id", orderID).
			Str("from", string(prev)).Str("to", string(next)).Msg("estado de pedido actualizado")
	}
	return toOrderResponse(order), nil
}

// Get devuelve el pedido con sus líneas.
func (uc *FulfillmentUseCase) Get(ctx context.Context, companyID, orderID string) (*dto.OrderResponse, error) {
	var order *entity.Order
	err := uc.tx.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		var err error
		order, err = repos.Orders.GetByID(ctx, companyID, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.NotFound("pedido", orderID)
		}
		order.Lines, err = repos.Orders.ListLines(ctx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(order), nil
}

// List lista pedidos de la empresa (sin líneas).
func (uc *FulfillmentUseCase) List(ctx context.Context, companyID string, filter repository.DocumentFilter) (*dto.OrderListResponse, error) {
	var list []*entity.Order
	err := uc.tx.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		var err error
		list, err = repos.Orders.List(ctx, companyID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *toOrderResponse(o))
	}
	return &dto.OrderListResponse{Items: items, Page: dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset}}, nil
}

func lockOrder(ctx context.Context, repo repository.OrderRepository, companyID, id string) (*entity.Order, error) {
	order, err := repo.GetForUpdate(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.NotFound("pedido", id)
	}
	return order, nil
}

// buildLines valida las variantes y fija el precio histórico de cada línea.
func buildLines(ctx context.Context, variants repository.VariantRepository, companyID, orderID string, in []LineInput) ([]entity.OrderLine, error) {
	lines := make([]entity.OrderLine, 0, len(in))
	for _, l := range in {
		line := entity.OrderLine{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			VariantID: l.VariantID,
			Quantity:  l.Quantity,
		}
		if l.UnitPrice != nil {
			line.UnitPrice = *l.UnitPrice
		}
		lines = append(lines, line)
	}
	if err := domaininv.ValidateOrderLines(lines); err != nil {
		return nil, err
	}
	for i := range lines {
		v, err := inventory.ResolveVariant(ctx, variants, companyID, lines[i].VariantID)
		if err != nil {
			return nil, err
		}
		if in[i].UnitPrice == nil {
			lines[i].UnitPrice = v.Price
		}
	}
	return lines, nil
}

func saleLines(order *entity.Order, lines []entity.OrderLine) []inventory.StockLine {
	out := make([]inventory.StockLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, inventory.StockLine{
			VariantID:   l.VariantID,
			WarehouseID: order.WarehouseID,
			Quantity:    -l.Quantity,
			Kind:        entity.MovementKindSale,
			ReferenceID: order.ID,
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

func toOrderResponse(o *entity.Order) *dto.OrderResponse {
	lines := make([]dto.OrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, dto.OrderLineResponse{
			ID:        l.ID,
			VariantID: l.VariantID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal(),
		})
	}
	return &dto.OrderResponse{
		ID:          o.ID,
		CompanyID:   o.CompanyID,
		WarehouseID: o.WarehouseID,
		CustomerID:  o.CustomerID,
		Status:      string(o.Status),
		Total:       o.Total,
		Lines:       lines,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}
