package orders

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// CreateFromRequest adapta el request HTTP a Create.
func (uc *FulfillmentUseCase) CreateFromRequest(ctx context.Context, companyID, userID string, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	var status entity.OrderStatus
	if req.Status != "" {
		s, err := entity.ParseOrderStatus(req.Status)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		status = s
	}
	return uc.Create(ctx, CreateInput{
		CompanyID:   companyID,
		UserID:      userID,
		WarehouseID: req.WarehouseID,
		CustomerID:  req.CustomerID,
		Status:      status,
		Lines:       linesFromRequest(req.Lines),
	})
}

// UpdateLinesFromRequest adapta el request HTTP a UpdateLines.
func (uc *FulfillmentUseCase) UpdateLinesFromRequest(ctx context.Context, companyID, userID, orderID string, req dto.UpdateOrderLinesRequest) (*dto.OrderResponse, error) {
	return uc.UpdateLines(ctx, companyID, userID, orderID, linesFromRequest(req.Lines))
}

// ChangeStatusFromRequest adapta el request HTTP a ChangeStatus.
func (uc *FulfillmentUseCase) ChangeStatusFromRequest(ctx context.Context, companyID, userID, orderID string, req dto.ChangeStatusRequest) (*dto.OrderResponse, error) {
	s, err := entity.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	return uc.ChangeStatus(ctx, companyID, userID, orderID, s)
}

func linesFromRequest(in []dto.OrderLineRequest) []LineInput {
	out := make([]LineInput, 0, len(in))
	for _, l := range in {
		out = append(out, LineInput{VariantID: l.VariantID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	return out
}
