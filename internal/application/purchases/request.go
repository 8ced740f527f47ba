package purchases

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// CreateFromRequest adapta el request HTTP a Create.
func (uc *ReceivingUseCase) CreateFromRequest(ctx context.Context, companyID, userID string, req dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error) {
	var status entity.PurchaseStatus
	if req.Status != "" {
		s, err := entity.ParsePurchaseStatus(req.Status)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		status = s
	}
	return uc.Create(ctx, CreateInput{
		CompanyID:   companyID,
		UserID:      userID,
		WarehouseID: req.WarehouseID,
		SupplierID:  req.SupplierID,
		Status:      status,
		Lines:       linesFromRequest(req.Lines),
	})
}

// UpdateLinesFromRequest adapta el request HTTP a UpdateLines.
func (uc *ReceivingUseCase) UpdateLinesFromRequest(ctx context.Context, companyID, userID, purchaseID string, req dto.UpdatePurchaseLinesRequest) (*dto.PurchaseResponse, error) {
	return uc.UpdateLines(ctx, companyID, userID, purchaseID, linesFromRequest(req.Lines))
}

// ChangeStatusFromRequest adapta el request HTTP a ChangeStatus.
func (uc *ReceivingUseCase) ChangeStatusFromRequest(ctx context.Context, companyID, userID, purchaseID string, req dto.ChangeStatusRequest) (*dto.PurchaseResponse, error) {
	s, err := entity.ParsePurchaseStatus(req.Status)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	return uc.ChangeStatus(ctx, companyID, userID, purchaseID, s)
}

func linesFromRequest(in []dto.PurchaseLineRequest) []LineInput {
	out := make([]LineInput, 0, len(in))
	for _, l := range in {
		out = append(out, LineInput{VariantID: l.VariantID, Quantity: l.Quantity, UnitCost: l.UnitCost})
	}
	return out
}
