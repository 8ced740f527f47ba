package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// PurchaseRepository puerto de persistencia de compras y sus líneas.
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *entity.Purchase) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Purchase, error)
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.Purchase, error)
	Update(ctx context.Context, purchase *entity.Purchase) error
	ListLines(ctx context.Context, purchaseID string) ([]entity.PurchaseLine, error)
	DeleteLines(ctx context.Context, purchaseID string) error
	CreateLines(ctx context.Context, purchaseID string, lines []entity.PurchaseLine) error
	List(ctx context.Context, companyID string, filter DocumentFilter) ([]*entity.Purchase, error)
}
