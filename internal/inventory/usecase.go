package inventory

import (
	"context"

	"github.com/fekuna/storefront-service/internal/inventory/dto"
	"github.com/fekuna/storefront-service/internal/model"
)

type UseCase interface {
	AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.InventoryMovement, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)
	ListLowStock(ctx context.Context, filters *dto.LowStockFilters) ([]model.Product, int, error)
}

// ListingInvalidator drops cached catalog listings after stock moves.
type ListingInvalidator interface {
	InvalidateListings(ctx context.Context)
}
