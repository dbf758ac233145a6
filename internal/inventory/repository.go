package inventory

import (
	"context"
	"errors"

	"github.com/fekuna/storefront-service/internal/inventory/dto"
	"github.com/fekuna/storefront-service/internal/model"
)

var (
	ErrProductNotFound   = errors.New("inventory: product not found")
	ErrInsufficientStock = errors.New("inventory: insufficient stock")
)

type Repository interface {
	// AdjustStock applies movement.QuantityChange to the product and records
	// the movement in one transaction, filling QuantityBefore/After. When the
	// result would be negative it returns ErrInsufficientStock with
	// QuantityBefore set to the current stock.
	AdjustStock(ctx context.Context, movement *model.InventoryMovement) error
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)
	ListLowStock(ctx context.Context, filters *dto.LowStockFilters) ([]model.Product, int, error)
}
