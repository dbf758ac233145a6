package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fekuna/storefront-service/internal/apperror"
	"github.com/fekuna/storefront-service/internal/inventory"
	"github.com/fekuna/storefront-service/internal/inventory/dto"
	"github.com/fekuna/storefront-service/internal/model"
	"github.com/fekuna/storefront-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultLowStockThreshold = 5

type inventoryUseCase struct {
	repo     inventory.Repository
	listings inventory.ListingInvalidator
	logger   logger.ZapLogger
}

func NewInventoryUseCase(repo inventory.Repository, listings inventory.ListingInvalidator, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:     repo,
		listings: listings,
		logger:   log,
	}
}

func (uc *inventoryUseCase) AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.InventoryMovement, error) {
	if input.ProductID == "" {
		return nil, apperror.Validation("productId is required")
	}
	if input.QuantityChange == 0 {
		return nil, apperror.Validation("quantity change must not be zero")
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, apperror.Validation("a reason is required for stock adjustments")
	}

	movementType := model.MovementAdjustment
	if input.QuantityChange > 0 {
		movementType = model.MovementRestock
	}

	var createdBy *string
	if input.UserID != "" {
		createdBy = &input.UserID
	}

	movement := &model.InventoryMovement{
		ID:             uuid.New().String(),
		ProductID:      input.ProductID,
		MovementType:   movementType,
		QuantityChange: input.QuantityChange,
		Notes:          reason,
		CreatedBy:      createdBy,
		CreatedAt:      time.Now(),
	}

	err := uc.repo.AdjustStock(ctx, movement)
	switch {
	case errors.Is(err, inventory.ErrProductNotFound):
		return nil, apperror.NotFound("product not found")
	case errors.Is(err, inventory.ErrInsufficientStock):
		return nil, apperror.InsufficientStock(input.ProductID, input.ProductID, movement.QuantityBefore, -input.QuantityChange)
	case err != nil:
		return nil, apperror.Persistence(err, "failed to adjust stock")
	}

	uc.logger.Info("stock adjusted",
		zap.String("product_id", movement.ProductID),
		zap.Int("change", movement.QuantityChange),
		zap.Int("after", movement.QuantityAfter),
	)

	if uc.listings != nil {
		uc.listings.InvalidateListings(ctx)
	}

	return movement, nil
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	items, count, err := uc.repo.ListMovements(ctx, filters)
	if err != nil {
		return nil, 0, apperror.Persistence(err, "failed to list inventory movements")
	}
	return items, count, nil
}

func (uc *inventoryUseCase) ListLowStock(ctx context.Context, filters *dto.LowStockFilters) ([]model.Product, int, error) {
	if filters.Threshold < 0 {
		filters.Threshold = DefaultLowStockThreshold
	}
	items, count, err := uc.repo.ListLowStock(ctx, filters)
	if err != nil {
		return nil, 0, apperror.Persistence(err, "failed to list low stock products")
	}
	return items, count, nil
}
