package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/fekuna/storefront-service/internal/apperror"
	"github.com/fekuna/storefront-service/internal/inventory"
	"github.com/fekuna/storefront-service/internal/inventory/dto"
	"github.com/fekuna/storefront-service/internal/model"
	"github.com/fekuna/storefront-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	stock     map[string]int
	movements []model.InventoryMovement
}

func (r *memRepo) AdjustStock(_ context.Context, m *model.InventoryMovement) error {
	stock, ok := r.stock[m.ProductID]
	if !ok {
		return inventory.ErrProductNotFound
	}
	m.QuantityBefore = stock
	m.QuantityAfter = stock + m.QuantityChange
	if m.QuantityAfter < 0 {
		return inventory.ErrInsufficientStock
	}
	r.stock[m.ProductID] = m.QuantityAfter
	r.movements = append(r.movements, *m)
	return nil
}

func (r *memRepo) ListMovements(_ context.Context, _ *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	return r.movements, len(r.movements), nil
}

func (r *memRepo) ListLowStock(_ context.Context, f *dto.LowStockFilters) ([]model.Product, int, error) {
	out := []model.Product{}
	for id, s := range r.stock {
		if s <= f.Threshold {
			out = append(out, model.Product{BaseModel: model.BaseModel{ID: id}, Stock: s})
		}
	}
	return out, len(out), nil
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) InvalidateListings(context.Context) { c.calls++ }

func TestAdjustStock_RecordsMovement(t *testing.T) {
	repo := &memRepo{stock: map[string]int{"p1": 3}}
	inv := &countingInvalidator{}
	uc := NewInventoryUseCase(repo, inv, logger.NewNop())

	m, err := uc.AdjustStock(context.Background(), &dto.AdjustStockInput{
		ProductID: "p1", QuantityChange: 7, Reason: "delivery", UserID: "admin-1",
	})
	require.NoError(t, err)

	assert.Equal(t, model.MovementRestock, m.MovementType)
	assert.Equal(t, 3, m.QuantityBefore)
	assert.Equal(t, 10, m.QuantityAfter)
	assert.Equal(t, "admin-1", *m.CreatedBy)
	assert.Equal(t, 10, repo.stock["p1"])
	assert.Equal(t, 1, inv.calls)

	m, err = uc.AdjustStock(context.Background(), &dto.AdjustStockInput{
		ProductID: "p1", QuantityChange: -2, Reason: "breakage",
	})
	require.NoError(t, err)
	assert.Equal(t, model.MovementAdjustment, m.MovementType)
	assert.Nil(t, m.CreatedBy)
	assert.Equal(t, 8, repo.stock["p1"])
}

func TestAdjustStock_Errors(t *testing.T) {
	repo := &memRepo{stock: map[string]int{"p1": 2}}
	uc := NewInventoryUseCase(repo, nil, logger.NewNop())
	ctx := context.Background()

	_, err := uc.AdjustStock(ctx, &dto.AdjustStockInput{ProductID: "p1", QuantityChange: 0, Reason: "x"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = uc.AdjustStock(ctx, &dto.AdjustStockInput{ProductID: "p1", QuantityChange: 1})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = uc.AdjustStock(ctx, &dto.AdjustStockInput{ProductID: "nope", QuantityChange: 1, Reason: "x"})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = uc.AdjustStock(ctx, &dto.AdjustStockInput{ProductID: "p1", QuantityChange: -5, Reason: "x"})
	require.True(t, apperror.Is(err, apperror.KindInsufficientStock))
	var stockErr *apperror.StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, 2, repo.stock["p1"])
	assert.Empty(t, repo.movements)
}

func TestListLowStock_DefaultsThreshold(t *testing.T) {
	repo := &memRepo{stock: map[string]int{"p1": 2, "p2": 50}}
	uc := NewInventoryUseCase(repo, nil, logger.NewNop())

	items, count, err := uc.ListLowStock(context.Background(), &dto.LowStockFilters{Threshold: -1})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, "p1", items[0].ID)
}
