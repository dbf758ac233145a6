package discount

import (
	"context"

	"github.com/fekuna/storefront-service/internal/discount/dto"
	"github.com/fekuna/storefront-service/internal/model"
)

type UseCase interface {
	CreateDiscount(ctx context.Context, input *dto.CreateDiscountInput) (*model.DiscountCode, error)
	GetDiscount(ctx context.Context, id string) (*model.DiscountCode, error)
	ListDiscounts(ctx context.Context, filters *dto.DiscountFilters) ([]model.DiscountCode, int, error)
	UpdateDiscount(ctx context.Context, input *dto.UpdateDiscountInput) (*model.DiscountCode, error)
	DeleteDiscount(ctx context.Context, id string) error

	// Resolve looks code up and checks it can be applied now. A non-empty
	// userID also checks that user has not consumed it yet.
	Resolve(ctx context.Context, code, userID string) (*model.DiscountCode, error)
}
