package discount

import (
	"context"
	"errors"

	"github.com/fekuna/storefront-service/internal/discount/dto"
	"github.com/fekuna/storefront-service/internal/model"
)

var ErrDuplicateCode = errors.New("discount: code already exists")

type Repository interface {
	Create(ctx context.Context, code *model.DiscountCode) error
	FindByID(ctx context.Context, id string) (*model.DiscountCode, error)
	FindByCode(ctx context.Context, code string) (*model.DiscountCode, error)
	FindAll(ctx context.Context, filters *dto.DiscountFilters) ([]model.DiscountCode, int, error)
	Update(ctx context.Context, code *model.DiscountCode) error
	Delete(ctx context.Context, id string) error

	// HasUsed reports whether userID already consumed the code with id
	// discountID.
	HasUsed(ctx context.Context, userID, discountID string) (bool, error)
}
