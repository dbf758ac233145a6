package category

import (
	"context"

	"github.com/fekuna/storefront-service/internal/category/dto"
	"github.com/fekuna/storefront-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, category *model.Category) error
	FindByID(ctx context.Context, id string) (*model.Category, error)
	FindByName(ctx context.Context, name string) (*model.Category, error)
	FindAll(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error)
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id string) error

	// Descendants returns every category whose ancestor chain contains id.
	FindDescendants(ctx context.Context, id string) ([]model.Category, error)
	UpdateAncestors(ctx context.Context, id string, ancestors model.StringList) error
}
