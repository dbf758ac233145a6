package product

import (
	"context"
	"time"

	"github.com/fekuna/storefront-service/internal/model"
	"github.com/fekuna/storefront-service/internal/product/dto"
	"github.com/fekuna/storefront-service/pkg/search"
)

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	// InvalidateListings drops cached listings after stock or catalog changes.
	InvalidateListings(ctx context.Context)
}

// ListCache is the subset of the Redis client the catalog uses.
type ListCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// SearchIndex is the subset of the Elasticsearch client the catalog uses.
type SearchIndex interface {
	CreateIndex(ctx context.Context, index, mapping string) error
	Index(ctx context.Context, index, id string, doc interface{}) error
	Delete(ctx context.Context, index, id string) error
	Search(ctx context.Context, index string, query map[string]interface{}) (*search.SearchResponse, error)
}
