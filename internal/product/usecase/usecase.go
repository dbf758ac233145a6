package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/storefront-service/internal/apperror"
	"github.com/fekuna/storefront-service/internal/model"
	"github.com/fekuna/storefront-service/internal/product"
	"github.com/fekuna/storefront-service/internal/product/dto"
	"github.com/fekuna/storefront-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	indexName       = "products"
	listCachePrefix = "products:list:"
)

const indexMapping = `{
	"mappings": {
		"properties": {
			"name": { "type": "text" },
			"description": { "type": "text" },
			"categoryId": { "type": "keyword" },
			"isActive": { "type": "boolean" },
			"isFeatured": { "type": "boolean" },
			"isBestSeller": { "type": "boolean" },
			"isSpecialOffer": { "type": "boolean" },
			"price": { "type": "double" },
			"createdAt": { "type": "date" }
		}
	}
}`

var maxPercentage = decimal.NewFromInt(100)

type productUseCase struct {
	repo     product.Repository
	cache    product.ListCache
	es       product.SearchIndex
	cacheTTL time.Duration
	logger   logger.ZapLogger
}

// NewProductUseCase wires the catalog. cache and es may be nil; listing then
// goes straight to the database.
func NewProductUseCase(repo product.Repository, cache product.ListCache, es product.SearchIndex, cacheTTL time.Duration, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:     repo,
		cache:    cache,
		es:       es,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.Validation("product name is required")
	}
	if input.Price.IsNegative() {
		return nil, apperror.Validation("price must not be negative")
	}
	if input.Stock < 0 {
		return nil, apperror.Validation("stock must not be negative")
	}
	if err := validatePercentage(input.DiscountPercentage); err != nil {
		return nil, err
	}

	now := time.Now()
	p := &model.Product{
		BaseModel:          model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:               name,
		Description:        input.Description,
		Price:              input.Price.Round(2),
		Images:             model.StringList(input.Images),
		Stock:              input.Stock,
		IsActive:           true,
		IsFeatured:         input.IsFeatured,
		IsBestSeller:       input.IsBestSeller,
		IsSpecialOffer:     input.IsSpecialOffer,
		DiscountPercentage: input.DiscountPercentage,
	}
	if input.CategoryID != "" {
		categoryID := input.CategoryID
		p.CategoryID = &categoryID
	}
	if p.Images == nil {
		p.Images = model.StringList{}
	}
	p.RecalculateDiscountedPrice()

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, apperror.Persistence(err, "failed to create product")
	}

	uc.InvalidateListings(ctx)
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Persistence(err, "failed to load product")
	}
	if p == nil {
		return nil, apperror.NotFound("product not found")
	}
	return p, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	cacheKey, err := generateCacheKey(filters)
	if err == nil && uc.cache != nil {
		if val, ok, err := uc.cache.Get(ctx, cacheKey); err == nil && ok {
			var result cachedList
			if err := json.Unmarshal(val, &result); err == nil {
				return result.Products, result.Count, nil
			}
		}
	}

	var (
		products []model.Product
		count    int
		found    bool
	)
	if filters.SearchQuery != "" && uc.es != nil {
		products, count, err = uc.searchElastic(ctx, filters)
		if err == nil {
			found = true
		} else {
			uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
		}
	}

	if !found {
		products, count, err = uc.repo.FindAll(ctx, filters)
		if err != nil {
			return nil, 0, apperror.Persistence(err, "failed to list products")
		}
	}

	if cacheKey != "" && uc.cache != nil {
		if data, err := json.Marshal(cachedList{Products: products, Count: count}); err == nil {
			if err := uc.cache.Set(ctx, cacheKey, data, uc.cacheTTL); err != nil {
				uc.logger.Warn("failed to cache product listing", zap.Error(err))
			}
		}
	}

	return products, count, nil
}

type cachedList struct {
	Products []model.Product
	Count    int
}

// searchElastic resolves matching ids through the index and loads the rows
// from the database so stock and price are never stale.
func (uc *productUseCase) searchElastic(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	filter := []map[string]interface{}{}
	if f.IsActive != nil {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"isActive": *f.IsActive}})
	}
	if f.CategoryID != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"categoryId": f.CategoryID}})
	}
	for field, v := range map[string]*bool{"isFeatured": f.IsFeatured, "isBestSeller": f.IsBestSeller, "isSpecialOffer": f.IsSpecialOffer} {
		if v != nil {
			filter = append(filter, map[string]interface{}{"term": map[string]interface{}{field: *v}})
		}
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		rng := map[string]interface{}{}
		if f.MinPrice != nil {
			rng["gte"] = f.MinPrice.InexactFloat64()
		}
		if f.MaxPrice != nil {
			rng["lte"] = f.MaxPrice.InexactFloat64()
		}
		filter = append(filter, map[string]interface{}{"range": map[string]interface{}{"price": rng}})
	}

	q := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []map[string]interface{}{
					{
						"query_string": map[string]interface{}{
							"query":  fmt.Sprintf("*%s*", f.SearchQuery),
							"fields": []string{"name^3", "description"},
						},
					},
				},
				"filter": filter,
			},
		},
		"_source": false,
	}
	if f.PageSize > 0 {
		q["from"] = (f.Page - 1) * f.PageSize
		q["size"] = f.PageSize
	}

	res, err := uc.es.Search(ctx, indexName, q)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]string, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	rows, err := uc.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	byID := make(map[string]model.Product, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}
	products := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			products = append(products, p)
		}
	}
	return products, res.Hits.Total.Value, nil
}

func (uc *productUseCase) syncToElastic(ctx context.Context, p *model.Product) {
	if uc.es == nil {
		return
	}
	_ = uc.es.CreateIndex(ctx, indexName, indexMapping)

	if err := uc.es.Index(ctx, indexName, p.ID, p); err != nil {
		uc.logger.Error("failed to index product", zap.String("product_id", p.ID), zap.Error(err))
	}
}

func generateCacheKey(filters *dto.ProductFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%x", listCachePrefix, md5.Sum(data)), nil
}

func (uc *productUseCase) InvalidateListings(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.DeleteByPattern(ctx, listCachePrefix+"*"); err != nil {
		uc.logger.Warn("failed to invalidate product listings", zap.Error(err))
	}
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	p, err := uc.GetProduct(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.Validation("product name is required")
		}
		p.Name = name
	}
	if input.Description != nil {
		p.Description = *input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, apperror.Validation("price must not be negative")
		}
		p.Price = input.Price.Round(2)
	}
	if input.DiscountPercentage != nil {
		if err := validatePercentage(*input.DiscountPercentage); err != nil {
			return nil, err
		}
		p.DiscountPercentage = *input.DiscountPercentage
	}
	if input.CategoryID != nil {
		if *input.CategoryID == "" {
			p.CategoryID = nil
		} else {
			categoryID := *input.CategoryID
			p.CategoryID = &categoryID
		}
	}
	if input.Images != nil {
		p.Images = model.StringList(input.Images)
	}
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}
	if input.IsFeatured != nil {
		p.IsFeatured = *input.IsFeatured
	}
	if input.IsBestSeller != nil {
		p.IsBestSeller = *input.IsBestSeller
	}
	if input.IsSpecialOffer != nil {
		p.IsSpecialOffer = *input.IsSpecialOffer
	}

	p.RecalculateDiscountedPrice()
	p.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, apperror.Persistence(err, "failed to update product")
	}

	uc.InvalidateListings(ctx)
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id string) error {
	if _, err := uc.GetProduct(ctx, id); err != nil {
		return err
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return apperror.Persistence(err, "failed to delete product")
	}

	uc.InvalidateListings(ctx)
	if uc.es != nil {
		go func() {
			if err := uc.es.Delete(context.Background(), indexName, id); err != nil {
				uc.logger.Error("failed to delete product from ES", zap.Error(err))
			}
		}()
	}

	return nil
}

func validatePercentage(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(maxPercentage) {
		return apperror.Validation("discount percentage must be between 0 and 100")
	}
	return nil
}
