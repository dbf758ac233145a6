package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/storefront-service/internal/model"
	"github.com/fekuna/storefront-service/internal/product/dto"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
        INSERT INTO products (
            id, category_id, name, description, price, images, stock,
            is_active, is_featured, is_best_seller, is_special_offer,
            discount_percentage, discounted_price, created_at, updated_at
        )
        VALUES (
            :id, :category_id, :name, :description, :price, :images, :stock,
            :is_active, :is_featured, :is_best_seller, :is_special_offer,
            :discount_percentage, :discounted_price, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	if uuid.Validate(id) != nil {
		return nil, nil
	}
	var product model.Product
	query := `SELECT * FROM products WHERE id = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *PGRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	products := []model.Product{}
	if len(ids) == 0 {
		return products, nil
	}
	query, args, err := sqlx.In(`SELECT * FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	err = r.DB.SelectContext(ctx, &products, r.DB.Rebind(query), args...)
	return products, err
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	products := []model.Product{}
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.CategoryID != "" {
		conditions = append(conditions, "category_id = :category_id")
		args["category_id"] = f.CategoryID
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	if f.IsFeatured != nil {
		conditions = append(conditions, "is_featured = :is_featured")
		args["is_featured"] = *f.IsFeatured
	}
	if f.IsBestSeller != nil {
		conditions = append(conditions, "is_best_seller = :is_best_seller")
		args["is_best_seller"] = *f.IsBestSeller
	}
	if f.IsSpecialOffer != nil {
		conditions = append(conditions, "is_special_offer = :is_special_offer")
		args["is_special_offer"] = *f.IsSpecialOffer
	}
	if f.MinPrice != nil {
		conditions = append(conditions, "price >= :min_price")
		args["min_price"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		conditions = append(conditions, "price <= :max_price")
		args["max_price"] = *f.MaxPrice
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "(name ILIKE :search OR description ILIKE :search)")
		args["search"] = "%" + f.SearchQuery + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM products"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT * FROM products%s ORDER BY %s", whereClause, orderBy(f.SortBy, f.SortOrder))
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &products, args); err != nil {
		return nil, 0, err
	}

	return products, count, nil
}

// orderBy whitelists sortable columns; unknown fields fall back to newest first.
func orderBy(sortBy, sortOrder string) string {
	column := "created_at"
	switch sortBy {
	case "name", "price", "stock", "created_at":
		column = sortBy
	case "createdAt":
		column = "created_at"
	}
	if strings.ToLower(sortOrder) == "asc" {
		return column + " ASC, id ASC"
	}
	return column + " DESC, id ASC"
}

func (r *PGRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
        UPDATE products
        SET category_id = :category_id,
            name = :name,
            description = :description,
            price = :price,
            images = :images,
            is_active = :is_active,
            is_featured = :is_featured,
            is_best_seller = :is_best_seller,
            is_special_offer = :is_special_offer,
            discount_percentage = :discount_percentage,
            discounted_price = :discounted_price,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return err
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	return err
}
