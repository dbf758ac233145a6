package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/storefront-service/internal/category/dto"
	"github.com/fekuna/storefront-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, c *model.Category) error {
	query := `
        INSERT INTO categories (id, parent_id, ancestors, name, description, image_url, sort_order, is_active, created_at, updated_at)
        VALUES (:id, :parent_id, :ancestors, :name, :description, :image_url, :sort_order, :is_active, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	return r.findOne(ctx, `SELECT * FROM categories WHERE id = $1 LIMIT 1`, id)
}

func (r *PGRepository) FindByName(ctx context.Context, name string) (*model.Category, error) {
	return r.findOne(ctx, `SELECT * FROM categories WHERE lower(name) = lower($1) LIMIT 1`, name)
}

func (r *PGRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.Category, error) {
	var category model.Category
	err := r.DB.GetContext(ctx, &category, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, int, error) {
	categories := []model.Category{}
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.ParentID != nil {
		if *f.ParentID == "" {
			conditions = append(conditions, "parent_id IS NULL")
		} else {
			conditions = append(conditions, "parent_id = :parent_id")
			args["parent_id"] = *f.ParentID
		}
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	if f.Search != "" {
		conditions = append(conditions, "name ILIKE :search")
		args["search"] = "%" + f.Search + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM categories"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM categories" + whereClause + " ORDER BY sort_order ASC, name ASC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &categories, args); err != nil {
		return nil, 0, err
	}

	return categories, count, nil
}

func (r *PGRepository) Update(ctx context.Context, c *model.Category) error {
	query := `
        UPDATE categories
        SET parent_id = :parent_id,
            ancestors = :ancestors,
            name = :name,
            description = :description,
            image_url = :image_url,
            sort_order = :sort_order,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return err
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM categories WHERE id = $1", id)
	return err
}

func (r *PGRepository) FindDescendants(ctx context.Context, id string) ([]model.Category, error) {
	categories := []model.Category{}
	query := `SELECT * FROM categories WHERE ancestors @> jsonb_build_array($1::text) ORDER BY jsonb_array_length(ancestors)`
	err := r.DB.SelectContext(ctx, &categories, query, id)
	return categories, err
}

func (r *PGRepository) UpdateAncestors(ctx context.Context, id string, ancestors model.StringList) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE categories SET ancestors = $1, updated_at = NOW() WHERE id = $2`, ancestors, id)
	return err
}
