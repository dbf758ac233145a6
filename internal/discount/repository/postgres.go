package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/storefront-service/internal/discount"
	"github.com/fekuna/storefront-service/internal/discount/dto"
	"github.com/fekuna/storefront-service/internal/model"
	"github.com/fekuna/storefront-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

const codeConstraint = "discount_codes_code_key"

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, d *model.DiscountCode) error {
	query := `
        INSERT INTO discount_codes (id, code, percentage, expires_at, is_active, created_at, updated_at)
        VALUES (:id, :code, :percentage, :expires_at, :is_active, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, d)
	return mapDuplicate(err)
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.DiscountCode, error) {
	return r.findOne(ctx, `SELECT * FROM discount_codes WHERE id = $1 LIMIT 1`, id)
}

func (r *PGRepository) FindByCode(ctx context.Context, code string) (*model.DiscountCode, error) {
	return r.findOne(ctx, `SELECT * FROM discount_codes WHERE code = $1 LIMIT 1`, code)
}

func (r *PGRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.DiscountCode, error) {
	var d model.DiscountCode
	err := r.DB.GetContext(ctx, &d, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.DiscountFilters) ([]model.DiscountCode, int, error) {
	codes := []model.DiscountCode{}
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	if f.Search != "" {
		conditions = append(conditions, "code ILIKE :search")
		args["search"] = "%" + f.Search + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM discount_codes"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM discount_codes" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &codes, args)
	return codes, count, err
}

func (r *PGRepository) Update(ctx context.Context, d *model.DiscountCode) error {
	query := `
        UPDATE discount_codes
        SET code = :code,
            percentage = :percentage,
            expires_at = :expires_at,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, d)
	return mapDuplicate(err)
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM discount_codes WHERE id = $1", id)
	return err
}

func (r *PGRepository) HasUsed(ctx context.Context, userID, discountID string) (bool, error) {
	var used bool
	err := r.DB.GetContext(ctx, &used,
		`SELECT EXISTS (SELECT 1 FROM discount_usages WHERE user_id = $1 AND discount_id = $2)`, userID, discountID)
	return used, err
}

func mapDuplicate(err error) error {
	if name, ok := postgres.UniqueViolation(err); ok && name == codeConstraint {
		return discount.ErrDuplicateCode
	}
	return err
}
