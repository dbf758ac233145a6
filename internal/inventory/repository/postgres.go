package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/storefront-service/internal/inventory"
	"github.com/fekuna/storefront-service/internal/inventory/dto"
	"github.com/fekuna/storefront-service/internal/model"
	"github.com/jmoiron/sqlx"
)

const insertMovementQuery = `
    INSERT INTO inventory_movements (
        id, product_id, movement_type, quantity_change, quantity_before, quantity_after,
        reference_type, reference_id, notes, created_by, created_at
    )
    VALUES (
        :id, :product_id, :movement_type, :quantity_change, :quantity_before, :quantity_after,
        :reference_type, :reference_id, :notes, :created_by, :created_at
    )
`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// LogMovement inserts m through e, so callers holding a transaction can
// record movements alongside their own stock updates.
func LogMovement(ctx context.Context, e sqlx.ExtContext, m *model.InventoryMovement) error {
	_, err := sqlx.NamedExecContext(ctx, e, insertMovementQuery, m)
	return err
}

func (r *PGRepository) AdjustStock(ctx context.Context, m *model.InventoryMovement) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var stock int
	err = tx.GetContext(ctx, &stock, `SELECT stock FROM products WHERE id = $1 FOR UPDATE`, m.ProductID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return inventory.ErrProductNotFound
		}
		return err
	}

	m.QuantityBefore = stock
	m.QuantityAfter = stock + m.QuantityChange
	if m.QuantityAfter < 0 {
		return inventory.ErrInsufficientStock
	}

	_, err = tx.ExecContext(ctx, `UPDATE products SET stock = $1, updated_at = NOW() WHERE id = $2`, m.QuantityAfter, m.ProductID)
	if err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}

	if err := LogMovement(ctx, tx, m); err != nil {
		return fmt.Errorf("failed to log movement: %w", err)
	}

	return tx.Commit()
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	items := []model.InventoryMovement{}
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = f.MovementType
	}
	if f.ReferenceID != "" {
		conditions = append(conditions, "reference_id = :reference_id")
		args["reference_id"] = f.ReferenceID
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at <= :end_date")
		args["end_date"] = *f.EndDate
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM inventory_movements"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM inventory_movements" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) ListLowStock(ctx context.Context, f *dto.LowStockFilters) ([]model.Product, int, error) {
	products := []model.Product{}
	var count int

	where := " WHERE is_active = TRUE AND stock <= $1"
	if err := r.DB.GetContext(ctx, &count, "SELECT count(*) FROM products"+where, f.Threshold); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM products" + where + " ORDER BY stock ASC, name ASC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	err := r.DB.SelectContext(ctx, &products, query, f.Threshold)
	return products, count, err
}
