package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	inventoryrepo "github.com/fekuna/storefront-service/internal/inventory/repository"
	"github.com/fekuna/storefront-service/internal/model"
	"github.com/fekuna/storefront-service/internal/order"
	"github.com/fekuna/storefront-service/internal/order/dto"
	"github.com/fekuna/storefront-service/pkg/database/postgres"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	orderNumberConstraint   = "orders_order_number_key"
	discountUsageConstraint = "discount_usages_pkey"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, o *model.Order, usage *model.DiscountUsage) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO orders (
            id, order_number, customer_name, customer_email, customer_phone, customer_address,
            subtotal, discount_code, discount_amount, delivery_fee, total_amount,
            notes, status, user_id, created_at, updated_at
        )
        VALUES (
            :id, :order_number, :customer_name, :customer_email, :customer_phone, :customer_address,
            :subtotal, :discount_code, :discount_amount, :delivery_fee, :total_amount,
            :notes, :status, :user_id, :created_at, :updated_at
        )
    `
	if _, err := tx.NamedExecContext(ctx, query, o); err != nil {
		if name, ok := postgres.UniqueViolation(err); ok && name == orderNumberConstraint {
			return order.ErrDuplicateNumber
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
        INSERT INTO order_items (id, order_id, product_id, product_name, quantity, unit_price)
        VALUES (:id, :order_id, :product_id, :product_name, :quantity, :unit_price)
    `
	for i := range o.Items {
		if _, err := tx.NamedExecContext(ctx, itemQuery, &o.Items[i]); err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	if err := debitStock(ctx, tx, o, model.MovementSale, o.UserID, o.CreatedAt); err != nil {
		return err
	}

	if usage != nil {
		_, err := tx.NamedExecContext(ctx, `
            INSERT INTO discount_usages (user_id, discount_id, code, order_id, used_at)
            VALUES (:user_id, :discount_id, :code, :order_id, :used_at)
        `, usage)
		if err != nil {
			if name, ok := postgres.UniqueViolation(err); ok && name == discountUsageConstraint {
				return order.ErrDiscountAlreadyUsed
			}
			return fmt.Errorf("failed to record discount usage: %w", err)
		}
	}

	return tx.Commit()
}

// debitStock decrements every line's product only when enough stock is left.
// A line that matches no row aborts with *order.StockShortage.
func debitStock(ctx context.Context, tx *sqlx.Tx, o *model.Order, movementType string, actorID *string, now time.Time) error {
	for _, item := range o.Items {
		var after int
		err := tx.QueryRowxContext(ctx, `
            UPDATE products SET stock = stock - $1, updated_at = NOW()
            WHERE id = $2 AND stock >= $1
            RETURNING stock
        `, item.Quantity, item.ProductID).Scan(&after)
		if errors.Is(err, sql.ErrNoRows) {
			shortage := &order.StockShortage{ProductID: item.ProductID, Requested: item.Quantity}
			if err := tx.GetContext(ctx, &shortage.Available, `SELECT stock FROM products WHERE id = $1`, item.ProductID); err != nil && !errors.Is(err, sql.ErrNoRows) {
				return err
			}
			return shortage
		}
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}

		if err := logMovement(ctx, tx, o, item, movementType, -item.Quantity, after, actorID, now); err != nil {
			return err
		}
	}
	return nil
}

// restoreStock credits every line back. Products deleted since the order was
// placed are skipped.
func restoreStock(ctx context.Context, tx *sqlx.Tx, o *model.Order, movementType string, actorID *string, now time.Time) error {
	for _, item := range o.Items {
		var after int
		err := tx.QueryRowxContext(ctx, `
            UPDATE products SET stock = stock + $1, updated_at = NOW()
            WHERE id = $2
            RETURNING stock
        `, item.Quantity, item.ProductID).Scan(&after)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to restore stock: %w", err)
		}

		if err := logMovement(ctx, tx, o, item, movementType, item.Quantity, after, actorID, now); err != nil {
			return err
		}
	}
	return nil
}

func logMovement(ctx context.Context, tx *sqlx.Tx, o *model.Order, item model.OrderItem, movementType string, change, after int, actorID *string, now time.Time) error {
	refType := model.ReferenceOrder
	refID := o.ID
	m := &model.InventoryMovement{
		ID:             uuid.New().String(),
		ProductID:      item.ProductID,
		MovementType:   movementType,
		QuantityChange: change,
		QuantityBefore: after - change,
		QuantityAfter:  after,
		ReferenceType:  &refType,
		ReferenceID:    &refID,
		Notes:          o.OrderNumber,
		CreatedBy:      actorID,
		CreatedAt:      now,
	}
	if err := inventoryrepo.LogMovement(ctx, tx, m); err != nil {
		return fmt.Errorf("failed to log movement: %w", err)
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	return r.findOne(ctx, `SELECT * FROM orders WHERE id = $1 LIMIT 1`, id)
}

func (r *PGRepository) FindByNumber(ctx context.Context, number string) (*model.Order, error) {
	return r.findOne(ctx, `SELECT * FROM orders WHERE order_number = $1 LIMIT 1`, number)
}

func (r *PGRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.Order, error) {
	var o model.Order
	if err := r.DB.GetContext(ctx, &o, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.DB.SelectContext(ctx, &o.Items, `SELECT * FROM order_items WHERE order_id = $1 ORDER BY product_name`, o.ID); err != nil {
		return nil, err
	}
	return &o, nil
}

// lockOrder loads the order and its items with the order row locked for the
// rest of tx.
func lockOrder(ctx context.Context, tx *sqlx.Tx, id string) (*model.Order, error) {
	var o model.Order
	if err := tx.GetContext(ctx, &o, `SELECT * FROM orders WHERE id = $1 FOR UPDATE`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := tx.SelectContext(ctx, &o.Items, `SELECT * FROM order_items WHERE order_id = $1 ORDER BY product_name`, o.ID); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.OrderFilters) ([]model.Order, int, error) {
	orders := []model.Order{}
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}
	if f.UserID != "" {
		conditions = append(conditions, "user_id = :user_id")
		args["user_id"] = f.UserID
	}
	if f.Search != "" {
		conditions = append(conditions, "(order_number ILIKE :search OR customer_name ILIKE :search OR customer_email ILIKE :search)")
		args["search"] = "%" + f.Search + "%"
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

	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM orders"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM orders" + whereClause + " ORDER BY created_at DESC, id ASC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &orders, args); err != nil {
		return nil, 0, err
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, count, nil
}

func (r *PGRepository) attachItems(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
		orders[i].Items = []model.OrderItem{}
	}

	query, args, err := sqlx.In(`SELECT * FROM order_items WHERE order_id IN (?) ORDER BY product_name`, ids)
	if err != nil {
		return err
	}
	var items []model.OrderItem
	if err := r.DB.SelectContext(ctx, &items, r.DB.Rebind(query), args...); err != nil {
		return err
	}
	for _, item := range items {
		i := index[item.OrderID]
		orders[i].Items = append(orders[i].Items, item)
	}
	return nil
}

func (r *PGRepository) Update(ctx context.Context, id string, patch *order.Patch, actorID string, now time.Time) (*model.Order, model.OrderStatus, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, "", err
	}
	defer tx.Rollback()

	o, err := lockOrder(ctx, tx, id)
	if err != nil || o == nil {
		return nil, "", err
	}

	previous := o.Status
	if patch.Status != nil {
		status := *patch.Status
		actor := optional(actorID)
		switch {
		case previous != model.OrderStatusCancelled && status == model.OrderStatusCancelled:
			err = restoreStock(ctx, tx, o, model.MovementCancellation, actor, now)
		case previous == model.OrderStatusCancelled && status != model.OrderStatusCancelled:
			err = debitStock(ctx, tx, o, model.MovementReinstate, actor, now)
		}
		if err != nil {
			return nil, "", err
		}
		o.Status = status
	}
	patch.ApplyDetails(o)
	o.UpdatedAt = now

	query := `
        UPDATE orders
        SET status = :status,
            customer_name = :customer_name,
            customer_email = :customer_email,
            customer_phone = :customer_phone,
            customer_address = :customer_address,
            notes = :notes,
            updated_at = :updated_at
        WHERE id = :id
    `
	res, err := tx.NamedExecContext(ctx, query, o)
	if err != nil {
		return nil, "", fmt.Errorf("failed to update order: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, "", err
	} else if n == 0 {
		return nil, "", nil
	}

	if err := tx.Commit(); err != nil {
		return nil, "", err
	}
	return o, previous, nil
}

func (r *PGRepository) Delete(ctx context.Context, id, actorID string, now time.Time) (*model.Order, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	o, err := lockOrder(ctx, tx, id)
	if err != nil || o == nil {
		return nil, err
	}

	if o.Status != model.OrderStatusCancelled {
		if err := restoreStock(ctx, tx, o, model.MovementDeletion, optional(actorID), now); err != nil {
			return nil, err
		}
	}

	// order_items go with the order (ON DELETE CASCADE).
	if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PGRepository) StatusSummary(ctx context.Context) ([]model.StatusSummary, error) {
	summary := []model.StatusSummary{}
	err := r.DB.SelectContext(ctx, &summary, `
        SELECT status, count(*) AS count, COALESCE(SUM(total_amount), 0) AS revenue
        FROM orders
        GROUP BY status
        ORDER BY status
    `)
	return summary, err
}

func (r *PGRepository) WindowSummary(ctx context.Context, since time.Time) (*model.WindowSummary, error) {
	w := &model.WindowSummary{Since: since}
	err := r.DB.GetContext(ctx, w, `
        SELECT count(*) AS orders,
               COALESCE(SUM(total_amount) FILTER (WHERE status <> 'cancelled'), 0) AS revenue
        FROM orders
        WHERE created_at >= $1
    `, since)
	return w, err
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
