package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fekuna/storefront-service/internal/inventory"
	"github.com/fekuna/storefront-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mugID = "0f8e2d1c-3b4a-4c5d-8e9f-a0b1c2d3e4f5"

var (
	lockStockSQL = regexp.QuoteMeta(`SELECT stock FROM products WHERE id = $1 FOR UPDATE`)
	setStockSQL  = regexp.QuoteMeta(`UPDATE products SET stock = $1, updated_at = NOW() WHERE id = $2`)
	movementSQL  = regexp.QuoteMeta(`INSERT INTO inventory_movements (`)
)

func newMockRepo(t *testing.T) (*PGRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPGRepository(sqlx.NewDb(db, "pgx")), mock
}

func restock(change int) *model.InventoryMovement {
	return &model.InventoryMovement{
		ID:             "5a6b7c8d-9e0f-4a1b-8c2d-3e4f5a6b7c8d",
		ProductID:      mugID,
		MovementType:   model.MovementRestock,
		QuantityChange: change,
		Notes:          "supplier delivery",
		CreatedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestAdjustStock_LocksUpdatesAndLogs(t *testing.T) {
	repo, mock := newMockRepo(t)
	m := restock(5)

	mock.ExpectBegin()
	mock.ExpectQuery(lockStockSQL).WithArgs(mugID).WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(2))
	mock.ExpectExec(setStockSQL).WithArgs(7, mugID).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(movementSQL).
		WithArgs(m.ID, mugID, model.MovementRestock, 5, 2, 7,
			sqlmock.AnyArg(), sqlmock.AnyArg(), "supplier delivery", sqlmock.AnyArg(), m.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.AdjustStock(context.Background(), m))
	assert.Equal(t, 2, m.QuantityBefore)
	assert.Equal(t, 7, m.QuantityAfter)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustStock_NeverBelowZero(t *testing.T) {
	repo, mock := newMockRepo(t)
	m := restock(-3)
	m.MovementType = model.MovementAdjustment

	mock.ExpectBegin()
	mock.ExpectQuery(lockStockSQL).WithArgs(mugID).WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(2))
	mock.ExpectRollback()

	err := repo.AdjustStock(context.Background(), m)
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
	assert.Equal(t, 2, m.QuantityBefore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustStock_UnknownProduct(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockStockSQL).WithArgs(mugID).WillReturnRows(sqlmock.NewRows([]string{"stock"}))
	mock.ExpectRollback()

	err := repo.AdjustStock(context.Background(), restock(1))
	assert.ErrorIs(t, err, inventory.ErrProductNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
