package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rodgers-crypto/newbutchermanagement/internal/database"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/models"
)

var itemRowColumns = []string{"id", "name", "unit", "price_per_unit", "stock_quantity", "created_at", "updated_at"}

func newMockDB(t *testing.T) (*Catalog, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewCatalog(db), mock
}

func beefRow() *sqlmock.Rows {
	now := time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(itemRowColumns).AddRow(int64(1), "Beef", "kg", "12.50", "50.000", now, now)
}

func TestGetItem(t *testing.T) {
	catalog, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT id, name, unit, price_per_unit, stock_quantity, created_at, updated_at FROM items WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(beefRow())

	item, err := catalog.GetItem(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Beef", item.Name)
	assert.True(t, item.PricePerUnit.Equal(decimal.RequireFromString("12.5")))
	assert.True(t, item.StockQuantity.Equal(decimal.NewFromInt(50)))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetItem_NotFound(t *testing.T) {
	catalog, mock := newMockDB(t)

	mock.ExpectQuery(`FROM items WHERE id = \$1`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(itemRowColumns))

	_, err := catalog.GetItem(context.Background(), 99)
	assert.ErrorIs(t, err, database.ErrItemNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateItem(t *testing.T) {
	catalog, mock := newMockDB(t)

	mock.ExpectQuery(`INSERT INTO items \(name, unit, price_per_unit, stock_quantity, created_at, updated_at\)`).
		WithArgs("Beef", "kg", "12.5", "50").
		WillReturnRows(beefRow())

	item, err := catalog.CreateItem(context.Background(), models.ItemInput{
		Name:          "  Beef ",
		PricePerUnit:  decimal.RequireFromString("12.50"),
		StockQuantity: decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), item.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateItem_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   models.ItemInput
	}{
		{"blank name", models.ItemInput{Name: "   ", PricePerUnit: decimal.NewFromInt(1)}},
		{"negative price", models.ItemInput{Name: "Beef", PricePerUnit: decimal.NewFromInt(-1)}},
		{"negative stock", models.ItemInput{Name: "Beef", StockQuantity: decimal.NewFromInt(-2)}},
		{"price exponent too small", models.ItemInput{Name: "Beef", PricePerUnit: decimal.New(1, -2000000000)}},
		{"stock exponent too large", models.ItemInput{Name: "Beef", StockQuantity: decimal.New(1, 2000000000)}},
		{"price beyond column", models.ItemInput{Name: "Beef", PricePerUnit: decimal.New(1, 10)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog, mock := newMockDB(t)

			_, err := catalog.CreateItem(context.Background(), tt.in)
			assert.ErrorIs(t, err, database.ErrInvalidItem)

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUpdateItem_NotFound(t *testing.T) {
	catalog, mock := newMockDB(t)

	mock.ExpectQuery(`UPDATE items SET name = \$1, unit = \$2, price_per_unit = \$3, stock_quantity = \$4, updated_at = NOW\(\) WHERE id = \$5`).
		WithArgs("Beef", "kg", "13", "40", int64(7)).
		WillReturnRows(sqlmock.NewRows(itemRowColumns))

	_, err := catalog.UpdateItem(context.Background(), 7, models.ItemInput{
		Name:          "Beef",
		Unit:          "kg",
		PricePerUnit:  decimal.NewFromInt(13),
		StockQuantity: decimal.NewFromInt(40),
	})
	assert.ErrorIs(t, err, database.ErrItemNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteItem(t *testing.T) {
	tests := []struct {
		name    string
		expect  func(sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "deleted",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(`DELETE FROM items WHERE id = \$1`).WithArgs(int64(3)).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "missing",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(`DELETE FROM items WHERE id = \$1`).WithArgs(int64(3)).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: database.ErrItemNotFound,
		},
		{
			name: "referenced by a sale",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(`DELETE FROM items WHERE id = \$1`).WithArgs(int64(3)).
					WillReturnError(&pq.Error{Code: "23503"})
			},
			wantErr: database.ErrItemInUse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog, mock := newMockDB(t)
			tt.expect(mock)

			err := catalog.DeleteItem(context.Background(), 3)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

const (
	decrementQuery = `UPDATE items SET stock_quantity = stock_quantity - \$1, updated_at = NOW\(\) WHERE id = \$2 AND stock_quantity >= \$1`
	stockQuery     = `SELECT stock_quantity FROM items WHERE id = \$1`
)

func TestDecrementStock(t *testing.T) {
	catalog, mock := newMockDB(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(decrementQuery).
		WithArgs("5", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := catalog.db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, catalog.DecrementStock(ctx, tx, 1, decimal.NewFromInt(5)))
	require.NoError(t, tx.Commit())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementStock_Refused(t *testing.T) {
	catalog, mock := newMockDB(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(decrementQuery).
		WithArgs("50", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(stockQuery).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"stock_quantity"}).AddRow("45.000"))
	mock.ExpectRollback()

	tx, err := catalog.db.BeginTx(ctx, nil)
	require.NoError(t, err)

	err = catalog.DecrementStock(ctx, tx, 1, decimal.NewFromInt(50))
	require.NoError(t, tx.Rollback())

	var stockErr *database.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.ErrorIs(t, err, database.ErrInsufficientStock)
	assert.Equal(t, int64(1), stockErr.ItemID)
	assert.True(t, stockErr.Requested.Equal(decimal.NewFromInt(50)))
	assert.True(t, stockErr.Available.Equal(decimal.NewFromInt(45)))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementStock_ItemGone(t *testing.T) {
	catalog, mock := newMockDB(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(decrementQuery).
		WithArgs("1", int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(stockQuery).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"stock_quantity"}))
	mock.ExpectRollback()

	tx, err := catalog.db.BeginTx(ctx, nil)
	require.NoError(t, err)

	err = catalog.DecrementStock(ctx, tx, 9, decimal.NewFromInt(1))
	require.NoError(t, tx.Rollback())
	assert.ErrorIs(t, err, database.ErrItemNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLowStock(t *testing.T) {
	catalog, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT id, name, stock_quantity FROM items WHERE stock_quantity <= \$1 ORDER BY stock_quantity ASC, name ASC`).
		WithArgs("5").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "stock_quantity"}).
			AddRow(int64(4), "Goat", "0.000").
			AddRow(int64(2), "Chicken", "4.250"))

	levels, err := catalog.LowStock(context.Background(), decimal.NewFromInt(5))
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Equal(t, "Goat", levels[0].Name)
	assert.True(t, levels[1].StockQuantity.Equal(decimal.RequireFromString("4.25")))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedIfEmpty(t *testing.T) {
	t.Run("populated catalog is left alone", func(t *testing.T) {
		catalog, mock := newMockDB(t)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM items`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

		n, err := catalog.SeedIfEmpty(context.Background(), SampleItems())
		require.NoError(t, err)
		assert.Zero(t, n)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty catalog gets every item", func(t *testing.T) {
		catalog, mock := newMockDB(t)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM items`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
		for _, in := range SampleItems() {
			mock.ExpectQuery(`INSERT INTO items`).
				WithArgs(in.Name, "kg", in.PricePerUnit.String(), in.StockQuantity.String()).
				WillReturnRows(beefRow())
		}

		n, err := catalog.SeedIfEmpty(context.Background(), SampleItems())
		require.NoError(t, err)
		assert.Equal(t, len(SampleItems()), n)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
