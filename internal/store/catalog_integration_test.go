//go:build integration

package store_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rodgers-crypto/newbutchermanagement/internal/database"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/models"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/store"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/testutil"
)

func TestCatalog_Integration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	catalog := store.NewCatalog(db)

	n, err := catalog.SeedIfEmpty(ctx, store.SampleItems())
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = catalog.SeedIfEmpty(ctx, store.SampleItems())
	require.NoError(t, err)
	assert.Zero(t, n)

	items, err := catalog.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, "Beef", items[0].Name)

	beef := items[0]
	updated, err := catalog.UpdateItem(ctx, beef.ID, models.ItemInput{
		Name:          "Beef",
		Unit:          "kg",
		PricePerUnit:  decimal.RequireFromString("13.25"),
		StockQuantity: decimal.RequireFromString("2.5"),
	})
	require.NoError(t, err)
	assert.True(t, updated.PricePerUnit.Equal(decimal.RequireFromString("13.25")))

	low, err := catalog.LowStock(ctx, decimal.NewFromInt(10))
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, beef.ID, low[0].ID)

	require.NoError(t, catalog.DeleteItem(ctx, beef.ID))
	_, err = catalog.GetItem(ctx, beef.ID)
	assert.ErrorIs(t, err, database.ErrItemNotFound)
}

func TestDecrementStock_Integration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	catalog := store.NewCatalog(db)

	pork, err := catalog.CreateItem(ctx, models.ItemInput{
		Name:          "Pork",
		PricePerUnit:  decimal.NewFromInt(9),
		StockQuantity: decimal.RequireFromString("3.5"),
	})
	require.NoError(t, err)

	err = database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		return catalog.DecrementStock(ctx, tx, pork.ID, decimal.RequireFromString("1.25"))
	})
	require.NoError(t, err)

	err = database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		return catalog.DecrementStock(ctx, tx, pork.ID, decimal.NewFromInt(3))
	})
	var stockErr *database.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.True(t, stockErr.Available.Equal(decimal.RequireFromString("2.25")))

	after, err := catalog.GetItem(ctx, pork.ID)
	require.NoError(t, err)
	assert.True(t, after.StockQuantity.Equal(decimal.RequireFromString("2.25")), "stock %s", after.StockQuantity)
}

func TestDeleteItem_InUse_Integration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	catalog := store.NewCatalog(db)
	userID := testutil.CreateUser(t, db, "cashier", models.RoleCashier)

	goat, err := catalog.CreateItem(ctx, models.ItemInput{Name: "Goat", PricePerUnit: decimal.NewFromInt(11), StockQuantity: decimal.NewFromInt(5)})
	require.NoError(t, err)

	var saleID int64
	require.NoError(t, db.QueryRow(
		`INSERT INTO sales (user_id, total_amount) VALUES ($1, 11) RETURNING id`, userID).Scan(&saleID))
	_, err = db.Exec(
		`INSERT INTO sale_items (sale_id, item_id, quantity, unit_price) VALUES ($1, $2, 1, 11)`, saleID, goat.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, catalog.DeleteItem(ctx, goat.ID), database.ErrItemInUse)
}
