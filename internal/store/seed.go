package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Rodgers-crypto/newbutchermanagement/internal/models"
)

// SampleItems is the starter catalog for a fresh shop.
func SampleItems() []models.ItemInput {
	item := func(name, price, stock string) models.ItemInput {
		return models.ItemInput{
			Name:          name,
			Unit:          models.DefaultUnit,
			PricePerUnit:  decimal.RequireFromString(price),
			StockQuantity: decimal.RequireFromString(stock),
		}
	}
	return []models.ItemInput{
		item("Beef", "12.50", "50"),
		item("Chicken", "6.00", "80"),
		item("Pork", "9.00", "60"),
		item("Goat", "11.00", "40"),
	}
}

// SeedIfEmpty inserts items only when the catalog has none and returns how many were added.
func (c *Catalog) SeedIfEmpty(ctx context.Context, items []models.ItemInput) (int, error) {
	var count int64
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	for i, in := range items {
		if _, err := c.CreateItem(ctx, in); err != nil {
			return i, fmt.Errorf("seed %q: %w", in.Name, err)
		}
	}
	return len(items), nil
}
