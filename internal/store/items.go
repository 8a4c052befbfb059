package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Rodgers-crypto/newbutchermanagement/internal/database"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/models"
)

const itemColumns = `id, name, unit, price_per_unit, stock_quantity, created_at, updated_at`

// Exclusive upper bounds of the price and stock columns.
var (
	maxItemPrice = decimal.New(1, 10)
	maxItemStock = decimal.New(1, 11)
)

// Catalog is the authoritative source of items, prices and stock levels. It is the
// only writer of items.stock_quantity.
type Catalog struct {
	db *sql.DB
}

func NewCatalog(db *sql.DB) *Catalog {
	return &Catalog{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	item := &models.Item{}
	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Unit,
		&item.PricePerUnit,
		&item.StockQuantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ValidateItem checks an item input after normalizing it.
func ValidateItem(in *models.ItemInput) error {
	in.Normalize()

	if in.Name == "" {
		return fmt.Errorf("%w: name is required", database.ErrInvalidItem)
	}
	if in.PricePerUnit.IsNegative() || in.StockQuantity.IsNegative() {
		return fmt.Errorf("%w: price and quantity must be non-negative", database.ErrInvalidItem)
	}
	if !models.DecimalBounded(in.PricePerUnit) || !models.DecimalBounded(in.StockQuantity) {
		return fmt.Errorf("%w: price or quantity out of range", database.ErrInvalidItem)
	}
	if in.PricePerUnit.GreaterThanOrEqual(maxItemPrice) || in.StockQuantity.GreaterThanOrEqual(maxItemStock) {
		return fmt.Errorf("%w: price or quantity too large", database.ErrInvalidItem)
	}
	return nil
}

func (c *Catalog) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`

	item, err := scanItem(c.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrItemNotFound
		}
		return nil, fmt.Errorf("get item: %w", err)
	}

	return item, nil
}

func (c *Catalog) ListItems(ctx context.Context) ([]models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY name ASC, id ASC`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

// LowStock lists items whose stock is at or below threshold, lowest first.
func (c *Catalog) LowStock(ctx context.Context, threshold decimal.Decimal) ([]models.StockLevel, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, name, stock_quantity
		 FROM items
		 WHERE stock_quantity <= $1
		 ORDER BY stock_quantity ASC, name ASC`,
		threshold)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()

	levels := []models.StockLevel{}
	for rows.Next() {
		var level models.StockLevel
		if err := rows.Scan(&level.ID, &level.Name, &level.StockQuantity); err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		levels = append(levels, level)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return levels, nil
}

func (c *Catalog) CreateItem(ctx context.Context, in models.ItemInput) (*models.Item, error) {
	if err := ValidateItem(&in); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO items (name, unit, price_per_unit, stock_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING ` + itemColumns

	item, err := scanItem(c.db.QueryRowContext(ctx, query, in.Name, in.Unit, in.PricePerUnit, in.StockQuantity))
	if err != nil {
		if database.IsCheckViolation(err) {
			return nil, fmt.Errorf("%w: %v", database.ErrInvalidItem, err)
		}
		return nil, fmt.Errorf("create item: %w", err)
	}

	return item, nil
}

// UpdateItem replaces the editable fields of an item. Setting the stock level here is
// an explicit stock count correction, not a sale.
func (c *Catalog) UpdateItem(ctx context.Context, id int64, in models.ItemInput) (*models.Item, error) {
	if err := ValidateItem(&in); err != nil {
		return nil, err
	}

	query := `
		UPDATE items
		SET name = $1, unit = $2, price_per_unit = $3, stock_quantity = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING ` + itemColumns

	item, err := scanItem(c.db.QueryRowContext(ctx, query, in.Name, in.Unit, in.PricePerUnit, in.StockQuantity, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrItemNotFound
		}
		if database.IsCheckViolation(err) {
			return nil, fmt.Errorf("%w: %v", database.ErrInvalidItem, err)
		}
		return nil, fmt.Errorf("update item: %w", err)
	}

	return item, nil
}

func (c *Catalog) DeleteItem(ctx context.Context, id int64) error {
	result, err := c.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return database.ErrItemInUse
		}
		return fmt.Errorf("delete item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return database.ErrItemNotFound
	}

	return nil
}

// DecrementStock subtracts amount from the item's stock inside tx. The guard in the
// WHERE clause is evaluated against the latest committed row version under the row
// lock, so concurrent callers can never drive stock below zero. A refused decrement
// returns *database.StockError carrying the stock observed in the same transaction.
func (c *Catalog) DecrementStock(ctx context.Context, tx *sql.Tx, id int64, amount decimal.Decimal) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE items
		 SET stock_quantity = stock_quantity - $1,
		     updated_at = NOW()
		 WHERE id = $2
		   AND stock_quantity >= $1`,
		amount, id)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected > 0 {
		return nil
	}

	var available decimal.Decimal
	err = tx.QueryRowContext(ctx, `SELECT stock_quantity FROM items WHERE id = $1`, id).Scan(&available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return database.ErrItemNotFound
		}
		return fmt.Errorf("read stock after refused decrement: %w", err)
	}

	return &database.StockError{
		ItemID:    id,
		Requested: amount,
		Available: available,
	}
}
