package sales

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/Rodgers-crypto/newbutchermanagement/internal/database"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/models"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/store"
)

type ListParams struct {
	Cursor string
	Limit  int
	// UserID restricts the listing to one operator's sales when non-zero.
	UserID int64
}

func scanSale(row interface{ Scan(...any) error }, extra ...any) (*models.Sale, error) {
	sale := &models.Sale{}
	var customerName sql.NullString

	dest := append([]any{
		&sale.ID,
		&sale.SaleDatetime,
		&sale.UserID,
		&customerName,
		&sale.TotalAmount,
	}, extra...)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if customerName.Valid {
		sale.CustomerName = &customerName.String
	}
	return sale, nil
}

func (e *Engine) GetSale(ctx context.Context, id int64) (*models.Sale, error) {
	sale, err := scanSale(e.db.QueryRowContext(ctx,
		`SELECT id, sale_datetime, user_id, customer_name, total_amount
		 FROM sales
		 WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrSaleNotFound
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	lines, err := e.receiptLines(ctx, id)
	if err != nil {
		return nil, err
	}

	sale.Items = make([]models.SaleItem, len(lines))
	for i, line := range lines {
		sale.Items[i] = line.SaleItem
	}

	return sale, nil
}

// GetReceipt loads a committed sale with the cashier's username and the name and unit
// of every item sold.
func (e *Engine) GetReceipt(ctx context.Context, id int64) (*models.Receipt, error) {
	receipt := &models.Receipt{}

	sale, err := scanSale(e.db.QueryRowContext(ctx,
		`SELECT s.id, s.sale_datetime, s.user_id, s.customer_name, s.total_amount, u.username
		 FROM sales s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.id = $1`, id), &receipt.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrSaleNotFound
		}
		return nil, fmt.Errorf("get receipt: %w", err)
	}

	lines, err := e.receiptLines(ctx, id)
	if err != nil {
		return nil, err
	}

	receipt.Sale = *sale
	receipt.Lines = lines
	return receipt, nil
}

func (e *Engine) receiptLines(ctx context.Context, saleID int64) ([]models.ReceiptLine, error) {
	rows, err := e.db.QueryContext(ctx,
		`SELECT si.id, si.sale_id, si.item_id, si.quantity, si.unit_price, si.line_total, i.name, i.unit
		 FROM sale_items si
		 JOIN items i ON i.id = si.item_id
		 WHERE si.sale_id = $1
		 ORDER BY si.id`, saleID)
	if err != nil {
		return nil, fmt.Errorf("get sale items: %w", err)
	}
	defer rows.Close()

	lines := []models.ReceiptLine{}
	for rows.Next() {
		var line models.ReceiptLine
		err := rows.Scan(
			&line.ID,
			&line.SaleID,
			&line.ItemID,
			&line.Quantity,
			&line.UnitPrice,
			&line.LineTotal,
			&line.Name,
			&line.Unit,
		)
		if err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return lines, nil
}

// ListSales pages through sale headers newest first using a keyset cursor.
func (e *Engine) ListSales(ctx context.Context, params ListParams) (*store.CursorPage, error) {
	cursor, err := store.DecodeCursor(params.Cursor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", database.ErrInvalidCursor, err)
	}
	limit := store.ClampPageSize(params.Limit)

	qb := squirrel.Select("id", "sale_datetime", "user_id", "customer_name", "total_amount").
		From("sales").
		Where(squirrel.Expr("(sale_datetime, id) < (?, ?)", cursor.SaleDatetime, cursor.ID)).
		OrderBy("sale_datetime DESC", "id DESC").
		Limit(uint64(limit + 1)).
		PlaceholderFormat(squirrel.Dollar)

	if params.UserID != 0 {
		qb = qb.Where(squirrel.Eq{"user_id": params.UserID})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sales query: %w", err)
	}

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	sales := []models.Sale{}
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, *sale)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	hasMore := len(sales) > limit
	if hasMore {
		sales = sales[:limit]
	}

	var nextCursor string
	if hasMore && len(sales) > 0 {
		last := sales[len(sales)-1]
		nextCursor = store.EncodeCursor(store.SaleCursor{
			SaleDatetime: last.SaleDatetime,
			ID:           last.ID,
		})
	}

	return &store.CursorPage{
		Items:      sales,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}
