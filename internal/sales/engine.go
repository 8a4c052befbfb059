package sales

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Rodgers-crypto/newbutchermanagement/internal/database"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/logger"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/metrics"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/models"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/store"
)

// Engine validates and commits sales. It is the only writer of sales and sale_items
// rows and the only caller of Catalog.DecrementStock.
type Engine struct {
	db      *sql.DB
	catalog *store.Catalog
	log     *zap.Logger
	metrics *metrics.Sales
	txOpts  database.TxOptions
}

func NewEngine(db *sql.DB, catalog *store.Catalog, log *zap.Logger, m *metrics.Sales) *Engine {
	return &Engine{
		db:      db,
		catalog: catalog,
		log:     log.With(zap.String("component", "sales")),
		metrics: m,
		txOpts:  database.DefaultTxOptions(),
	}
}

// SubmitSale validates req against current inventory and, when every line passes,
// records the sale, its lines and the stock decrements as one transaction. Refusals
// are returned as *Error and leave the database untouched.
func (e *Engine) SubmitSale(ctx context.Context, req Request) (*models.Sale, error) {
	log := e.log.With(zap.Int64("user_id", req.UserID), zap.Int("lines", len(req.Lines)))
	if id := logger.RequestID(ctx); id != "" {
		log = log.With(zap.String("request_id", id))
	}

	items, err := e.validate(ctx, req)
	if err != nil {
		e.rejected(log, err)
		return nil, err
	}

	start := time.Now()
	sale, err := e.commit(ctx, req, items)
	if err != nil {
		e.rejected(log, err)
		return nil, err
	}
	e.metrics.ObserveCommit(sale.TotalAmount, time.Since(start))

	log.Info("sale committed",
		zap.Int64("sale_id", sale.ID),
		zap.String("total_amount", sale.TotalAmount.String()))

	return sale, nil
}

// validate checks every line in order and stops at the first failure. Quantities for
// an item repeated across lines are checked cumulatively.
func (e *Engine) validate(ctx context.Context, req Request) (map[int64]*models.Item, error) {
	if len(req.Lines) == 0 {
		return nil, emptyOrder()
	}

	items := make(map[int64]*models.Item, len(req.Lines))
	requested := make(map[int64]decimal.Decimal, len(req.Lines))

	for i, line := range req.Lines {
		if err := line.validate(i); err != nil {
			return nil, err
		}

		item, ok := items[line.ItemID]
		if !ok {
			found, err := e.catalog.GetItem(ctx, line.ItemID)
			if errors.Is(err, database.ErrItemNotFound) {
				return nil, itemNotFound(i, line.ItemID)
			}
			if err != nil {
				return nil, fmt.Errorf("look up item %d: %w", line.ItemID, err)
			}
			item = found
			items[line.ItemID] = item
		}

		total := requested[line.ItemID].Add(line.Quantity)
		if total.GreaterThan(item.StockQuantity) {
			return nil, &Error{
				Kind:      KindInsufficientStock,
				Line:      i,
				ItemID:    item.ID,
				ItemName:  item.Name,
				Requested: total,
				Available: item.StockQuantity,
			}
		}
		requested[line.ItemID] = total
	}

	return items, nil
}

func (e *Engine) commit(ctx context.Context, req Request, items map[int64]*models.Item) (*models.Sale, error) {
	var customerName *string
	if name := strings.TrimSpace(req.CustomerName); name != "" {
		customerName = &name
	}

	lines := make([]models.SaleItem, len(req.Lines))
	totalAmount := decimal.Zero
	for i, line := range req.Lines {
		lineTotal := line.total()
		lines[i] = models.SaleItem{
			ItemID:    line.ItemID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: lineTotal,
		}
		totalAmount = totalAmount.Add(lineTotal)
	}

	stock := decrements(req.Lines)

	var sale *models.Sale
	err := database.WithRetry(ctx, e.db, e.txOpts, func(tx *sql.Tx) error {
		for _, d := range stock {
			if err := e.catalog.DecrementStock(ctx, tx, d.itemID, d.quantity); err != nil {
				return decrementError(err, req.Lines, d.itemID, items)
			}
		}

		s := &models.Sale{
			UserID:       req.UserID,
			CustomerName: customerName,
			TotalAmount:  totalAmount,
			Items:        make([]models.SaleItem, len(lines)),
		}

		err := tx.QueryRowContext(ctx,
			`INSERT INTO sales (sale_datetime, user_id, customer_name, total_amount)
			 VALUES (NOW(), $1, $2, $3)
			 RETURNING id, sale_datetime`,
			req.UserID, customerName, totalAmount).Scan(&s.ID, &s.SaleDatetime)
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return fmt.Errorf("create sale: %w", database.ErrUserNotFound)
			}
			return fmt.Errorf("create sale: %w", err)
		}

		for i, line := range lines {
			line.SaleID = s.ID
			err := tx.QueryRowContext(ctx,
				`INSERT INTO sale_items (sale_id, item_id, quantity, unit_price)
				 VALUES ($1, $2, $3, $4)
				 RETURNING id`,
				s.ID, line.ItemID, line.Quantity, line.UnitPrice).Scan(&line.ID)
			if err != nil {
				return fmt.Errorf("create sale item: %w", err)
			}
			s.Items[i] = line
		}

		sale = s
		return nil
	})
	if err != nil {
		var saleErr *Error
		if errors.As(err, &saleErr) {
			return nil, saleErr
		}
		return nil, fmt.Errorf("record sale: %w", err)
	}

	return sale, nil
}

// decrementError maps a refused stock decrement onto the error kinds validation
// produces, so a race lost at commit time looks the same to the caller.
func decrementError(err error, lines []Line, itemID int64, items map[int64]*models.Item) error {
	index := firstLineFor(lines, itemID)

	var stockErr *database.StockError
	switch {
	case errors.As(err, &stockErr):
		saleErr := &Error{
			Kind:      KindInsufficientStock,
			Line:      index,
			ItemID:    itemID,
			Requested: stockErr.Requested,
			Available: stockErr.Available,
		}
		if item, ok := items[itemID]; ok {
			saleErr.ItemName = item.Name
		}
		return saleErr
	case errors.Is(err, database.ErrItemNotFound):
		return itemNotFound(index, itemID)
	}
	return err
}

func (e *Engine) rejected(log *zap.Logger, err error) {
	var saleErr *Error
	if errors.As(err, &saleErr) {
		e.metrics.ObserveRejection(string(saleErr.Kind))
		log.Warn("sale rejected",
			zap.String("reason", string(saleErr.Kind)),
			zap.Int64("item_id", saleErr.ItemID),
			zap.Error(err))
		return
	}

	e.metrics.ObserveRejection("error")
	log.Error("sale failed", zap.Error(err))
}
