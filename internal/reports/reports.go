// Package reports aggregates committed sales over calendar periods.
package reports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/Rodgers-crypto/newbutchermanagement/internal/models"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/store"
)

const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

var ErrUnknownPeriod = errors.New("unknown report period")

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Window returns the half-open interval [start, end) covered by period at now.
// Weeks start on Monday. An empty period means daily.
func Window(period string, now time.Time) (time.Time, time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := today.AddDate(0, 0, 1)

	switch period {
	case PeriodDaily, "":
		return today, end, nil
	case PeriodWeekly:
		offset := (int(today.Weekday()) + 6) % 7
		return today.AddDate(0, 0, -offset), end, nil
	case PeriodMonthly:
		return today.AddDate(0, 0, 1-today.Day()), end, nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, period)
}

// Service reports in one shop timezone: Go computes the windows and Postgres buckets
// sales into days in the same zone.
type Service struct {
	db      *sql.DB
	catalog *store.Catalog
	loc     *time.Location
	now     func() time.Time
}

func NewService(db *sql.DB, catalog *store.Catalog, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{db: db, catalog: catalog, loc: loc, now: time.Now}
}

func (s *Service) today() time.Time {
	return s.now().In(s.loc)
}

func (s *Service) Summary(ctx context.Context, period string) (*models.SalesReport, error) {
	if period == "" {
		period = PeriodDaily
	}
	start, end, err := Window(period, s.today())
	if err != nil {
		return nil, err
	}

	daily, err := s.dailyTotals(ctx, start, end)
	if err != nil {
		return nil, err
	}

	byItem, err := s.itemTotals(ctx, start, end)
	if err != nil {
		return nil, err
	}

	return &models.SalesReport{
		Period:    period,
		StartDate: start,
		EndDate:   end.AddDate(0, 0, -1),
		Daily:     daily,
		ByItem:    byItem,
	}, nil
}

func (s *Service) dailyTotals(ctx context.Context, start, end time.Time) ([]models.DailySales, error) {
	query, args, err := psql.
		Select().
		Column(squirrel.Expr("DATE(sale_datetime AT TIME ZONE ?) AS sale_date", s.loc.String())).
		Columns("COUNT(*) AS num_sales", "SUM(total_amount) AS total_sales").
		From("sales").
		Where(squirrel.GtOrEq{"sale_datetime": start}).
		Where(squirrel.Lt{"sale_datetime": end}).
		GroupBy("sale_date").
		OrderBy("sale_date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build daily totals query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query daily totals: %w", err)
	}
	defer rows.Close()

	days := []models.DailySales{}
	for rows.Next() {
		var day models.DailySales
		if err := rows.Scan(&day.Date, &day.NumSales, &day.TotalSales); err != nil {
			return nil, fmt.Errorf("scan daily totals: %w", err)
		}
		day.Date = time.Date(day.Date.Year(), day.Date.Month(), day.Date.Day(), 0, 0, 0, 0, s.loc)
		days = append(days, day)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return days, nil
}

func (s *Service) itemTotals(ctx context.Context, start, end time.Time) ([]models.ItemSales, error) {
	query, args, err := psql.
		Select("i.name", "SUM(si.quantity) AS total_qty", "SUM(si.line_total) AS total_amount").
		From("sale_items si").
		Join("items i ON i.id = si.item_id").
		Join("sales s ON s.id = si.sale_id").
		Where(squirrel.GtOrEq{"s.sale_datetime": start}).
		Where(squirrel.Lt{"s.sale_datetime": end}).
		GroupBy("i.id", "i.name").
		OrderBy("total_amount DESC", "i.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build item totals query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query item totals: %w", err)
	}
	defer rows.Close()

	items := []models.ItemSales{}
	for rows.Next() {
		var item models.ItemSales
		if err := rows.Scan(&item.Name, &item.TotalQuantity, &item.TotalAmount); err != nil {
			return nil, fmt.Errorf("scan item totals: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

// Dashboard reports today's takings and every item at or below threshold.
func (s *Service) Dashboard(ctx context.Context, threshold decimal.Decimal) (*models.Dashboard, error) {
	start, end, _ := Window(PeriodDaily, s.today())

	query, args, err := psql.
		Select("COALESCE(SUM(total_amount), 0)").
		From("sales").
		Where(squirrel.GtOrEq{"sale_datetime": start}).
		Where(squirrel.Lt{"sale_datetime": end}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build dashboard query: %w", err)
	}

	var today decimal.Decimal
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&today); err != nil {
		return nil, fmt.Errorf("query today's sales: %w", err)
	}

	lowStock, err := s.catalog.LowStock(ctx, threshold)
	if err != nil {
		return nil, err
	}

	return &models.Dashboard{
		TodaySales:    today,
		LowStockItems: lowStock,
	}, nil
}
