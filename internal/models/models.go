package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultUnit = "kg"

const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type Item struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	PricePerUnit  decimal.Decimal `json:"price_per_unit"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ItemInput carries the editable fields of an item for catalog management.
type ItemInput struct {
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	PricePerUnit  decimal.Decimal `json:"price_per_unit"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
}

// Normalize trims the text fields and applies the default unit.
func (in *ItemInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Unit = strings.TrimSpace(in.Unit)
	if in.Unit == "" {
		in.Unit = DefaultUnit
	}
}

type Sale struct {
	ID           int64           `json:"id"`
	SaleDatetime time.Time       `json:"sale_datetime"`
	UserID       int64           `json:"user_id"`
	CustomerName *string         `json:"customer_name,omitempty"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Items        []SaleItem      `json:"items,omitempty"`
}

type SaleItem struct {
	ID        int64           `json:"id"`
	SaleID    int64           `json:"sale_id"`
	ItemID    int64           `json:"item_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Receipt is a committed sale joined with the cashier and the item labels.
type Receipt struct {
	Sale
	Username string        `json:"username"`
	Lines    []ReceiptLine `json:"lines"`
}

type ReceiptLine struct {
	SaleItem
	Name string `json:"name"`
	Unit string `json:"unit"`
}

type DailySales struct {
	Date       time.Time       `json:"date"`
	NumSales   int64           `json:"num_sales"`
	TotalSales decimal.Decimal `json:"total_sales"`
}

type ItemSales struct {
	Name          string          `json:"name"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

type SalesReport struct {
	Period    string       `json:"period"`
	StartDate time.Time    `json:"start_date"`
	EndDate   time.Time    `json:"end_date"`
	Daily     []DailySales `json:"daily"`
	ByItem    []ItemSales  `json:"by_item"`
}

type StockLevel struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
}

type Dashboard struct {
	TodaySales    decimal.Decimal `json:"today_sales"`
	LowStockItems []StockLevel    `json:"low_stock_items"`
}
