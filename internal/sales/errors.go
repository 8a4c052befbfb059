package sales

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Rodgers-crypto/newbutchermanagement/internal/database"
)

type Kind string

const (
	KindEmptyOrder        Kind = "empty_order"
	KindInvalidLineValue  Kind = "invalid_line_value"
	KindItemNotFound      Kind = "item_not_found"
	KindInsufficientStock Kind = "insufficient_stock"
)

// Error is the caller-facing reason a sale was refused. When it is returned nothing
// was persisted and no stock changed.
type Error struct {
	Kind Kind
	// Line is the zero-based index of the offending request line, -1 for the whole order.
	Line      int
	ItemID    int64
	ItemName  string
	Requested decimal.Decimal
	Available decimal.Decimal
	Detail    string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindEmptyOrder:
		return "empty order: at least one item is required"
	case KindInvalidLineValue:
		return fmt.Sprintf("invalid line %d (item %d): %s", e.Line+1, e.ItemID, e.Detail)
	case KindItemNotFound:
		return fmt.Sprintf("invalid line %d: item %d not found", e.Line+1, e.ItemID)
	case KindInsufficientStock:
		name := e.ItemName
		if name == "" {
			name = fmt.Sprintf("item %d", e.ItemID)
		}
		return fmt.Sprintf("not enough stock for %s: requested %s, available %s",
			name, e.Requested, e.Available)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	switch e.Kind {
	case KindEmptyOrder:
		return database.ErrEmptyOrder
	case KindInvalidLineValue:
		return database.ErrInvalidLineValue
	case KindItemNotFound:
		return database.ErrItemNotFound
	case KindInsufficientStock:
		return database.ErrInsufficientStock
	}
	return nil
}

func emptyOrder() *Error {
	return &Error{Kind: KindEmptyOrder, Line: -1}
}

func invalidLine(index int, itemID int64, detail string) *Error {
	return &Error{Kind: KindInvalidLineValue, Line: index, ItemID: itemID, Detail: detail}
}

func itemNotFound(index int, itemID int64) *Error {
	return &Error{Kind: KindItemNotFound, Line: index, ItemID: itemID}
}
