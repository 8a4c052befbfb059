package sales

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Rodgers-crypto/newbutchermanagement/internal/models"
)

const (
	quantityPlaces = 3
	pricePlaces    = 2

	maxNumericLength = 32
)

// maxUnitPrice is the exclusive upper bound the price column can hold.
var maxUnitPrice = decimal.New(1, 10)

type Request struct {
	UserID       int64
	CustomerName string
	Lines        []Line
}

// Line is one requested sale line. UnitPrice is the price agreed at the counter and
// may differ from the catalog price.
type Line struct {
	ItemID    int64
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// RawLine is a sale line as typed into a form, before numeric parsing.
type RawLine struct {
	ItemID    int64
	Quantity  string
	UnitPrice string
}

// ParseLines converts raw form input into sale lines, refusing non-numeric values
// with the same error kind the engine uses for out-of-range values.
func ParseLines(raw []RawLine) ([]Line, error) {
	lines := make([]Line, 0, len(raw))
	for i, r := range raw {
		if len(r.Quantity) > maxNumericLength || len(r.UnitPrice) > maxNumericLength {
			return nil, invalidLine(i, r.ItemID, "quantity and price are too long")
		}
		quantity, err := decimal.NewFromString(strings.TrimSpace(r.Quantity))
		if err != nil {
			return nil, invalidLine(i, r.ItemID, "quantity and price must be numeric")
		}
		price, err := decimal.NewFromString(strings.TrimSpace(r.UnitPrice))
		if err != nil {
			return nil, invalidLine(i, r.ItemID, "quantity and price must be numeric")
		}
		lines = append(lines, Line{ItemID: r.ItemID, Quantity: quantity, UnitPrice: price})
	}
	return lines, nil
}

func (l Line) validate(index int) error {
	switch {
	case !l.Quantity.IsPositive():
		return invalidLine(index, l.ItemID, "quantity must be positive")
	case l.UnitPrice.IsNegative():
		return invalidLine(index, l.ItemID, "unit price cannot be negative")
	case !models.DecimalBounded(l.Quantity):
		return invalidLine(index, l.ItemID, "quantity is out of range")
	case !models.DecimalBounded(l.UnitPrice):
		return invalidLine(index, l.ItemID, "unit price is out of range")
	case !l.Quantity.Equal(l.Quantity.Truncate(quantityPlaces)):
		return invalidLine(index, l.ItemID, "quantity supports at most 3 decimal places")
	case !l.UnitPrice.Equal(l.UnitPrice.Truncate(pricePlaces)):
		return invalidLine(index, l.ItemID, "unit price supports at most 2 decimal places")
	case l.UnitPrice.GreaterThanOrEqual(maxUnitPrice):
		return invalidLine(index, l.ItemID, "unit price is too large")
	}
	return nil
}

func (l Line) total() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

type stockDecrement struct {
	itemID   int64
	quantity decimal.Decimal
}

// decrements sums the requested quantity per item, ordered by item id so concurrent
// commits acquire row locks in the same order.
func decrements(lines []Line) []stockDecrement {
	byItem := make(map[int64]decimal.Decimal, len(lines))
	for _, l := range lines {
		byItem[l.ItemID] = byItem[l.ItemID].Add(l.Quantity)
	}

	out := make([]stockDecrement, 0, len(byItem))
	for id, qty := range byItem {
		out = append(out, stockDecrement{itemID: id, quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].itemID < out[j].itemID })
	return out
}

func firstLineFor(lines []Line, itemID int64) int {
	for i, l := range lines {
		if l.ItemID == itemID {
			return i
		}
	}
	return -1
}
