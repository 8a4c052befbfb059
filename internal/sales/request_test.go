package sales

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rodgers-crypto/newbutchermanagement/internal/database"
)

func TestParseLines(t *testing.T) {
	lines, err := ParseLines([]RawLine{
		{ItemID: 1, Quantity: " 2.5 ", UnitPrice: "12.50"},
		{ItemID: 2, Quantity: "1", UnitPrice: "6"},
	})
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.True(t, lines[0].Quantity.Equal(decimal.RequireFromString("2.5")))
	assert.True(t, lines[0].UnitPrice.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, int64(2), lines[1].ItemID)
}

func TestParseLines_NonNumeric(t *testing.T) {
	tests := []struct {
		name string
		raw  []RawLine
		line int
	}{
		{"quantity_text", []RawLine{{ItemID: 1, Quantity: "two", UnitPrice: "1"}}, 0},
		{"price_empty", []RawLine{{ItemID: 1, Quantity: "1", UnitPrice: "1"}, {ItemID: 2, Quantity: "1", UnitPrice: ""}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLines(tt.raw)
			saleErr := requireSaleError(t, err, KindInvalidLineValue)
			assert.ErrorIs(t, err, database.ErrInvalidLineValue)
			assert.Equal(t, tt.line, saleErr.Line)
			assert.Contains(t, err.Error(), "must be numeric")
		})
	}
}

func TestParseLines_TooLong(t *testing.T) {
	_, err := ParseLines([]RawLine{
		{ItemID: 1, Quantity: "1", UnitPrice: "1"},
		{ItemID: 2, Quantity: "0." + strings.Repeat("0", 40) + "1", UnitPrice: "1"},
	})

	var saleErr *Error
	require.ErrorAs(t, err, &saleErr)
	assert.ErrorIs(t, err, database.ErrInvalidLineValue)
	assert.Equal(t, 1, saleErr.Line)
	assert.Equal(t, int64(2), saleErr.ItemID)
}

func TestLineValidate(t *testing.T) {
	tests := []struct {
		name    string
		line    Line
		wantErr string
	}{
		{"valid_weight", line(1, "0.125", "12.5"), ""},
		{"free_item", line(1, "1", "0"), ""},
		{"zero_quantity", line(1, "0", "1"), "quantity must be positive"},
		{"negative_quantity", line(1, "-2", "1"), "quantity must be positive"},
		{"negative_price", line(1, "1", "-1"), "unit price cannot be negative"},
		{"sub_gram_quantity", line(1, "0.0001", "1"), "at most 3 decimal places"},
		{"fractional_cent", line(1, "1", "1.005"), "at most 2 decimal places"},
		{"price_overflow", line(1, "1", "10000000000"), "too large"},
		{"trailing_zeros", line(1, "1.500000", "2.5000"), ""},
		{"tiny_quantity_exponent", line(1, "1e-2000000000", "1"), "quantity is out of range"},
		{"huge_quantity_exponent", line(1, "1e2000000000", "1"), "quantity is out of range"},
		{"tiny_price_exponent", line(1, "1", "1e-2000000000"), "unit price is out of range"},
		{"huge_price_exponent", line(1, "1", "1e2000000000"), "unit price is out of range"},
		{"long_coefficient", line(1, "123456789012345678901234567890123", "1"), "quantity is out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.line.validate(0)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDecrementsAggregatePerItemInIDOrder(t *testing.T) {
	got := decrements([]Line{
		line(3, "1", "1"),
		line(1, "2.5", "1"),
		line(3, "0.5", "1"),
	})

	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].itemID)
	assert.True(t, got[0].quantity.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, int64(3), got[1].itemID)
	assert.True(t, got[1].quantity.Equal(decimal.RequireFromString("1.5")))
}

func TestErrorMessages(t *testing.T) {
	err := &Error{
		Kind:      KindInsufficientStock,
		ItemID:    1,
		ItemName:  "Beef",
		Requested: decimal.NewFromInt(50),
		Available: decimal.NewFromInt(45),
	}
	assert.Equal(t, "not enough stock for Beef: requested 50, available 45", err.Error())

	assert.Equal(t, "invalid line 2: item 9 not found", itemNotFound(1, 9).Error())
	assert.ErrorIs(t, emptyOrder(), database.ErrEmptyOrder)
}
