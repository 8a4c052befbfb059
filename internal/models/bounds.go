package models

import "github.com/shopspring/decimal"

// Limits for decimals taken from user input. Comparing or rescaling a decimal costs
// time and memory proportional to its exponent, so anything outside these bounds is
// refused before arithmetic.
const (
	MaxDecimalExponent = 12
	MaxDecimalScale    = 12
	maxCoefficientBits = 96
)

// DecimalBounded reports whether d has a sane exponent and coefficient size.
func DecimalBounded(d decimal.Decimal) bool {
	exp := d.Exponent()
	if exp > MaxDecimalExponent || exp < -MaxDecimalScale {
		return false
	}
	return d.Coefficient().BitLen() <= maxCoefficientBits
}
