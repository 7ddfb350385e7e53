// Package money centralizes monetary arithmetic for the PDV core.
// All amounts are fixed-point decimals with two fractional digits and
// half-up rounding; float64 must never hold a monetary value.
package money

import "github.com/shopspring/decimal"

// Round normalizes an amount to the smallest currency unit (two decimal
// places, half-up).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ClampZero returns max(d, 0).
func ClampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// LineTotal computes clamp_to_zero(price×qty − discount + addition),
// rounded to the smallest currency unit.
func LineTotal(price decimal.Decimal, quantity int, discount, addition decimal.Decimal) decimal.Decimal {
	total := price.Mul(decimal.NewFromInt(int64(quantity))).Sub(discount).Add(addition)
	return Round(ClampZero(total))
}

// Profit computes (salePrice − costPrice)×qty, rounded. Negative results
// are preserved: selling below cost is a loss, not an error.
func Profit(salePrice, costPrice decimal.Decimal, quantity int) decimal.Decimal {
	return Round(salePrice.Sub(costPrice).Mul(decimal.NewFromInt(int64(quantity))))
}
