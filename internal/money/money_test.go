package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestLineTotal(t *testing.T) {
	// 3 × 10.50 − 1.25 + 0.50 = 30.75
	total := LineTotal(dec("10.50"), 3, dec("1.25"), dec("0.50"))
	assert.Equal(t, "30.75", total.StringFixed(2))
}

func TestLineTotalRoundsHalfUp(t *testing.T) {
	// 3 × 0.335 = 1.005 → 1.01
	total := LineTotal(dec("0.335"), 3, decimal.Zero, decimal.Zero)
	assert.Equal(t, "1.01", total.StringFixed(2))
}

func TestLineTotalClampsToZero(t *testing.T) {
	// Discount larger than the line value never yields a negative total.
	total := LineTotal(dec("2.00"), 1, dec("5.00"), decimal.Zero)
	assert.True(t, total.IsZero())
}

func TestProfit(t *testing.T) {
	assert.Equal(t, "9.00", Profit(dec("5.00"), dec("2.00"), 3).StringFixed(2))
	// Selling below cost yields a negative profit.
	assert.Equal(t, "-3.00", Profit(dec("2.00"), dec("5.00"), 1).StringFixed(2))
}

func TestRepeatedAdditionDoesNotDrift(t *testing.T) {
	sum := decimal.Zero
	for i := 0; i < 10000; i++ {
		sum = sum.Add(dec("0.01"))
	}
	assert.Equal(t, "100.00", sum.StringFixed(2))
}
