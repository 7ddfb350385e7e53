package dto

import "github.com/shopspring/decimal"

type AddCartLineRequest struct {
	// ProductRef resolves by product id, code or name within the tenant.
	ProductRef string `json:"product_ref" validate:"required"`
	Quantity   int    `json:"quantity" validate:"required,gt=0"`
}

type UpdateCartLineRequest struct {
	ProductRef string           `json:"product_ref" validate:"required"`
	Quantity   *int             `json:"quantity"`
	Discount   *decimal.Decimal `json:"discount"`
	Addition   *decimal.Decimal `json:"addition"`
	// Replace switches quantity/discount/addition from additive to absolute
	// semantics.
	Replace bool `json:"replace"`
}

type CartLineResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductCode string          `json:"product_code"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	Addition    decimal.Decimal `json:"addition"`
	Total       decimal.Decimal `json:"total"`
}

// CartLineResult distinguishes "line updated" from "line removed because its
// quantity reached zero" — the latter is a successful outcome, not a failure.
type CartLineResult struct {
	Removed bool              `json:"removed"`
	Line    *CartLineResponse `json:"line,omitempty"`
}

type CartSummary struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	TotalAddition decimal.Decimal `json:"total_addition"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	ItemCount     int             `json:"item_count"`
	LineCount     int             `json:"line_count"`
}
