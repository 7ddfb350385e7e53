package dto

import "github.com/shopspring/decimal"

// PaymentMethodBreakdown groups a tenant's completed sales by payment method.
// Served from the short-lived cache — display data only, never used for
// reconciliation.
type PaymentMethodBreakdown struct {
	Methods map[string]PaymentMethodTotals `json:"methods"`
}

type PaymentMethodTotals struct {
	TotalValue    decimal.Decimal  `json:"total_value"`
	TotalQuantity int              `json:"total_quantity"`
	Sales         []PaymentSaleRow `json:"sales"`
}

type PaymentSaleRow struct {
	SaleCode string          `json:"sale_code"`
	Total    decimal.Decimal `json:"total"`
	Quantity int             `json:"quantity"`
	Date     string          `json:"date"`
}

// LowStockAlert flags products at or below their minimum stock level.
type LowStockAlert struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Stock       int    `json:"stock"`
	StockMin    int    `json:"stock_min"`
}
