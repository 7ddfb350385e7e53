package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	Code      string          `json:"code" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	CostPrice decimal.Decimal `json:"cost_price" validate:"min=0"`
	SalePrice decimal.Decimal `json:"sale_price" validate:"min=0"`
	Stock     int             `json:"stock" validate:"min=0"`
	StockMin  *int            `json:"stock_min"`
	ExpiresAt *time.Time      `json:"expires_at"`
}

type ProductResponse struct {
	ID        string          `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	CostPrice decimal.Decimal `json:"cost_price"`
	SalePrice decimal.Decimal `json:"sale_price"`
	Stock     int             `json:"stock"`
	StockMin  int             `json:"stock_min"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	Active    bool            `json:"active"`
}

// StockAdjustmentRequest records goods arriving (entry) or leaving outside a
// sale (exit): deliveries, breakage, expiry write-offs.
type StockAdjustmentRequest struct {
	ProductRef string `json:"product_ref" validate:"required"`
	Quantity   int    `json:"quantity" validate:"required,gt=0"`
	Reason     string `json:"reason"`
}

type StockAdjustmentResponse struct {
	ProductID string `json:"product_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Stock     int    `json:"stock"`
	Reason    string `json:"reason,omitempty"`
}
