package dto

import "github.com/shopspring/decimal"

type CheckoutRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required"`

	// CASH
	CashReceived *decimal.Decimal `json:"cash_received"`
	Change       *decimal.Decimal `json:"change"`

	// CARD
	Installments *int `json:"installments"`

	// INVOICE / PARTIAL
	CustomerID *string `json:"customer_id"`

	// CustomerEmail triggers an async receipt e-mail when present.
	CustomerEmail *string `json:"customer_email"`
}

type SaleResponse struct {
	ID            string          `json:"id"`
	Code          string          `json:"code"`
	TicketNumber  int             `json:"ticket_number,omitempty"`
	PaymentMethod string          `json:"payment_method"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Profit        decimal.Decimal `json:"profit"`
	Status        string          `json:"status"`
	RegisterID    *string         `json:"register_id,omitempty"`
	Items         []SaleItemResponse `json:"items"`
	CreatedAt     string          `json:"created_at"`
}

type SaleItemResponse struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// Receipt is a pure projection built from the finalized sale — it is returned
// to the caller and optionally e-mailed, never persisted.
type Receipt struct {
	SaleCode     string             `json:"sale_code"`
	TenantID     string             `json:"tenant_id"`
	OperatorName string             `json:"operator_name"`
	Items        []ReceiptLine      `json:"items"`
	Total        decimal.Decimal    `json:"total"`
	Payment      ReceiptPayment     `json:"payment"`
	IssuedAt     string             `json:"issued_at"`
}

type ReceiptLine struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

type ReceiptPayment struct {
	Method       string           `json:"method"`
	CashReceived *decimal.Decimal `json:"cash_received,omitempty"`
	Change       *decimal.Decimal `json:"change,omitempty"`
	Installments *int             `json:"installments,omitempty"`
	CustomerID   *string          `json:"customer_id,omitempty"`
}

type AmendSaleRequest struct {
	ProductID   string `json:"product_id" validate:"required"`
	NewQuantity int    `json:"new_quantity" validate:"min=0"`
}
