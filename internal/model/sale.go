package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is the closed set of accepted payment kinds. Values arriving
// at the boundary are validated once via Parse; services only ever see a
// valid member.
type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "CASH"
	PaymentCard    PaymentMethod = "CARD"
	PaymentInvoice PaymentMethod = "INVOICE"
	PaymentPartial PaymentMethod = "PARTIAL"
	PaymentPix     PaymentMethod = "PIX"
)

// ParsePaymentMethod normalizes and validates a payment method string.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch PaymentMethod(s) {
	case PaymentCash, PaymentCard, PaymentInvoice, PaymentPartial, PaymentPix:
		return PaymentMethod(s), true
	}
	return "", false
}

// Sale statuses.
const (
	SaleCompleted = "COMPLETED"
	SaleAmended   = "AMENDED"
	SaleVoided    = "VOIDED"
)

// Sale is the immutable record produced by draining a cart. It is created in
// the same transaction as its stock decrement and IN cash movement;
// RegisterID is set right after the ledger entry, establishing the
// sale↔movement back-reference. Amend/void operations adjust stock and post
// compensating movements — they never rewrite the ledger.
type Sale struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID   uuid.UUID  `gorm:"type:uuid;index;not null"`
	OperatorID uuid.UUID  `gorm:"type:uuid;not null"`
	RegisterID *uuid.UUID `gorm:"type:uuid;index"`

	// TicketNumber comes from a database sequence; Code is "V" + the
	// zero-padded ticket, or a random short code when no sequence is
	// available.
	TicketNumber int    `gorm:"index"`
	Code         string `gorm:"uniqueIndex;not null"`

	PaymentMethod PaymentMethod   `gorm:"type:varchar(10);not null"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Profit        decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	// Payment-method specific fields.
	CashReceived *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Change       *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Installments *int
	CustomerID   *uuid.UUID `gorm:"type:uuid"`

	Status    string `gorm:"type:varchar(12);not null;default:'COMPLETED'"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Items []SaleItem `gorm:"foreignKey:SaleID"`
}

// SaleItem is one sold line, denormalized from the cart at checkout time.
type SaleItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID `gorm:"type:uuid;index;not null"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null"`

	ProductName string          `gorm:"not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CostPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Addition    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Profit      decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	CreatedAt time.Time
}
