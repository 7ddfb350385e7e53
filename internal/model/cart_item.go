package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one staged line in an operator's cart, scoped to the OPEN
// register it was added under. Quantity is positive while the line exists;
// dropping to zero deletes the line and returns its reserved stock. UnitPrice
// is a snapshot taken at add time — later catalog price changes do not affect
// lines already in a cart.
type CartItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null"`
	OperatorID uuid.UUID `gorm:"type:uuid;not null"`
	RegisterID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_register_product"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_register_product"`

	ProductName string `gorm:"not null"`
	ProductCode string `gorm:"not null"`

	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Addition  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
