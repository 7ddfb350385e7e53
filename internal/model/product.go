package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a tenant-scoped catalog entry. Stock is the on-hand quantity
// and is never negative after a committed operation: every decrement goes
// through the repository's compare-and-decrement primitive.
type Product struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_products_tenant_code"`
	Code     string    `gorm:"not null;uniqueIndex:idx_products_tenant_code"`
	Name     string    `gorm:"index;not null"`

	CostPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SalePrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Stock    int `gorm:"not null;default:0"`
	StockMin int `gorm:"not null;default:5"`

	ExpiresAt *time.Time
	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
