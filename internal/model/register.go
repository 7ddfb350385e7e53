package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Register states. A register is provisioned once per (tenant, operator) and
// cycles CLOSED → OPEN → CLOSED; it is never deleted.
const (
	RegisterOpen   = "OPEN"
	RegisterClosed = "CLOSED"
)

// Cash movement types. OPEN seeds the running balance but is excluded from
// the turnover sum at reconciliation time; CLOSE is a marker entry.
type MovementType string

const (
	MovementOpen  MovementType = "OPEN"
	MovementIn    MovementType = "IN"
	MovementOut   MovementType = "OUT"
	MovementClose MovementType = "CLOSE"
)

// CashRegister (caixa) is the per-operator drawer. RunningBalance mutates on
// every IN/OUT; the closing fields are set only at close and cleared on the
// next open. At most one OPEN register exists per (tenant, operator) —
// enforced by a partial unique index, see infra.NewDatabase.
type CashRegister struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_registers_tenant_operator"`
	OperatorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_registers_tenant_operator"`
	Name       string    `gorm:"not null"`
	State      string    `gorm:"type:varchar(10);not null;default:'CLOSED'"`

	OpeningBalance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	RunningBalance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	// Close-time audit snapshot: declared by the operator, computed from the
	// ledger, difference = declared − computed.
	DeclaredValue *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ComputedValue *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Difference    *decimal.Decimal `gorm:"type:decimal(12,2)"`

	OpenedAt  *time.Time
	ClosedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time

	Movements []CashMovement `gorm:"foreignKey:RegisterID"`
}

// CashMovement is an immutable entry in the drawer's append-only ledger.
// Amount is always non-negative; direction is carried by Type. Movements are
// NEVER updated or deleted — corrections post inverse entries.
type CashMovement struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RegisterID uuid.UUID       `gorm:"type:uuid;index;not null"`
	TenantID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	OperatorID uuid.UUID       `gorm:"type:uuid;not null"`
	Type       MovementType    `gorm:"type:varchar(10);not null"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Description string         `gorm:"not null"`
	// SaleID links the movement to the sale that produced it, if any.
	SaleID    *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time
}

// TableName keeps the ledger table name explicit.
func (CashMovement) TableName() string { return "cash_movements" }
