package dto

import "github.com/shopspring/decimal"

type OpenRegisterRequest struct {
	OpeningBalance decimal.Decimal `json:"opening_balance" validate:"min=0"`
}

type PostMovementRequest struct {
	Type        string          `json:"type" validate:"required,oneof=IN OUT"`
	Amount      decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Description string          `json:"description" validate:"required"`
}

type CloseRegisterRequest struct {
	DeclaredValue decimal.Decimal `json:"declared_value" validate:"min=0"`
}

type RegisterResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	State          string          `json:"state"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	RunningBalance decimal.Decimal `json:"running_balance"`
	OpenedAt       *string         `json:"opened_at,omitempty"`
	ClosedAt       *string         `json:"closed_at,omitempty"`
}

type MovementResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	SaleID      *string         `json:"sale_id,omitempty"`
	CreatedAt   string          `json:"created_at"`
}

// RegisterReport is the drawer detail view: balances, turnover totals and the
// movement list, newest first. Served while the register is open and as the
// payload of a close.
type RegisterReport struct {
	Register  RegisterResponse   `json:"register"`
	TotalIn   decimal.Decimal    `json:"total_in"`
	TotalOut  decimal.Decimal    `json:"total_out"`
	Movements []MovementResponse `json:"movements"`
}

// ReconciliationReport compares the operator-declared closing value against
// the ledger-computed one. Advisory: it records shrinkage/overage, it does
// not block closing.
type ReconciliationReport struct {
	RegisterReport
	ComputedValue decimal.Decimal `json:"computed_value"`
	DeclaredValue decimal.Decimal `json:"declared_value"`
	Difference    decimal.Decimal `json:"difference"`
}
