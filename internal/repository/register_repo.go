package repository

import (
	"context"
	"time"

	"github.com/Gilderlan0101/qodo-pdv/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RegisterRepository owns cash registers and their append-only movement
// ledger. Movements are insert-only: there is deliberately no update or
// delete method for them.
type RegisterRepository interface {
	CreateRegister(ctx context.Context, reg *model.CashRegister) error
	FindByTenantOperator(ctx context.Context, tenantID, operatorID uuid.UUID) (*model.CashRegister, error)
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.CashRegister, error)
	FindOpenByOperator(ctx context.Context, tenantID, operatorID uuid.UUID) (*model.CashRegister, error)

	// LockRegisterTx loads the register row FOR UPDATE so concurrent ledger
	// appends on a shared till serialize.
	LockRegisterTx(tx *gorm.DB, tenantID, id uuid.UUID) (*model.CashRegister, error)
	SaveRegisterTx(tx *gorm.DB, reg *model.CashRegister) error
	CreateMovementTx(tx *gorm.DB, m *model.CashMovement) error

	// ListMovements returns a register's movements newest first, bounded to
	// the current session when since is non-zero.
	ListMovements(ctx context.Context, registerID uuid.UUID, since time.Time) ([]model.CashMovement, error)
	// SumMovementsTx computes ΣIN and ΣOUT over the register's movements
	// created at or after since. OPEN and CLOSE markers are excluded.
	SumMovementsTx(tx *gorm.DB, registerID uuid.UUID, since time.Time) (in, out decimal.Decimal, err error)

	DB() *gorm.DB
}

type registerRepo struct{ db *gorm.DB }

func NewRegisterRepository(db *gorm.DB) RegisterRepository { return &registerRepo{db: db} }

func (r *registerRepo) DB() *gorm.DB { return r.db }

func (r *registerRepo) CreateRegister(ctx context.Context, reg *model.CashRegister) error {
	return r.db.WithContext(ctx).Create(reg).Error
}

func (r *registerRepo) FindByTenantOperator(ctx context.Context, tenantID, operatorID uuid.UUID) (*model.CashRegister, error) {
	var reg model.CashRegister
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND operator_id = ?", tenantID, operatorID).
		First(&reg).Error
	return &reg, err
}

func (r *registerRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.CashRegister, error) {
	var reg model.CashRegister
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&reg).Error
	return &reg, err
}

func (r *registerRepo) FindOpenByOperator(ctx context.Context, tenantID, operatorID uuid.UUID) (*model.CashRegister, error) {
	var reg model.CashRegister
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND operator_id = ? AND state = ?", tenantID, operatorID, model.RegisterOpen).
		First(&reg).Error
	return &reg, err
}

func (r *registerRepo) LockRegisterTx(tx *gorm.DB, tenantID, id uuid.UUID) (*model.CashRegister, error) {
	var reg model.CashRegister
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&reg).Error
	return &reg, err
}

func (r *registerRepo) SaveRegisterTx(tx *gorm.DB, reg *model.CashRegister) error {
	return tx.Save(reg).Error
}

func (r *registerRepo) CreateMovementTx(tx *gorm.DB, m *model.CashMovement) error {
	return tx.Create(m).Error
}

func (r *registerRepo) ListMovements(ctx context.Context, registerID uuid.UUID, since time.Time) ([]model.CashMovement, error) {
	q := r.db.WithContext(ctx).Where("register_id = ?", registerID)
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since)
	}
	var movs []model.CashMovement
	err := q.Order("created_at DESC").Find(&movs).Error
	return movs, err
}

func (r *registerRepo) SumMovementsTx(tx *gorm.DB, registerID uuid.UUID, since time.Time) (decimal.Decimal, decimal.Decimal, error) {
	type row struct {
		Type  model.MovementType
		Total decimal.Decimal
	}
	q := tx.Model(&model.CashMovement{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Where("register_id = ? AND type IN ?", registerID, []model.MovementType{model.MovementIn, model.MovementOut}).
		Group("type")
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since)
	}

	var rows []row
	if err := q.Find(&rows).Error; err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	in, out := decimal.Zero, decimal.Zero
	for _, rw := range rows {
		switch rw.Type {
		case model.MovementIn:
			in = rw.Total
		case model.MovementOut:
			out = rw.Total
		}
	}
	return in, out, nil
}
