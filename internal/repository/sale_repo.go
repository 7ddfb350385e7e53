package repository

import (
	"context"

	"github.com/Gilderlan0101/qodo-pdv/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SaleRepository persists finalized sales. Sales are created only inside the
// checkout transaction; amend/void go through the dedicated Tx methods so
// their stock and ledger compensation commit atomically with them.
type SaleRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Sale, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.Sale, error)

	CreateTx(tx *gorm.DB, s *model.Sale) error
	SaveTx(tx *gorm.DB, s *model.Sale) error
	SaveItemTx(tx *gorm.DB, item *model.SaleItem) error
	FindByIDTx(tx *gorm.DB, tenantID, id uuid.UUID) (*model.Sale, error)

	// NextTicketNumberTx draws from the sales ticket sequence. A (0, nil)
	// return means no sequence is available and the caller should fall back
	// to a random sale code.
	NextTicketNumberTx(tx *gorm.DB) (int, error)

	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&s).Error
	return &s, err
}

func (r *saleRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).Preload("Items").
		Where("tenant_id = ? AND status <> ?", tenantID, model.SaleVoided).
		Order("created_at DESC").
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Create(s).Error
}

func (r *saleRepo) SaveTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Save(s).Error
}

func (r *saleRepo) SaveItemTx(tx *gorm.DB, item *model.SaleItem) error {
	return tx.Save(item).Error
}

func (r *saleRepo) FindByIDTx(tx *gorm.DB, tenantID, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := tx.Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&s).Error
	return &s, err
}

func (r *saleRepo) NextTicketNumberTx(tx *gorm.DB) (int, error) {
	var num int
	err := tx.Raw("SELECT nextval('sales_ticket_seq')").Scan(&num).Error
	return num, err
}
