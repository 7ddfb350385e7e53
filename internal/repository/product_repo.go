package repository

import (
	"context"
	"strings"

	"github.com/Gilderlan0101/qodo-pdv/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRepository is the data access contract for the tenant-scoped
// catalog. Services depend on this interface, not on the concrete GORM
// implementation, enabling unit tests with in-memory fakes.
//
// Reserve/Restore are the only write paths for stock. ReserveStockTx is a
// compare-and-decrement: it decrements inside the given transaction only when
// enough stock remains, so two operators racing for the last unit serialize
// at the database row instead of read-then-write.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Product, error)
	// FindByRef resolves an active product by id, code or name within the
	// tenant.
	FindByRef(ctx context.Context, tenantID uuid.UUID, ref string) (*model.Product, error)
	ListLowStock(ctx context.Context, tenantID uuid.UUID) ([]model.Product, error)

	FindByIDTx(tx *gorm.DB, tenantID, id uuid.UUID) (*model.Product, error)
	// ReserveStockTx returns false when the product's stock is below qty;
	// nothing is written in that case.
	ReserveStockTx(tx *gorm.DB, tenantID, id uuid.UUID, qty int) (bool, error)
	RestoreStockTx(tx *gorm.DB, tenantID, id uuid.UUID, qty int) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ? AND active = true", tenantID, id).
		First(&p).Error
	return &p, err
}

func (r *productRepo) FindByRef(ctx context.Context, tenantID uuid.UUID, ref string) (*model.Product, error) {
	ref = strings.TrimSpace(ref)

	if id, err := uuid.Parse(ref); err == nil {
		return r.FindByID(ctx, tenantID, id)
	}

	var p model.Product
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = true", tenantID).
		Where("code = ? OR name ILIKE ?", strings.ToUpper(ref), "%"+ref+"%").
		First(&p).Error
	return &p, err
}

func (r *productRepo) ListLowStock(ctx context.Context, tenantID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = true AND stock <= stock_min", tenantID).
		Order("stock ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) FindByIDTx(tx *gorm.DB, tenantID, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := tx.Where("tenant_id = ? AND id = ?", tenantID, id).First(&p).Error
	return &p, err
}

func (r *productRepo) ReserveStockTx(tx *gorm.DB, tenantID, id uuid.UUID, qty int) (bool, error) {
	res := tx.Model(&model.Product{}).
		Where("tenant_id = ? AND id = ? AND stock >= ?", tenantID, id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *productRepo) RestoreStockTx(tx *gorm.DB, tenantID, id uuid.UUID, qty int) error {
	return tx.Model(&model.Product{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("stock", gorm.Expr("stock + ?", qty)).Error
}
