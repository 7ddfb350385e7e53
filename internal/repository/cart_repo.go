package repository

import (
	"context"

	"github.com/Gilderlan0101/qodo-pdv/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartRepository stores staged cart lines, keyed by the register they were
// added under. One line per (register, product) — additive merges happen in
// the service layer.
type CartRepository interface {
	ListLines(ctx context.Context, registerID uuid.UUID) ([]model.CartItem, error)

	FindLineTx(tx *gorm.DB, registerID, productID uuid.UUID) (*model.CartItem, error)
	CreateLineTx(tx *gorm.DB, line *model.CartItem) error
	SaveLineTx(tx *gorm.DB, line *model.CartItem) error
	DeleteLineTx(tx *gorm.DB, id uuid.UUID) error
	ListLinesTx(tx *gorm.DB, registerID uuid.UUID) ([]model.CartItem, error)
	// DeleteAllTx drops every line for the register. Stock restoration, when
	// required, is the caller's responsibility.
	DeleteAllTx(tx *gorm.DB, registerID uuid.UUID) error

	DB() *gorm.DB
}

type cartRepo struct{ db *gorm.DB }

func NewCartRepository(db *gorm.DB) CartRepository { return &cartRepo{db: db} }

func (r *cartRepo) DB() *gorm.DB { return r.db }

func (r *cartRepo) ListLines(ctx context.Context, registerID uuid.UUID) ([]model.CartItem, error) {
	var lines []model.CartItem
	err := r.db.WithContext(ctx).
		Where("register_id = ?", registerID).
		Order("created_at ASC").
		Find(&lines).Error
	return lines, err
}

func (r *cartRepo) FindLineTx(tx *gorm.DB, registerID, productID uuid.UUID) (*model.CartItem, error) {
	var line model.CartItem
	err := tx.Where("register_id = ? AND product_id = ?", registerID, productID).First(&line).Error
	return &line, err
}

func (r *cartRepo) CreateLineTx(tx *gorm.DB, line *model.CartItem) error {
	return tx.Create(line).Error
}

func (r *cartRepo) SaveLineTx(tx *gorm.DB, line *model.CartItem) error {
	return tx.Save(line).Error
}

func (r *cartRepo) DeleteLineTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.CartItem{}, "id = ?", id).Error
}

func (r *cartRepo) ListLinesTx(tx *gorm.DB, registerID uuid.UUID) ([]model.CartItem, error) {
	var lines []model.CartItem
	err := tx.Where("register_id = ?", registerID).Order("created_at ASC").Find(&lines).Error
	return lines, err
}

func (r *cartRepo) DeleteAllTx(tx *gorm.DB, registerID uuid.UUID) error {
	return tx.Delete(&model.CartItem{}, "register_id = ?", registerID).Error
}
