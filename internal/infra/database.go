package infra

import (
	"fmt"

	"github.com/Gilderlan0101/qodo-pdv/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that
// GORM cannot express (partial unique index, sequence creation).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// Duplicate-key violations surface as gorm.ErrDuplicatedKey so the
		// checkout retry path can classify them.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := db.AutoMigrate(
		&model.Product{},
		&model.CashRegister{},
		&model.CashMovement{},
		&model.CartItem{},
		&model.Sale{},
		&model.SaleItem{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	if err := applySchemaPatches(db); err != nil {
		return nil, fmt.Errorf("schema patches: %w", err)
	}

	return db, nil
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot handle.
// Safe to re-run on an already-patched database.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// One OPEN register per (tenant, operator), enforced at the storage
		// level. The service checks first; this index closes the race.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_registers_one_open') THEN
		    CREATE UNIQUE INDEX idx_registers_one_open
		        ON cash_registers (tenant_id, operator_id)
		        WHERE state = 'OPEN';
		  END IF;
		END $$`,
		// Ticket sequence feeding the V%06d sale codes.
		`CREATE SEQUENCE IF NOT EXISTS sales_ticket_seq START 1`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
