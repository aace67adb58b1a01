package infra

import (
	"fmt"

	"stockroom/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies any idempotent SQL patches that GORM
// cannot express (partial indexes, check constraints on existing DBs, etc.).
//
// TranslateError is required: duplicate-key detection in the services relies on
// errors.Is(err, gorm.ErrDuplicatedKey).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
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

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations applies the schema via AutoMigrate plus idempotent patches.
// Also used by integration tests against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Supplier{},
		&model.Product{},
		&model.PurchaseOrder{},
		&model.PurchaseItem{},
		&model.StockMovement{},
		&model.User{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL statements that GORM AutoMigrate cannot
// fully handle on its own. Each statement uses IF NOT EXISTS semantics so
// re-running on an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// Partial index for the reorder scan: only rows at or below the
		// threshold are interesting, and most rows never are.
		{"low stock partial index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_products_low_stock') THEN
    CREATE INDEX idx_products_low_stock
        ON products (quantity_in_stock)
        WHERE quantity_in_stock <= reorder_level;
  END IF;
END $$`},
		// Guard rails the receiving transaction depends on. AutoMigrate
		// creates the stock check from the model tag; these cover the
		// purchase_items ledger bounds.
		{"received quantity bounds", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_purchase_items_received_bounds') THEN
    ALTER TABLE purchase_items
      ADD CONSTRAINT chk_purchase_items_received_bounds
      CHECK (received_quantity >= 0 AND received_quantity <= quantity);
  END IF;
END $$`},
		// Index for number-prefix counting during order creation.
		{"order number prefix index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_purchase_orders_number_prefix') THEN
    CREATE INDEX idx_purchase_orders_number_prefix
        ON purchase_orders (order_number text_pattern_ops);
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
