package infra

import (
	"fmt"

	"github.com/AmericableSA/Sistema-sub001/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (partial unique indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
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

// RunMigrations applies the schema. Also used by integration tests against a
// throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Plan{},
		&model.Client{},
		&model.CashSession{},
		&model.CashMovement{},
		&model.DrawerReport{},
		&model.Transaction{},
		&model.Product{},
		&model.BundleItem{},
		&model.InventoryMove{},
		&model.ServiceOrder{},
		&model.ClientLog{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that GORM AutoMigrate cannot express.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// One open session per user, enforced at the database as well.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_cash_sessions_open_per_user') THEN
		    CREATE UNIQUE INDEX idx_cash_sessions_open_per_user
		        ON cash_sessions (user_id)
		        WHERE status = 'open';
		  END IF;
		END $$`,
		// Partial index backing the shared-session fallback lookup.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_cash_sessions_open_latest') THEN
		    CREATE INDEX idx_cash_sessions_open_latest
		        ON cash_sessions (opened_at DESC)
		        WHERE status = 'open';
		  END IF;
		END $$`,
		// Day-bucketed transaction listing hits this constantly.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_transactions_created_date') THEN
		    CREATE INDEX idx_transactions_created_date
		        ON transactions ((created_at::date));
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("schema patch: %w", err)
		}
	}
	return nil
}
