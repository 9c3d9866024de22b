package infra

import (
	"context"
	"fmt"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/kv"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and applies the
// idempotent schema patches the document store needs.
func NewDatabase(ctx context.Context, dsn string) (*gorm.DB, error) {
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
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	if err := RunMigrations(db.WithContext(ctx)); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("schema patches: %w", err)
	}

	return db, nil
}

// RunMigrations applies the schema patches. Every statement is guarded so
// re-running on an already-patched database is a no-op.
func RunMigrations(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"create kv_documents", kv.CreateTableSQL},
		// Prefix scans in ClearAll use LIKE 'prefix%'.
		{"index kv_documents prefix", `CREATE INDEX IF NOT EXISTS idx_kv_documents_key_prefix
  ON kv_documents (key text_pattern_ops)`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
