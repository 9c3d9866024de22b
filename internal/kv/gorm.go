package kv

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/apperror"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Document is one row of the kv_documents table.
type Document struct {
	Key       string `gorm:"primaryKey;type:text"`
	Doc       []byte `gorm:"type:bytea;not null"`
	UpdatedAt time.Time
}

func (Document) TableName() string { return "kv_documents" }

// CreateTableSQL is applied by infra.NewDatabase; it is idempotent.
const CreateTableSQL = `CREATE TABLE IF NOT EXISTS kv_documents (
  key        TEXT PRIMARY KEY,
  doc        BYTEA NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// GormStore persists documents in a single Postgres table, one row per key.
// Keys are stored under a namespace prefix so several stores can share the
// table and ClearAll only touches this store's rows.
type GormStore struct {
	db     *gorm.DB
	prefix string
}

func NewGormStore(db *gorm.DB, prefix string) *GormStore {
	return &GormStore{db: db, prefix: prefix}
}

func (g *GormStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var d Document
	err := g.db.WithContext(ctx).Where("key = ?", g.prefix+key).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, apperror.Storage("kv.get "+key, err)
	}
	return d.Doc, true, nil
}

func (g *GormStore) Put(ctx context.Context, key string, doc []byte) error {
	d := Document{Key: g.prefix + key, Doc: doc, UpdatedAt: time.Now()}
	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"doc", "updated_at"}),
	}).Create(&d).Error
	if err != nil {
		return apperror.Storage("kv.put "+key, err)
	}
	return nil
}

func (g *GormStore) Delete(ctx context.Context, key string) error {
	if err := g.db.WithContext(ctx).Where("key = ?", g.prefix+key).Delete(&Document{}).Error; err != nil {
		return apperror.Storage("kv.delete "+key, err)
	}
	return nil
}

func (g *GormStore) ClearAll(ctx context.Context) error {
	err := g.db.WithContext(ctx).Where("key LIKE ?", escapeLike(g.prefix)+"%").Delete(&Document{}).Error
	if err != nil {
		return apperror.Storage("kv.clear", err)
	}
	return nil
}

func (g *GormStore) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}
