package infra

import (
	"context"
	"fmt"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/config"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/kv"
)

// Stores holds the two document namespaces the server works with: the main
// store and the read-only legacy store. Both open lazily on first use.
type Stores struct {
	Main   *kv.Lazy
	Legacy *kv.Lazy
}

// NewStores builds the lazy stores for the configured driver. Nothing is
// dialed until the first operation.
func NewStores(cfg *config.Config) (*Stores, error) {
	mainOpen, err := Opener(cfg, cfg.StorePrefix)
	if err != nil {
		return nil, err
	}
	legacyOpen, err := Opener(cfg, cfg.LegacyPrefix)
	if err != nil {
		return nil, err
	}
	return &Stores{Main: kv.NewLazy(mainOpen), Legacy: kv.NewLazy(legacyOpen)}, nil
}

// Close releases both backends.
func (s *Stores) Close() error {
	errMain := s.Main.Close()
	errLegacy := s.Legacy.Close()
	if errMain != nil {
		return errMain
	}
	return errLegacy
}

// Opener returns a kv.Opener for the configured driver under prefix. The
// memory driver shares one map per prefix for the whole process.
func Opener(cfg *config.Config, prefix string) (kv.Opener, error) {
	switch cfg.StoreDriver {
	case config.DriverRedis:
		url := cfg.RedisURL
		return func(ctx context.Context) (kv.Store, error) {
			rdb, err := NewRedis(ctx, url)
			if err != nil {
				return nil, fmt.Errorf("redis: %w", err)
			}
			return kv.NewRedisStore(rdb, prefix), nil
		}, nil
	case config.DriverPostgres:
		dsn := cfg.DatabaseURL
		return func(ctx context.Context) (kv.Store, error) {
			db, err := NewDatabase(ctx, dsn)
			if err != nil {
				return nil, fmt.Errorf("postgres: %w", err)
			}
			return kv.NewGormStore(db, prefix), nil
		}, nil
	case config.DriverMemory:
		mem := kv.NewMemoryStore()
		return func(context.Context) (kv.Store, error) { return mem, nil }, nil
	default:
		return nil, fmt.Errorf("store driver %q no soportado", cfg.StoreDriver)
	}
}
