package repository

import (
	"context"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/kv"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/model"
)

type SyncConfigRepository interface {
	Get(ctx context.Context) (cfg model.SyncConfig, ok bool, err error)
	Set(ctx context.Context, cfg model.SyncConfig) error
}

type syncConfigRepo struct{ store kv.Store }

func NewSyncConfigRepository(store kv.Store) SyncConfigRepository {
	return &syncConfigRepo{store: store}
}

func (r *syncConfigRepo) Get(ctx context.Context) (model.SyncConfig, bool, error) {
	var cfg model.SyncConfig
	ok, err := kv.GetJSON(ctx, r.store, kv.KeySyncConfig, &cfg)
	return cfg, ok, err
}

func (r *syncConfigRepo) Set(ctx context.Context, cfg model.SyncConfig) error {
	return kv.PutJSON(ctx, r.store, kv.KeySyncConfig, cfg)
}
