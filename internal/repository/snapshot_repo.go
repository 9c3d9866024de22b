package repository

import (
	"context"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/kv"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/model"
)

// SnapshotRepository stores snapshot bodies (one key each) and the index.
// The two are written separately; callers must tolerate an index entry whose
// body is gone and a body no index entry points to.
type SnapshotRepository interface {
	Index(ctx context.Context) ([]model.SnapshotEntry, error)
	SaveIndex(ctx context.Context, entries []model.SnapshotEntry) error
	Body(ctx context.Context, id string) (*model.Snapshot, bool, error)
	SaveBody(ctx context.Context, s *model.Snapshot) error
	DeleteBody(ctx context.Context, id string) error
}

type snapshotRepo struct{ store kv.Store }

func NewSnapshotRepository(store kv.Store) SnapshotRepository { return &snapshotRepo{store: store} }

func (r *snapshotRepo) Index(ctx context.Context) ([]model.SnapshotEntry, error) {
	var entries []model.SnapshotEntry
	if _, err := kv.GetJSON(ctx, r.store, kv.KeySnapshotIndex, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []model.SnapshotEntry{}
	}
	return entries, nil
}

func (r *snapshotRepo) SaveIndex(ctx context.Context, entries []model.SnapshotEntry) error {
	return kv.PutJSON(ctx, r.store, kv.KeySnapshotIndex, entries)
}

func (r *snapshotRepo) Body(ctx context.Context, id string) (*model.Snapshot, bool, error) {
	var s model.Snapshot
	ok, err := kv.GetJSON(ctx, r.store, kv.SnapshotKey(id), &s)
	if err != nil || !ok {
		return nil, false, err
	}
	return &s, true, nil
}

func (r *snapshotRepo) SaveBody(ctx context.Context, s *model.Snapshot) error {
	return kv.PutJSON(ctx, r.store, kv.SnapshotKey(s.ID), s)
}

func (r *snapshotRepo) DeleteBody(ctx context.Context, id string) error {
	return r.store.Delete(ctx, kv.SnapshotKey(id))
}
