package repository

import (
	"context"
	"sync"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/kv"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/model"

	"github.com/google/uuid"
)

// MetaRepository owns the metadata record. The device id is generated on the
// first Load and never changes for the lifetime of the store.
type MetaRepository interface {
	Load(ctx context.Context) (*model.Meta, error)
	Save(ctx context.Context, m *model.Meta) error
	Update(ctx context.Context, fn func(m *model.Meta)) error
	DeviceID(ctx context.Context) (string, error)
}

type metaRepo struct {
	store kv.Store
	mu    sync.Mutex
}

func NewMetaRepository(store kv.Store) MetaRepository { return &metaRepo{store: store} }

func (r *metaRepo) Load(ctx context.Context) (*model.Meta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

func (r *metaRepo) load(ctx context.Context) (*model.Meta, error) {
	var m model.Meta
	if _, err := kv.GetJSON(ctx, r.store, kv.KeyMeta, &m); err != nil {
		return nil, err
	}
	if m.DeviceID == "" {
		m.DeviceID = uuid.NewString()
		if err := kv.PutJSON(ctx, r.store, kv.KeyMeta, &m); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

func (r *metaRepo) Save(ctx context.Context, m *model.Meta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return kv.PutJSON(ctx, r.store, kv.KeyMeta, m)
}

// Update is a read-modify-write of the whole record.
func (r *metaRepo) Update(ctx context.Context, fn func(m *model.Meta)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, err := r.load(ctx)
	if err != nil {
		return err
	}
	fn(m)
	return kv.PutJSON(ctx, r.store, kv.KeyMeta, m)
}

func (r *metaRepo) DeviceID(ctx context.Context) (string, error) {
	m, err := r.Load(ctx)
	if err != nil {
		return "", err
	}
	return m.DeviceID, nil
}
