package repository

import (
	"context"
	"time"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/apperror"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/kv"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/model"
)

// SaveOptions override the metadata written alongside a state save. Empty
// fields take their defaults: now, the local device id, "local".
// KeepTimestamp writes UpdatedAt and UpdatedBy as given, even when empty.
type SaveOptions struct {
	UpdatedAt     string
	UpdatedBy     string
	Source        string
	KeepTimestamp bool
}

// StateRepository owns the persisted current-state document.
type StateRepository interface {
	// Load returns ok=false when no state has ever been saved.
	Load(ctx context.Context) (st *model.State, ok bool, err error)
	// Save writes the state, then updates the metadata record. Only the state
	// write can fail the call; metadata failures come back as warnings.
	Save(ctx context.Context, st *model.State, opts SaveOptions) ([]apperror.Warning, error)
}

type stateRepo struct {
	store kv.Store
	meta  MetaRepository
	now   func() time.Time
}

func NewStateRepository(store kv.Store, meta MetaRepository, now func() time.Time) StateRepository {
	if now == nil {
		now = time.Now
	}
	return &stateRepo{store: store, meta: meta, now: now}
}

func (r *stateRepo) Load(ctx context.Context) (*model.State, bool, error) {
	raw, ok, err := r.store.Get(ctx, kv.KeyState)
	if err != nil || !ok {
		return nil, false, err
	}
	st, err := model.DecodeState(raw)
	if err != nil {
		return nil, false, apperror.Shape("state.load", err.Error())
	}
	return st, true, nil
}

func (r *stateRepo) Save(ctx context.Context, st *model.State, opts SaveOptions) ([]apperror.Warning, error) {
	if st.Version == 0 {
		st.Version = model.SchemaVersion
	}
	if err := kv.PutJSON(ctx, r.store, kv.KeyState, st); err != nil {
		return nil, err
	}

	updatedAt := opts.UpdatedAt
	if updatedAt == "" && !opts.KeepTimestamp {
		updatedAt = model.FormatTimestamp(r.now())
	}
	source := opts.Source
	if source == "" {
		source = model.SourceLocal
	}
	err := r.meta.Update(ctx, func(m *model.Meta) {
		m.StateUpdatedAt = updatedAt
		m.StateUpdatedBy = opts.UpdatedBy
		if m.StateUpdatedBy == "" && !opts.KeepTimestamp {
			m.StateUpdatedBy = m.DeviceID
		}
		m.StateUpdatedSource = source
	})
	return apperror.Collect(nil, apperror.Soft("state.save.meta", err)), nil
}
