package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/apperror"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/kv"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/model"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// testClock is a settable clock shared by every service in a harness.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 10, 17, 15, 4, 5, 0, time.Local)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// flakyStore fails Put for keys listed in failPut.
type flakyStore struct {
	*kv.MemoryStore
	mu      sync.Mutex
	failPut map[string]bool
}

func (f *flakyStore) Put(ctx context.Context, key string, doc []byte) error {
	f.mu.Lock()
	fail := f.failPut[key]
	f.mu.Unlock()
	if fail {
		return apperror.Storage("kv.put "+key, errors.New("disk full"))
	}
	return f.MemoryStore.Put(ctx, key, doc)
}

func (f *flakyStore) FailPut(key string, fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failPut[key] = fail
}

type harness struct {
	ctx       context.Context
	clock     *testClock
	store     *flakyStore
	legacy    *kv.MemoryStore
	metas     repository.MetaRepository
	states    repository.StateRepository
	ledger    LedgerService
	snapshots SnapshotService
	backups   BackupService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		ctx:    context.Background(),
		clock:  newTestClock(),
		store:  &flakyStore{MemoryStore: kv.NewMemoryStore(), failPut: map[string]bool{}},
		legacy: kv.NewMemoryStore(),
	}
	h.metas = repository.NewMetaRepository(h.store)
	h.states = repository.NewStateRepository(h.store, h.metas, h.clock.Now)
	importer := NewLegacyImporter(repository.NewLegacyRepository(h.legacy), h.clock.Now)
	h.ledger = NewLedgerService(h.states, h.metas, importer, h.clock.Now)
	h.snapshots = NewSnapshotService(repository.NewSnapshotRepository(h.store), h.metas, DefaultMaxSnapshots, h.clock.Now)
	h.backups = NewBackupService(h.ledger, h.snapshots)
	return h
}

// loaded returns a harness whose ledger has been initialized.
func loaded(t *testing.T) *harness {
	t.Helper()
	h := newHarness(t)
	_, err := h.ledger.LoadOrInit(h.ctx)
	require.NoError(t, err)
	return h
}

func (h *harness) apply(t *testing.T, cmd Command) {
	t.Helper()
	_, err := h.ledger.Apply(h.ctx, cmd)
	require.NoError(t, err)
}

func (h *harness) current(t *testing.T) *model.State {
	t.Helper()
	st, err := h.ledger.Current()
	require.NoError(t, err)
	return st
}

func (h *harness) meta(t *testing.T) *model.Meta {
	t.Helper()
	m, err := h.metas.Load(h.ctx)
	require.NoError(t, err)
	return m
}

func (h *harness) putLegacy(t *testing.T, key string, records ...map[string]any) {
	t.Helper()
	require.NoError(t, kv.PutJSON(h.ctx, h.legacy, key, records))
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func soda() *AddProduct {
	return &AddProduct{ID: "soda", ProductFields: ProductFields{
		Name: "Soda", Category: "bebida", Cost: dec("5"), Price: dec("8"), Stock: 10, StockMin: 2,
	}}
}
