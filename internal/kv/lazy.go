package kv

import (
	"context"
	"sync"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/apperror"

	"github.com/rs/zerolog/log"
)

// Opener connects to a backend.
type Opener func(ctx context.Context) (Store, error)

// Lazy opens its backend on first use and reuses that handle for the rest of
// the process. A failed open is not cached; the next call retries.
type Lazy struct {
	mu    sync.Mutex
	open  Opener
	store Store
}

func NewLazy(open Opener) *Lazy {
	return &Lazy{open: open}
}

// Store returns the shared handle, opening it if needed.
func (l *Lazy) Store(ctx context.Context) (Store, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.store != nil {
		return l.store, nil
	}
	s, err := l.open(ctx)
	if err != nil {
		return nil, apperror.Storage("kv.open", err)
	}
	log.Debug().Msg("kv: store opened")
	l.store = s
	return s, nil
}

func (l *Lazy) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s, err := l.Store(ctx)
	if err != nil {
		return nil, false, err
	}
	return s.Get(ctx, key)
}

func (l *Lazy) Put(ctx context.Context, key string, doc []byte) error {
	s, err := l.Store(ctx)
	if err != nil {
		return err
	}
	return s.Put(ctx, key, doc)
}

func (l *Lazy) Delete(ctx context.Context, key string) error {
	s, err := l.Store(ctx)
	if err != nil {
		return err
	}
	return s.Delete(ctx, key)
}

func (l *Lazy) ClearAll(ctx context.Context) error {
	s, err := l.Store(ctx)
	if err != nil {
		return err
	}
	return s.ClearAll(ctx)
}

// Close releases the handle if one was opened.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.store == nil {
		return nil
	}
	err := l.store.Close()
	l.store = nil
	return err
}
