// Package kv is the durable key → document store every other component is
// built on. Keys are opaque strings and documents opaque bytes; each operation
// is atomic for a single key and there are no multi-key transactions.
package kv

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/apperror"
)

// Logical document keys.
const (
	KeyState          = "state"
	KeyMeta           = "meta"
	KeySyncConfig     = "syncConfig"
	KeySnapshotIndex  = "snapshotIndex"
	SnapshotKeyPrefix = "snapshot:"
)

// SnapshotKey returns the key of the snapshot body with the given id.
func SnapshotKey(id string) string { return SnapshotKeyPrefix + id }

// Store is the KV contract. Get reports absence with ok=false, never with an
// error. Every failure is an apperror storage error.
type Store interface {
	Get(ctx context.Context, key string) (doc []byte, ok bool, err error)
	Put(ctx context.Context, key string, doc []byte) error
	Delete(ctx context.Context, key string) error
	ClearAll(ctx context.Context) error
	Close() error
}

// GetJSON loads key and decodes it into v.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, apperror.Storage("kv.get "+key, fmt.Errorf("decode: %w", err))
	}
	return true, nil
}

// PutJSON encodes v and stores it under key.
func PutJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return apperror.Storage("kv.put "+key, fmt.Errorf("encode: %w", err))
	}
	return s.Put(ctx, key, raw)
}
