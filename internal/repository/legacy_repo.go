package repository

import (
	"context"
	"encoding/json"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/kv"

	"github.com/rs/zerolog/log"
)

// Keys of the three collections in the legacy flat storage area.
const (
	LegacyProductsKey = "productos"
	LegacySalesKey    = "ventas"
	LegacyTablesKey   = "mesas"
)

// LegacyRecord is one loosely-typed record as the old app stored it.
type LegacyRecord map[string]any

// LegacyRepository reads the older flat storage area. It has no write path.
type LegacyRepository interface {
	Products(ctx context.Context) ([]LegacyRecord, error)
	Sales(ctx context.Context) ([]LegacyRecord, error)
	Tables(ctx context.Context) ([]LegacyRecord, error)
}

type legacyRepo struct{ store kv.Store }

// NewLegacyRepository reads from store, which should be scoped to the legacy
// area (its own prefix).
func NewLegacyRepository(store kv.Store) LegacyRepository { return &legacyRepo{store: store} }

func (r *legacyRepo) Products(ctx context.Context) ([]LegacyRecord, error) {
	return r.read(ctx, LegacyProductsKey)
}

func (r *legacyRepo) Sales(ctx context.Context) ([]LegacyRecord, error) {
	return r.read(ctx, LegacySalesKey)
}

func (r *legacyRepo) Tables(ctx context.Context) ([]LegacyRecord, error) {
	return r.read(ctx, LegacyTablesKey)
}

// read decodes the collection element by element. Elements that are not
// objects are skipped so one bad entry does not hide the rest.
func (r *legacyRepo) read(ctx context.Context, key string) ([]LegacyRecord, error) {
	var raws []json.RawMessage
	if _, err := kv.GetJSON(ctx, r.store, key, &raws); err != nil {
		return nil, err
	}
	records := make([]LegacyRecord, 0, len(raws))
	skipped := 0
	for _, raw := range raws {
		var rec LegacyRecord
		if err := json.Unmarshal(raw, &rec); err != nil || rec == nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if skipped > 0 {
		log.Warn().Str("key", key).Int("skipped", skipped).Msg("legacy records skipped")
	}
	return records, nil
}
