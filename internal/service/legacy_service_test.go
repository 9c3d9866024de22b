package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/apperror"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/model"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLegacy(t *testing.T, h *harness) {
	t.Helper()
	h.putLegacy(t, repository.LegacyProductsKey,
		map[string]any{"nombre": " Soda ", "categoria": "bebida", "costo": 5, "precio": "8.00", "stock": 12, "stockMinimo": 3},
		map[string]any{"nombre": "Chips", "costo": "Q3,50", "precio": 6, "stock": -4, "stockMinimo": 5e9},
		map[string]any{"nombre": "   ", "costo": 1, "precio": 2},
	)
	h.putLegacy(t, repository.LegacySalesKey,
		map[string]any{"producto": "SODA", "cantidad": 2, "precio": 8, "ganancia": 6, "fecha": "2025-06-01T10:00:00Z"},
		map[string]any{"producto": "Cerveza", "cantidad": 4, "precio": 15, "ganancia": 20, "fecha": "2025-06-02T10:00:00Z"},
		map[string]any{"producto": "", "cantidad": 1, "total": 10, "ganancia": 12},
	)
	h.putLegacy(t, repository.LegacyTablesKey,
		map[string]any{"mesa": 1, "jugadores": 2, "tarifa": 20, "inicio": "2025-06-02T18:30:00Z"},
		map[string]any{"mesa": 2, "jugadores": 4, "tarifa": 20, "activa": false},
		map[string]any{"mesa": 3, "jugadores": 1, "tarifa": "15", "activa": true, "inicio": "basura"},
	)
}

func TestLegacyImportConversion(t *testing.T) {
	h := newHarness(t)
	seedLegacy(t, h)

	st, ws := NewLegacyImporter(repository.NewLegacyRepository(h.legacy), h.clock.Now).Import(h.ctx)
	assert.Empty(t, ws)

	byName := map[string]model.Product{}
	for _, p := range st.Products {
		byName[p.Name] = p
	}
	require.Len(t, st.Products, 4, "soda, chips and two placeholders")

	soda := byName["Soda"]
	assert.Equal(t, "bebida", soda.Category)
	assert.True(t, soda.Cost.Equal(dec("5")))
	assert.True(t, soda.Price.Equal(dec("8")))
	assert.Equal(t, 12, soda.Stock)
	assert.Equal(t, 3, soda.StockMin)

	chips := byName["Chips"]
	assert.Equal(t, model.DefaultCategory, chips.Category)
	assert.True(t, chips.Cost.Equal(dec("3.5")), "cost %s", chips.Cost)
	assert.Equal(t, 0, chips.Stock)
	assert.Equal(t, legacyMaxCount, chips.StockMin)

	beer, ok := byName["Cerveza"]
	require.True(t, ok, "unmatched sale creates a placeholder named after it")
	assert.True(t, beer.Cost.Equal(dec("10")), "15 - 20/4 = 10, got %s", beer.Cost)
	assert.True(t, beer.Price.Equal(dec("15")))

	placeholder, ok := byName[legacyPlaceholderName]
	require.True(t, ok)
	assert.True(t, placeholder.Cost.Equal(dec("0")), "negative derived cost floors at 0")

	require.Len(t, st.Sales, 3)
	for _, s := range st.Sales {
		assert.Equal(t, legacySaleNote, s.Notes)
	}
	// newest first; the undated sale falls back to now
	assert.Equal(t, h.clock.Now(), st.Sales[0].At)
	assert.Equal(t, beer.ID, st.Sales[1].ProductID)
	assert.Equal(t, soda.ID, st.Sales[2].ProductID)
	assert.True(t, st.Sales[2].Profit.Equal(dec("6")))
	assert.True(t, st.Sales[1].Profit.Equal(dec("20")))

	require.Len(t, st.Tables, 2, "finished legacy sessions are dropped")
	for _, tb := range st.Tables {
		assert.True(t, tb.Active)
		assert.Nil(t, tb.EndAt)
	}
	assert.Equal(t, time.Date(2025, 6, 2, 18, 30, 0, 0, time.UTC), st.Tables[0].StartAt.UTC())
	assert.Equal(t, h.clock.Now(), st.Tables[1].StartAt, "unparsable start falls back to now")
}

func TestLegacyImportRunsOnceThroughLoadOrInit(t *testing.T) {
	h := newHarness(t)
	seedLegacy(t, h)

	_, err := h.ledger.LoadOrInit(h.ctx)
	require.NoError(t, err)
	first := h.current(t)
	require.Len(t, first.Sales, 3)

	m := h.meta(t)
	assert.Equal(t, model.SourceLegacyImport, m.StateUpdatedSource)
	assert.NotEmpty(t, m.LegacyImportedAt)

	// Second start: state is non-empty, nothing is re-imported.
	_, err = h.ledger.LoadOrInit(h.ctx)
	require.NoError(t, err)
	second := h.current(t)
	assert.Len(t, second.Products, len(first.Products))
	assert.Len(t, second.Sales, len(first.Sales))

	// Legacy area is left as it was.
	records, err := repository.NewLegacyRepository(h.legacy).Sales(h.ctx)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestLegacyImportSkippedAfterMarker(t *testing.T) {
	h := newHarness(t)
	seedLegacy(t, h)
	require.NoError(t, h.metas.Update(h.ctx, func(m *model.Meta) { m.LegacyImportedAt = "2026-01-01T00:00:00.000Z" }))

	_, err := h.ledger.LoadOrInit(h.ctx)
	require.NoError(t, err)
	assert.True(t, h.current(t).IsEmpty())
	assert.Equal(t, model.SourceSeed, h.meta(t).StateUpdatedSource)
}

func TestLegacyImportEmptyAreaSeeds(t *testing.T) {
	h := newHarness(t)
	_, err := h.ledger.LoadOrInit(h.ctx)
	require.NoError(t, err)
	assert.True(t, h.current(t).IsEmpty())
	assert.Empty(t, h.meta(t).LegacyImportedAt)
}

func TestLegacyImportUnreadableCollectionIsSoft(t *testing.T) {
	h := newHarness(t)
	seedLegacy(t, h)
	importer := NewLegacyImporter(brokenSales{repository.NewLegacyRepository(h.legacy)}, h.clock.Now)

	st, ws := importer.Import(h.ctx)
	require.Len(t, ws, 1)
	assert.Equal(t, "legacy.sales", ws[0].Op)
	assert.Len(t, st.Products, 2)
	assert.Empty(t, st.Sales)
	assert.Len(t, st.Tables, 2)
}

func TestLegacyImportKeepsLossMakingSale(t *testing.T) {
	h := newHarness(t)
	h.putLegacy(t, repository.LegacyProductsKey,
		map[string]any{"nombre": "Soda", "costo": 10, "precio": 10, "stock": 5},
	)
	h.putLegacy(t, repository.LegacySalesKey,
		map[string]any{"producto": "Soda", "cantidad": 2, "precio": 8, "ganancia": -4},
	)

	st, ws := NewLegacyImporter(repository.NewLegacyRepository(h.legacy), h.clock.Now).Import(h.ctx)
	assert.Empty(t, ws)
	require.Len(t, st.Sales, 1)
	sale := st.Sales[0]
	assert.True(t, sale.UnitCost.Equal(dec("10")), "8 - (-4/2) = 10, got %s", sale.UnitCost)
	assert.True(t, sale.Profit.Equal(dec("-4")), "profit %s", sale.Profit)
	assert.True(t, sale.Total.Equal(dec("16")))
}

func TestLegacyImportSkipsNonObjectRecords(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.legacy.Put(ctx, repository.LegacyProductsKey,
		[]byte(`[{"nombre":"Soda","costo":5,"precio":8},"basura",{"nombre":"Chips","costo":3,"precio":6}]`)))

	st, ws := NewLegacyImporter(repository.NewLegacyRepository(h.legacy), h.clock.Now).Import(h.ctx)
	assert.Empty(t, ws)
	require.Len(t, st.Products, 2)
	assert.Equal(t, "Soda", st.Products[0].Name)
	assert.Equal(t, "Chips", st.Products[1].Name)
}

func TestLegacyCoercions(t *testing.T) {
	assert.True(t, legacyMoney("Q 1,234.50").Equal(dec("1234.5")))
	assert.True(t, legacyMoney("abc").IsZero())
	assert.True(t, legacyMoney(-3.0).IsZero())
	assert.True(t, legacyMoney(nil).IsZero())
	assert.True(t, legacyMoney(2.345).Equal(dec("2.35")))
	assert.True(t, legacyMoney("1,500").Equal(dec("1500")))
	assert.True(t, legacyMoney("Q 12,000,000").Equal(dec("12000000")))
	assert.True(t, legacyMoney("Q3,50").Equal(dec("3.5")))
	assert.True(t, legacyMoney("1,5").Equal(dec("1.5")))
	assert.True(t, legacySignedMoney("-4").Equal(dec("-4")))

	assert.Equal(t, 0, legacyCount("-5"))
	assert.Equal(t, 7, legacyCount(7.9))
	assert.Equal(t, legacyMaxCount, legacyCount(1e12))
	assert.Equal(t, 0, legacyCount(map[string]any{}))

	v, ok := legacyBool("false")
	assert.True(t, ok)
	assert.False(t, v)
	_, ok = legacyBool(nil)
	assert.False(t, ok)

	fallback := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.UnixMilli(1_700_000_000_000).UTC(), legacyTime(1.7e12, fallback))
	assert.Equal(t, fallback, legacyTime("", fallback))
}

type brokenSales struct {
	repository.LegacyRepository
}

func (brokenSales) Sales(context.Context) ([]repository.LegacyRecord, error) {
	return nil, apperror.Storage("kv.get ventas", errors.New("corrupt"))
}
