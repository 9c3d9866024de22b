package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/apperror"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/metrics"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/model"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/repository"

	"github.com/rs/zerolog/log"
)

// ErrNotLoaded is returned by every LedgerService operation that needs the
// live state before LoadOrInit has succeeded.
var ErrNotLoaded = errors.New("service: ledger not loaded")

// LedgerService holds the one live Domain State. Every change goes through
// Apply or Replace, which clone, persist and only then swap the live state.
type LedgerService interface {
	LoadOrInit(ctx context.Context) ([]apperror.Warning, error)
	// Current returns a deep copy of the live state.
	Current() (*model.State, error)
	Apply(ctx context.Context, cmd Command) ([]apperror.Warning, error)
	Replace(ctx context.Context, st *model.State, opts repository.SaveOptions) ([]apperror.Warning, error)
	// Flush re-writes the live state without touching its last-write
	// metadata. Used on shutdown.
	Flush(ctx context.Context) error
	Meta(ctx context.Context) (*model.Meta, error)
}

type ledgerService struct {
	states repository.StateRepository
	metas  repository.MetaRepository
	legacy LegacyImporter
	now    func() time.Time

	mu   sync.Mutex
	live *model.State
}

// NewLedgerService wires the state holder. legacy may be nil when no legacy
// area is configured.
func NewLedgerService(
	states repository.StateRepository,
	metas repository.MetaRepository,
	legacy LegacyImporter,
	now func() time.Time,
) LedgerService {
	if now == nil {
		now = time.Now
	}
	return &ledgerService{states: states, metas: metas, legacy: legacy, now: now}
}

// ── LoadOrInit ────────────────────────────────────────────────────────────────
//   1. Load the current state; a non-empty state is installed as is
//   2. Empty or absent: run the legacy importer once (tracked in meta)
//   3. Still nothing: seed defaults and save

func (s *ledgerService) LoadOrInit(ctx context.Context) ([]apperror.Warning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok, err := s.states.Load(ctx)
	if err != nil {
		return nil, err
	}
	if ok && !st.IsEmpty() {
		s.live = st
		return nil, nil
	}

	var warnings []apperror.Warning
	if s.legacy != nil {
		imported, ws, err := s.importLegacy(ctx)
		warnings = append(warnings, ws...)
		if err != nil {
			return warnings, err
		}
		if imported {
			return warnings, nil
		}
	}

	if ok {
		s.live = st
		return warnings, nil
	}
	seed := model.NewState()
	ws, err := s.save(ctx, seed, repository.SaveOptions{Source: model.SourceSeed})
	warnings = append(warnings, ws...)
	if err != nil {
		return warnings, err
	}
	s.live = seed
	log.Info().Msg("ledger seeded with defaults")
	return warnings, nil
}

func (s *ledgerService) importLegacy(ctx context.Context) (bool, []apperror.Warning, error) {
	meta, err := s.metas.Load(ctx)
	if err != nil {
		return false, apperror.Collect(nil, apperror.Soft("ledger.legacy.meta", err)), nil
	}
	if meta.LegacyImportedAt != "" {
		return false, nil, nil
	}

	st, warnings := s.legacy.Import(ctx)
	if st == nil || st.IsEmpty() {
		return false, warnings, nil
	}
	ws, err := s.save(ctx, st, repository.SaveOptions{Source: model.SourceLegacyImport})
	warnings = append(warnings, ws...)
	if err != nil {
		return false, warnings, err
	}
	s.live = st

	stamp := model.FormatTimestamp(s.now())
	err = s.metas.Update(ctx, func(m *model.Meta) { m.LegacyImportedAt = stamp })
	warnings = apperror.Collect(warnings, apperror.Soft("ledger.legacy.mark", err))
	log.Info().
		Int("products", len(st.Products)).
		Int("sales", len(st.Sales)).
		Int("tables", len(st.Tables)).
		Msg("legacy data imported")
	return true, warnings, nil
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *ledgerService) Current() (*model.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live == nil {
		return nil, ErrNotLoaded
	}
	return s.live.Clone(), nil
}

func (s *ledgerService) Meta(ctx context.Context) (*model.Meta, error) {
	return s.metas.Load(ctx)
}

// ── Writes ────────────────────────────────────────────────────────────────────

func (s *ledgerService) Apply(ctx context.Context, cmd Command) (ws []apperror.Warning, err error) {
	defer func() { metrics.RecordCommand(cmd.Name(), err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live == nil {
		return nil, ErrNotLoaded
	}

	next := s.live.Clone()
	if err := cmd.Apply(next, s.now()); err != nil {
		return nil, err
	}
	ws, err = s.save(ctx, next, repository.SaveOptions{})
	if err != nil {
		return ws, err
	}
	s.live = next
	return ws, nil
}

func (s *ledgerService) Replace(ctx context.Context, st *model.State, opts repository.SaveOptions) ([]apperror.Warning, error) {
	if st == nil {
		return nil, apperror.Invalid("ledger.replace", "estado vacío")
	}
	next := st.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	ws, err := s.save(ctx, next, opts)
	if err != nil {
		return ws, err
	}
	s.live = next
	return ws, nil
}

func (s *ledgerService) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live == nil {
		return nil
	}

	var opts repository.SaveOptions
	if meta, err := s.metas.Load(ctx); err == nil {
		opts = repository.SaveOptions{
			UpdatedAt:     meta.StateUpdatedAt,
			UpdatedBy:     meta.StateUpdatedBy,
			Source:        meta.StateUpdatedSource,
			KeepTimestamp: true,
		}
	} else {
		apperror.Soft("ledger.flush.meta", err)
	}
	_, err := s.save(ctx, s.live, opts)
	return err
}

func (s *ledgerService) save(ctx context.Context, st *model.State, opts repository.SaveOptions) ([]apperror.Warning, error) {
	source := opts.Source
	if source == "" {
		source = model.SourceLocal
	}
	defer metrics.TrackSave(source)(time.Now())

	ws, err := s.states.Save(ctx, st, opts)
	metrics.SoftFailuresTotal.Add(float64(len(ws)))
	return ws, err
}
