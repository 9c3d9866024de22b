package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/apperror"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/metrics"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/model"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/repository"

	"github.com/rs/zerolog/log"
)

// DefaultMaxSnapshots is the retention used when none is configured.
const DefaultMaxSnapshots = 20

// SnapshotService creates, lists and restores point-in-time copies of the
// state. It never touches the live state: Create stores a clone and Restore
// hands back a clone.
type SnapshotService interface {
	Create(ctx context.Context, st *model.State, reason string) (model.SnapshotEntry, []apperror.Warning, error)
	// EnsureDaily takes at most one "auto-diario" snapshot per local calendar
	// day, and none of an empty state. created is false when it was a no-op.
	EnsureDaily(ctx context.Context, st *model.State) (entry model.SnapshotEntry, created bool, ws []apperror.Warning, err error)
	List(ctx context.Context) ([]model.SnapshotEntry, error)
	Get(ctx context.Context, id string) (*model.Snapshot, error)
	Restore(ctx context.Context, id string) (*model.State, error)
}

type snapshotService struct {
	repo  repository.SnapshotRepository
	metas repository.MetaRepository
	max   int
	now   func() time.Time
	ids   *SnapshotIDs

	// mu serializes the index read-modify-write; dailyMu keeps two daily
	// checks from both deciding to create.
	mu      sync.Mutex
	dailyMu sync.Mutex
}

func NewSnapshotService(
	repo repository.SnapshotRepository,
	metas repository.MetaRepository,
	maxSnapshots int,
	now func() time.Time,
) SnapshotService {
	if maxSnapshots <= 0 {
		maxSnapshots = DefaultMaxSnapshots
	}
	if now == nil {
		now = time.Now
	}
	return &snapshotService{repo: repo, metas: metas, max: maxSnapshots, now: now, ids: &SnapshotIDs{}}
}

// ── Create ────────────────────────────────────────────────────────────────────
//   1. Write the body under its own key
//   2. Prepend to the index and trim to the retention limit
//   3. Delete trimmed bodies (best-effort)

func (s *snapshotService) Create(ctx context.Context, st *model.State, reason string) (model.SnapshotEntry, []apperror.Warning, error) {
	if st == nil {
		return model.SnapshotEntry{}, nil, apperror.Invalid("snapshot.create", "estado vacío")
	}
	if reason == "" {
		reason = model.ReasonManual
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	snap := &model.Snapshot{ID: s.ids.Next(now), At: now, Reason: reason, State: st.Clone()}
	if err := s.repo.SaveBody(ctx, snap); err != nil {
		return model.SnapshotEntry{}, nil, err
	}

	index, err := s.repo.Index(ctx)
	if err != nil {
		return model.SnapshotEntry{}, nil, err
	}
	entries := make([]model.SnapshotEntry, 0, len(index)+1)
	entries = append(entries, snap.Entry())
	entries = append(entries, index...)

	var trimmed []model.SnapshotEntry
	if len(entries) > s.max {
		trimmed = entries[s.max:]
		entries = entries[:s.max]
	}
	if err := s.repo.SaveIndex(ctx, entries); err != nil {
		return model.SnapshotEntry{}, nil, err
	}

	var warnings []apperror.Warning
	for _, e := range trimmed {
		err := s.repo.DeleteBody(ctx, e.ID)
		warnings = apperror.Collect(warnings, apperror.Soft("snapshot.trim", err))
	}

	metrics.SnapshotsCreatedTotal.WithLabelValues(reason).Inc()
	log.Info().Str("snapshot_id", snap.ID).Str("reason", reason).Int("trimmed", len(trimmed)).Msg("snapshot created")
	return snap.Entry(), warnings, nil
}

func (s *snapshotService) EnsureDaily(ctx context.Context, st *model.State) (model.SnapshotEntry, bool, []apperror.Warning, error) {
	if st.IsEmpty() {
		return model.SnapshotEntry{}, false, nil, nil
	}

	s.dailyMu.Lock()
	defer s.dailyMu.Unlock()

	meta, err := s.metas.Load(ctx)
	if err != nil {
		return model.SnapshotEntry{}, false, nil, err
	}
	today := model.LocalDay(s.now())
	if meta.LastSnapshotDay == today {
		return model.SnapshotEntry{}, false, nil, nil
	}

	entry, warnings, err := s.Create(ctx, st, model.ReasonDaily)
	if err != nil {
		return model.SnapshotEntry{}, false, warnings, err
	}
	err = s.metas.Update(ctx, func(m *model.Meta) { m.LastSnapshotDay = today })
	warnings = apperror.Collect(warnings, apperror.Soft("snapshot.daily.mark", err))
	return entry, true, warnings, nil
}

// ── Read ──────────────────────────────────────────────────────────────────────

// List returns the index exactly as persisted, newest first.
func (s *snapshotService) List(ctx context.Context) ([]model.SnapshotEntry, error) {
	return s.repo.Index(ctx)
}

// Get loads a snapshot body. Both the index entry and the body must exist.
func (s *snapshotService) Get(ctx context.Context, id string) (*model.Snapshot, error) {
	index, err := s.repo.Index(ctx)
	if err != nil {
		return nil, err
	}
	listed := false
	for _, e := range index {
		if e.ID == id {
			listed = true
			break
		}
	}
	if !listed {
		return nil, apperror.NotFound("snapshot.get", "snapshot "+id)
	}

	snap, ok, err := s.repo.Body(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok || snap.State == nil {
		return nil, apperror.NotFound("snapshot.get", "snapshot "+id)
	}
	return snap, nil
}

// Restore returns a copy of the snapshot's state. The snapshot stays listed;
// installing the copy is the caller's job.
func (s *snapshotService) Restore(ctx context.Context, id string) (*model.State, error) {
	snap, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return snap.State.Clone(), nil
}

// ── Ids ───────────────────────────────────────────────────────────────────────

// SnapshotIDs generates "<unix millis, 13 digits>-<seq, 3 digits>" ids that
// are unique and sort lexicographically in creation order within a process,
// even when several are requested in the same millisecond or the clock steps
// back.
type SnapshotIDs struct {
	mu   sync.Mutex
	last int64
	seq  int
}

const maxIDSeq = 999

func (g *SnapshotIDs) Next(now time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := now.UnixMilli()
	switch {
	case ms > g.last:
		g.last, g.seq = ms, 0
	case g.seq < maxIDSeq:
		g.seq++
	default:
		g.last++
		g.seq = 0
	}
	return fmt.Sprintf("%013d-%03d", g.last, g.seq)
}
