package service

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/apperror"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/infra"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/metrics"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/model"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/repository"

	"github.com/rs/zerolog/log"
)

// Sync directions accepted by RunSync.
const (
	DirectionPush = "push"
	DirectionPull = "pull"
	DirectionTest = "test"
)

// Outcomes reported in SyncResult.Status.
const (
	SyncOK        = "ok"
	SyncCancelled = "cancelled"
)

// Auto-sync status strings. Startup auto-sync never fails; it reports one of
// these (or "error: …").
const (
	AutoSyncDisabled     = "auto-sync desactivado"
	AutoSyncNoURL        = "sin URL configurada"
	AutoSyncOffline      = "sin conexión"
	AutoSyncNoRemote     = "sin datos remotos"
	AutoSyncInvalid      = "documento remoto inválido"
	AutoSyncLocalCurrent = "datos locales al día"
	AutoSyncPulled       = "actualizado desde remoto"
)

// Conflict describes a confirmation-gated overwrite: the side about to be
// overwritten holds the strictly newer write.
type Conflict struct {
	Direction       string `json:"direction"`
	LocalUpdatedAt  string `json:"localUpdatedAt"`
	LocalUpdatedBy  string `json:"localUpdatedBy"`
	RemoteUpdatedAt string `json:"remoteUpdatedAt"`
	RemoteUpdatedBy string `json:"remoteUpdatedBy"`
}

// Confirm is asked before a conflicting overwrite. A nil Confirm declines.
type Confirm func(Conflict) bool

// AlwaysConfirm accepts every overwrite.
func AlwaysConfirm(Conflict) bool { return true }

type SyncResult struct {
	Direction string             `json:"direction"`
	Status    string             `json:"status"`
	UpdatedAt string             `json:"updatedAt,omitempty"`
	Conflict  *Conflict          `json:"conflict,omitempty"`
	Warnings  []apperror.Warning `json:"warnings,omitempty"`
}

type SyncService interface {
	GetConfig(ctx context.Context) (model.SyncConfig, error)
	SetConfig(ctx context.Context, cfg model.SyncConfig) (model.SyncConfig, error)
	TestConnection(ctx context.Context, cfg model.SyncConfig) error
	Push(ctx context.Context, cfg model.SyncConfig, confirm Confirm) (SyncResult, error)
	Pull(ctx context.Context, cfg model.SyncConfig, confirm Confirm) (SyncResult, error)
	// RunSync loads the stored config and dispatches on direction.
	RunSync(ctx context.Context, direction string, confirm Confirm) (SyncResult, error)
	AutoSyncOnStartup(ctx context.Context) string
}

type syncService struct {
	ledger  LedgerService
	metas   repository.MetaRepository
	configs repository.SyncConfigRepository
	remote  infra.RemoteClient
	seed    model.SyncConfig
	now     func() time.Time

	mu sync.Mutex
}

// NewSyncService wires the sync client. seed is returned by GetConfig until a
// config has been stored.
func NewSyncService(
	ledger LedgerService,
	metas repository.MetaRepository,
	configs repository.SyncConfigRepository,
	remote infra.RemoteClient,
	seed model.SyncConfig,
	now func() time.Time,
) SyncService {
	if now == nil {
		now = time.Now
	}
	return &syncService{ledger: ledger, metas: metas, configs: configs, remote: remote, seed: seed, now: now}
}

// ── Config ────────────────────────────────────────────────────────────────────

func (s *syncService) GetConfig(ctx context.Context) (model.SyncConfig, error) {
	cfg, ok, err := s.configs.Get(ctx)
	if err != nil {
		return model.SyncConfig{}, err
	}
	if !ok {
		return s.seed, nil
	}
	return cfg, nil
}

func (s *syncService) SetConfig(ctx context.Context, cfg model.SyncConfig) (model.SyncConfig, error) {
	cfg.URL = strings.TrimSpace(cfg.URL)
	cfg.User = strings.TrimSpace(cfg.User)
	if cfg.URL != "" {
		u, err := url.ParseRequestURI(cfg.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return model.SyncConfig{}, apperror.Invalid("sync.config", "la URL debe ser http(s) absoluta")
		}
	}
	if err := s.configs.Set(ctx, cfg); err != nil {
		return model.SyncConfig{}, err
	}
	return cfg, nil
}

func requireURL(op string, cfg model.SyncConfig) error {
	if !cfg.Configured() {
		return apperror.Invalid(op, "URL de sincronización no configurada")
	}
	return nil
}

// ── Operations ────────────────────────────────────────────────────────────────

// TestConnection fetches and discards the remote document.
func (s *syncService) TestConnection(ctx context.Context, cfg model.SyncConfig) error {
	if err := requireURL("sync.test", cfg); err != nil {
		return err
	}
	_, _, err := s.remote.Fetch(ctx, cfg)
	return err
}

// ── Push ──────────────────────────────────────────────────────────────────────
//   1. Fetch the remote; a strictly newer remote needs confirmation
//   2. Build the document from the live state and local metadata
//   3. Replace the remote, then record lastSyncPushAt (best-effort)

func (s *syncService) Push(ctx context.Context, cfg model.SyncConfig, confirm Confirm) (SyncResult, error) {
	const op = "sync.push"
	res := SyncResult{Direction: DirectionPush}
	if err := requireURL(op, cfg); err != nil {
		return res, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	remote, ok, err := s.remote.Fetch(ctx, cfg)
	if err != nil {
		return res, err
	}
	meta, err := s.metas.Load(ctx)
	if err != nil {
		return res, err
	}
	if ok && model.IsNewer(remote.UpdatedAt, meta.StateUpdatedAt) {
		c := conflictFor(DirectionPush, meta, remote)
		if confirm == nil || !confirm(c) {
			return cancelled(res, c, op, "el remoto tiene cambios más recientes")
		}
	}

	st, err := s.ledger.Current()
	if err != nil {
		return res, err
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return res, apperror.Storage(op, err)
	}
	updatedAt := meta.StateUpdatedAt
	if updatedAt == "" {
		updatedAt = model.FormatTimestamp(s.now())
	}
	doc := &model.RemoteDocument{
		App:       model.RemoteApp,
		Format:    model.RemoteFormat,
		UpdatedAt: updatedAt,
		UpdatedBy: meta.DeviceID,
		State:     raw,
	}
	if err := s.remote.Replace(ctx, cfg, doc); err != nil {
		return res, err
	}

	pushedAt := model.FormatTimestamp(s.now())
	err = s.metas.Update(ctx, func(m *model.Meta) {
		m.LastSyncPushAt = pushedAt
		if m.StateUpdatedAt == "" {
			m.StateUpdatedAt = updatedAt
		}
	})
	res.Warnings = apperror.Collect(res.Warnings, apperror.Soft("sync.push.mark", err))
	res.Status, res.UpdatedAt = SyncOK, updatedAt
	metrics.RecordSync(DirectionPush, SyncOK)
	log.Info().Str("updated_at", updatedAt).Msg("state pushed to remote")
	return res, nil
}

// ── Pull ──────────────────────────────────────────────────────────────────────
//   1. Fetch and shape-validate the remote; nothing local changes on failure
//   2. A strictly newer local state needs confirmation
//   3. Install the remote state keeping its updatedAt/updatedBy

func (s *syncService) Pull(ctx context.Context, cfg model.SyncConfig, confirm Confirm) (SyncResult, error) {
	const op = "sync.pull"
	res := SyncResult{Direction: DirectionPull}
	if err := requireURL(op, cfg); err != nil {
		return res, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	remote, st, err := s.fetchState(ctx, op, cfg)
	if err != nil {
		return res, err
	}
	meta, err := s.metas.Load(ctx)
	if err != nil {
		return res, err
	}
	if model.IsNewer(meta.StateUpdatedAt, remote.UpdatedAt) {
		c := conflictFor(DirectionPull, meta, remote)
		if confirm == nil || !confirm(c) {
			return cancelled(res, c, op, "los datos locales son más recientes")
		}
	}

	ws, err := s.install(ctx, remote, st)
	res.Warnings = ws
	if err != nil {
		return res, err
	}
	res.Status, res.UpdatedAt = SyncOK, remote.UpdatedAt
	metrics.RecordSync(DirectionPull, SyncOK)
	log.Info().Str("updated_at", remote.UpdatedAt).Str("updated_by", remote.UpdatedBy).Msg("state pulled from remote")
	return res, nil
}

// fetchState fetches the remote and decodes its state. A missing remote is
// NotFound and a bad document is Shape.
func (s *syncService) fetchState(ctx context.Context, op string, cfg model.SyncConfig) (*model.RemoteDocument, *model.State, error) {
	remote, ok, err := s.remote.Fetch(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, apperror.NotFound(op, "documento remoto")
	}
	st, err := remote.DecodeState()
	if err != nil {
		return nil, nil, apperror.Shape(op, err.Error())
	}
	return remote, st, nil
}

func (s *syncService) install(ctx context.Context, remote *model.RemoteDocument, st *model.State) ([]apperror.Warning, error) {
	ws, err := s.ledger.Replace(ctx, st, repository.SaveOptions{
		UpdatedAt:     remote.UpdatedAt,
		UpdatedBy:     remote.UpdatedBy,
		Source:        model.SourceSyncPull,
		KeepTimestamp: true,
	})
	if err != nil {
		return ws, err
	}
	pulledAt := model.FormatTimestamp(s.now())
	err = s.metas.Update(ctx, func(m *model.Meta) { m.LastSyncPullAt = pulledAt })
	return apperror.Collect(ws, apperror.Soft("sync.pull.mark", err)), nil
}

func (s *syncService) RunSync(ctx context.Context, direction string, confirm Confirm) (SyncResult, error) {
	cfg, err := s.GetConfig(ctx)
	if err != nil {
		return SyncResult{Direction: direction}, err
	}
	switch direction {
	case DirectionPush:
		return s.Push(ctx, cfg, confirm)
	case DirectionPull:
		return s.Pull(ctx, cfg, confirm)
	case DirectionTest:
		if err := s.TestConnection(ctx, cfg); err != nil {
			return SyncResult{Direction: direction}, err
		}
		return SyncResult{Direction: direction, Status: SyncOK}, nil
	default:
		return SyncResult{Direction: direction}, apperror.Invalid("sync.run", "dirección desconocida: "+direction)
	}
}

// ── Auto-sync ─────────────────────────────────────────────────────────────────

// AutoSyncOnStartup pulls without asking when the remote is strictly newer.
// It never returns an error; the outcome is a status string.
func (s *syncService) AutoSyncOnStartup(ctx context.Context) string {
	status := s.autoSync(ctx)
	log.Info().Str("status", status).Msg("startup auto-sync")
	return status
}

func (s *syncService) autoSync(ctx context.Context) string {
	const op = "sync.auto"
	cfg, err := s.GetConfig(ctx)
	if err != nil {
		return "error: " + err.Error()
	}
	switch {
	case !cfg.Auto:
		return AutoSyncDisabled
	case !cfg.Configured():
		return AutoSyncNoURL
	case !s.remote.Reachable():
		return AutoSyncOffline
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	remote, st, err := s.fetchState(ctx, op, cfg)
	switch {
	case apperror.KindOf(err) == apperror.KindNotFound:
		return AutoSyncNoRemote
	case apperror.KindOf(err) == apperror.KindShape:
		return AutoSyncInvalid
	case err != nil:
		metrics.RecordSync("auto", "error")
		return "error: " + err.Error()
	}

	meta, err := s.metas.Load(ctx)
	if err != nil {
		return "error: " + err.Error()
	}
	if !model.IsNewer(remote.UpdatedAt, meta.StateUpdatedAt) {
		return AutoSyncLocalCurrent
	}
	if _, err := s.install(ctx, remote, st); err != nil {
		return "error: " + err.Error()
	}
	metrics.RecordSync("auto", SyncOK)
	return AutoSyncPulled
}

func conflictFor(direction string, meta *model.Meta, remote *model.RemoteDocument) Conflict {
	return Conflict{
		Direction:       direction,
		LocalUpdatedAt:  meta.StateUpdatedAt,
		LocalUpdatedBy:  meta.StateUpdatedBy,
		RemoteUpdatedAt: remote.UpdatedAt,
		RemoteUpdatedBy: remote.UpdatedBy,
	}
}

func cancelled(res SyncResult, c Conflict, op, msg string) (SyncResult, error) {
	res.Status = SyncCancelled
	res.Conflict = &c
	metrics.RecordSync(res.Direction, SyncCancelled)
	return res, apperror.Conflict(op, msg)
}
