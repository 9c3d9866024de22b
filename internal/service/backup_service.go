package service

import (
	"context"
	"encoding/json"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/apperror"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/model"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/repository"

	"github.com/rs/zerolog/log"
)

// BackupService ties the snapshot engine to the live state: snapshots of the
// current state, restore with a safety snapshot, and JSON file import/export.
type BackupService interface {
	CreateSnapshot(ctx context.Context, reason string) (model.SnapshotEntry, []apperror.Warning, error)
	EnsureDaily(ctx context.Context) (created bool, ws []apperror.Warning, err error)
	RestoreSnapshot(ctx context.Context, id string) ([]apperror.Warning, error)
	ExportJSON(ctx context.Context) ([]byte, error)
	ImportJSON(ctx context.Context, raw []byte) ([]apperror.Warning, error)
}

type backupService struct {
	ledger    LedgerService
	snapshots SnapshotService
}

func NewBackupService(ledger LedgerService, snapshots SnapshotService) BackupService {
	return &backupService{ledger: ledger, snapshots: snapshots}
}

func (s *backupService) CreateSnapshot(ctx context.Context, reason string) (model.SnapshotEntry, []apperror.Warning, error) {
	st, err := s.ledger.Current()
	if err != nil {
		return model.SnapshotEntry{}, nil, err
	}
	return s.snapshots.Create(ctx, st, reason)
}

func (s *backupService) EnsureDaily(ctx context.Context) (bool, []apperror.Warning, error) {
	st, err := s.ledger.Current()
	if err != nil {
		return false, nil, err
	}
	_, created, ws, err := s.snapshots.EnsureDaily(ctx, st)
	return created, ws, err
}

// RestoreSnapshot installs a snapshot as the live state. The current state is
// kept first as a "pre-restore" snapshot; if that fails nothing is restored.
func (s *backupService) RestoreSnapshot(ctx context.Context, id string) ([]apperror.Warning, error) {
	st, err := s.snapshots.Restore(ctx, id)
	if err != nil {
		return nil, err
	}
	_, ws, err := s.CreateSnapshot(ctx, model.ReasonPreRestore)
	if err != nil {
		return ws, err
	}
	more, err := s.ledger.Replace(ctx, st, repository.SaveOptions{Source: model.SourceRestore})
	ws = append(ws, more...)
	if err != nil {
		return ws, err
	}
	log.Info().Str("snapshot_id", id).Msg("snapshot restored")
	return ws, nil
}

func (s *backupService) ExportJSON(context.Context) ([]byte, error) {
	st, err := s.ledger.Current()
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return nil, apperror.Storage("backup.export", err)
	}
	return out, nil
}

// ImportJSON validates the whole document before anything changes, then
// snapshots the current state ("pre-import") and installs the file.
func (s *backupService) ImportJSON(ctx context.Context, raw []byte) ([]apperror.Warning, error) {
	st, err := model.DecodeState(raw)
	if err != nil {
		return nil, apperror.Shape("backup.import", err.Error())
	}
	_, ws, err := s.CreateSnapshot(ctx, model.ReasonPreImport)
	if err != nil {
		return ws, err
	}
	more, err := s.ledger.Replace(ctx, st, repository.SaveOptions{Source: model.SourceImport})
	ws = append(ws, more...)
	if err != nil {
		return ws, err
	}
	log.Info().Int("products", len(st.Products)).Int("sales", len(st.Sales)).Msg("state imported from file")
	return ws, nil
}
