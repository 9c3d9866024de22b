package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/config"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/infra"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/model"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/repository"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/router"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/service"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	// Stores open lazily; the first bootstrap call dials the backend.
	stores, err := infra.NewStores(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure store")
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Warn().Err(err).Msg("store close failed")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	now := time.Now

	// ── Repositories ─────────────────────────────────────────────────────────
	metaRepo := repository.NewMetaRepository(stores.Main)
	stateRepo := repository.NewStateRepository(stores.Main, metaRepo, now)
	snapshotRepo := repository.NewSnapshotRepository(stores.Main)
	syncConfigRepo := repository.NewSyncConfigRepository(stores.Main)
	legacyRepo := repository.NewLegacyRepository(stores.Legacy)

	// ── Services ─────────────────────────────────────────────────────────────
	ledger := service.NewLedgerService(stateRepo, metaRepo, service.NewLegacyImporter(legacyRepo, now), now)
	snapshots := service.NewSnapshotService(snapshotRepo, metaRepo, cfg.MaxSnapshots, now)
	backups := service.NewBackupService(ledger, snapshots)
	remote := infra.NewRemoteClient(cfg.SyncTimeout, infra.CircuitBreakerConfig{
		FailureThreshold: cfg.SyncBreakerThreshold,
		OpenTimeout:      cfg.SyncBreakerTimeout,
	})
	syncSvc := service.NewSyncService(ledger, metaRepo, syncConfigRepo, remote, model.SyncConfig{
		URL:  cfg.SyncURL,
		User: cfg.SyncUser,
		Pass: cfg.SyncPass,
		Auto: cfg.SyncAuto,
	}, now)
	exports := service.NewExportService(ledger, cfg.ReportBusinessName, now)

	// ── Bootstrap ────────────────────────────────────────────────────────────
	//   1. load (or import legacy data, or seed) the live state
	//   2. take today's automatic snapshot if there is none yet
	//   3. pull from the remote when it holds strictly newer data
	ws, err := ledger.LoadOrInit(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load ledger state")
	}
	logWarnings("bootstrap", len(ws))

	if created, ws, err := backups.EnsureDaily(ctx); err != nil {
		log.Error().Err(err).Msg("daily snapshot failed")
	} else if created {
		logWarnings("daily snapshot", len(ws))
		log.Info().Msg("daily snapshot created")
	}

	log.Info().Str("status", syncSvc.AutoSyncOnStartup(ctx)).Msg("auto-sync")

	cronDone := worker.StartDailySnapshotCron(ctx, worker.DailySnapshotCronConfig{
		Backups:  backups,
		Interval: cfg.SnapshotCheckInterval,
	})

	r := router.New(cfg, router.Deps{
		Store:           stores.Main,
		Ledger:          ledger,
		Snapshots:       snapshots,
		Backups:         backups,
		Sync:            syncSvc,
		Exports:         exports,
		RemoteReachable: remote.Reachable,
		Now:             now,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("billar-finanzas listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	cancel()
	<-cronDone

	// Best-effort final save; a failure is logged, never fatal.
	if err := ledger.Flush(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("final save failed")
	}
	log.Info().Msg("server exited")
}

// setupLogger: dev is pretty console output, prod is JSON.
func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if cfg.IsProduction() {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func logWarnings(step string, n int) {
	if n > 0 {
		log.Warn().Int("warnings", n).Str("step", step).Msg("completed with best-effort failures")
	}
}
