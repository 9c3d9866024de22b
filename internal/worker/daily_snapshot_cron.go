package worker

// daily_snapshot_cron.go
// Background goroutine that keeps the "one automatic snapshot per local day"
// promise for servers that stay up across midnight.

import (
	"context"
	"time"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/apperror"

	"github.com/rs/zerolog/log"
)

// DailySnapshotter is the slice of the backup service the cron needs.
type DailySnapshotter interface {
	EnsureDaily(ctx context.Context) (created bool, ws []apperror.Warning, err error)
}

// DailySnapshotCronConfig holds all dependencies for the snapshot goroutine.
type DailySnapshotCronConfig struct {
	Backups  DailySnapshotter
	Interval time.Duration
}

// StartDailySnapshotCron launches a background goroutine that ticks every
// Interval and takes the daily snapshot when the day has none yet.
// It respects the context for graceful shutdown; the returned channel is
// closed once the goroutine has exited.
func StartDailySnapshotCron(ctx context.Context, cfg DailySnapshotCronConfig) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("snapshot_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("snapshot_cron: shutting down")
				return
			case <-ticker.C:
				runDailySnapshot(ctx, cfg.Backups)
			}
		}
	}()
	return done
}

func runDailySnapshot(ctx context.Context, backups DailySnapshotter) {
	created, ws, err := backups.EnsureDaily(ctx)
	if err != nil {
		// A failed tick is retried on the next one; the day is only marked
		// once a snapshot exists.
		log.Error().Err(err).Msg("snapshot_cron: daily snapshot failed")
		return
	}
	if created {
		log.Info().Int("warnings", len(ws)).Msg("snapshot_cron: daily snapshot created")
	}
}
