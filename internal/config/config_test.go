package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, DriverRedis, cfg.StoreDriver)
	assert.Equal(t, "billar:", cfg.StorePrefix)
	assert.Equal(t, "legacy:", cfg.LegacyPrefix)
	assert.Equal(t, 20, cfg.MaxSnapshots)
	assert.Equal(t, time.Hour, cfg.SnapshotCheckInterval)
	assert.Equal(t, 5, cfg.SyncBreakerThreshold)
	assert.Equal(t, 60*time.Second, cfg.SyncBreakerTimeout)
	assert.False(t, cfg.SyncAuto)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("MAX_SNAPSHOTS", "5")
	t.Setenv("SNAPSHOT_CHECK_INTERVAL", "15m")
	t.Setenv("SYNC_URL", "https://example.com/billar.json")
	t.Setenv("SYNC_AUTO", "true")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, 5, cfg.MaxSnapshots)
	assert.Equal(t, 15*time.Minute, cfg.SnapshotCheckInterval)
	assert.Equal(t, "https://example.com/billar.json", cfg.SyncURL)
	assert.True(t, cfg.SyncAuto)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_RejectsBadDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	_, err := Load()
	assert.ErrorContains(t, err, "STORE_DRIVER")
}

func TestValidate(t *testing.T) {
	base := Config{StoreDriver: DriverMemory, StorePrefix: "a:", LegacyPrefix: "b:", MaxSnapshots: 1, SnapshotCheckInterval: time.Minute}
	require.NoError(t, base.Validate())

	same := base
	same.LegacyPrefix = "a:"
	assert.Error(t, same.Validate())

	zero := base
	zero.MaxSnapshots = 0
	assert.Error(t, zero.Validate())
}
