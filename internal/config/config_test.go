package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8190), cfg.HTTP.Port)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, StorageModeAuto, cfg.Storage.Mode)
	assert.False(t, cfg.Storage.Headless)
	assert.False(t, cfg.Storage.HeadlessExplicit)
	assert.Equal(t, "0 3 * * *", cfg.Backup.Schedule)
	assert.Equal(t, 7, cfg.Backup.Keep)
	assert.Equal(t, 2, cfg.Tasks.Workers)
	assert.Equal(t, time.Minute, cfg.Tasks.RetryDelay)
	assert.Equal(t, int64(5<<20), cfg.Upload.MaxBytes)
}

func TestNewConfig_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_PATH", "/data/decks.db")
	t.Setenv("STORAGE_MODE", "Memory")
	t.Setenv("BACKUP_ENABLED", "true")
	t.Setenv("TASK_TIMEOUT", "30s")
	t.Setenv("KOTOBA_HEADLESS", "false")

	cfg := NewConfig()

	assert.Equal(t, int32(9000), cfg.HTTP.Port)
	assert.Equal(t, "/data/decks.db", cfg.Database.Path)
	assert.Equal(t, StorageModeMemory, cfg.Storage.Mode)
	assert.True(t, cfg.Backup.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Tasks.TaskTimeout)
	assert.False(t, cfg.Storage.Headless)
	assert.True(t, cfg.Storage.HeadlessExplicit)
}

func TestConfig_DurableAvailable(t *testing.T) {
	tests := []struct {
		name    string
		storage Storage
		path    string
		want    bool
	}{
		{"auto with path", Storage{Mode: StorageModeAuto}, "./kotoba.db", true},
		{"explicit sqlite", Storage{Mode: StorageModeSQLite}, "./kotoba.db", true},
		{"headless", Storage{Mode: StorageModeAuto, Headless: true}, "./kotoba.db", false},
		{"memory mode", Storage{Mode: StorageModeMemory}, "./kotoba.db", false},
		{"empty path", Storage{Mode: StorageModeAuto}, "  ", false},
		{"sqlite memory dsn", Storage{Mode: StorageModeAuto}, ":memory:", false},
		{"sqlite shared memory dsn", Storage{Mode: StorageModeAuto}, "file::memory:?cache=shared", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Storage: tt.storage, Database: Database{Path: tt.path}}
			assert.Equal(t, tt.want, cfg.DurableAvailable())
		})
	}
}

func TestConfig_DetectHeadless(t *testing.T) {
	tests := []struct {
		name        string
		storage     Storage
		interactive bool
		want        bool
	}{
		{"terminal", Storage{}, true, false},
		{"piped", Storage{}, false, true},
		{"explicitly interactive", Storage{HeadlessExplicit: true}, false, false},
		{"explicitly headless", Storage{Headless: true, HeadlessExplicit: true}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Storage: tt.storage, Database: Database{Path: "./kotoba.db"}}
			cfg.DetectHeadless(tt.interactive)
			assert.Equal(t, tt.want, cfg.Storage.Headless)
			assert.Equal(t, !tt.want, cfg.DurableAvailable())
		})
	}
}
