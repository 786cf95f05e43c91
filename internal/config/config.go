package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/term"
)

type StorageMode string

const (
	StorageModeAuto   StorageMode = "auto"   // sqlite when possible, memory otherwise (default)
	StorageModeSQLite StorageMode = "sqlite" // same probe as auto, logged as an explicit request
	StorageModeMemory StorageMode = "memory" // never touch the disk
)

type (
	Config struct {
		HTTP
		Global
		Database
		Storage
		Backup
		Tasks
		Upload
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
		LogLevel                 string
	}
	Database struct {
		Path string
	}
	Storage struct {
		Mode StorageMode
		// Headless marks a non-interactive run (CI, containers without a
		// volume) where durable storage must not be used.
		Headless bool
		// HeadlessExplicit is true when KOTOBA_HEADLESS was set; terminal
		// detection never overrides it.
		HeadlessExplicit bool
	}
	Backup struct {
		Enabled  bool
		Schedule string // Cron format: "0 3 * * *" = daily at 03:00
		Dir      string
		Keep     int // Snapshots to retain; 0 keeps everything
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Upload struct {
		MaxBytes int64
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("log_level", "info")
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("storage_mode", string(StorageModeAuto))

	v.SetDefault("backup_enabled", false)
	v.SetDefault("backup_schedule", "0 3 * * *") // Daily at 03:00
	v.SetDefault("backup_dir", DefaultBackupDir)
	v.SetDefault("backup_keep", 7)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	v.SetDefault("max_upload_bytes", 5<<20)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
			LogLevel:                 v.GetString("LOG_LEVEL"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Storage: Storage{
			Mode:             StorageMode(strings.ToLower(v.GetString("STORAGE_MODE"))),
			Headless:         v.GetBool("KOTOBA_HEADLESS"),
			HeadlessExplicit: v.IsSet("KOTOBA_HEADLESS"),
		},
		Backup: Backup{
			Enabled:  v.GetBool("BACKUP_ENABLED"),
			Schedule: v.GetString("BACKUP_SCHEDULE"),
			Dir:      v.GetString("BACKUP_DIR"),
			Keep:     v.GetInt("BACKUP_KEEP"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Upload: Upload{
			MaxBytes: v.GetInt64("MAX_UPLOAD_BYTES"),
		},
	}
}

// DurableAvailable is the storage capability probe. It is evaluated once
// at startup and is false in headless runs.
func (c *Config) DurableAvailable() bool {
	if c.Storage.Headless || c.Storage.Mode == StorageModeMemory {
		return false
	}
	path := strings.TrimSpace(c.Database.Path)
	return path != "" && path != ":memory:" && !strings.HasPrefix(path, "file::memory:")
}

// DetectHeadless marks a CLI run headless when it is not attached to a
// terminal. An explicit KOTOBA_HEADLESS wins. Call it before storage is
// opened.
func (c *Config) DetectHeadless(interactive bool) {
	if c.Storage.HeadlessExplicit || interactive {
		return
	}
	c.Storage.Headless = true
}

// StdinIsTerminal reports whether stdin is an interactive terminal.
func StdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
