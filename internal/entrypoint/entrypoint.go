package entrypoint

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/kotoba/internal/config"
	"github.com/mrlokans/kotoba/internal/exporters"
	http_controllers "github.com/mrlokans/kotoba/internal/http"
	"github.com/mrlokans/kotoba/internal/parsers"
	"github.com/mrlokans/kotoba/internal/scheduler"
	"github.com/mrlokans/kotoba/internal/storage"
	"github.com/mrlokans/kotoba/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// SetupLogging configures the global logrus logger. Unknown levels fall
// back to info.
func SetupLogging(level string) {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.WithField("level", level).Warn("Unknown log level, using info")
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)

	if parsed < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
}

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		logrus.WithField("addr", srv.Addr).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("listen: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.WithField("timeout", timeout).Info("Shutdown Server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Background workers stop before the server so in-flight imports finish.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatal("Server Shutdown: ", err)
	}

	logrus.Info("Server exiting")
}

func Run(cfg *config.Config, version string) {
	logrus.WithField("version", version).Info("Starting Kotoba")

	store := storage.Open(cfg)
	defer func() {
		if err := store.Close(); err != nil {
			logrus.WithError(err).Error("Error closing database")
		}
	}()

	parser := parsers.NewDeckParser()

	// The queue database lives next to the deck database, so it only runs
	// when decks are durable.
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled && store.Durable {
		var err error
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.FromSettings(cfg.Tasks))
		if err != nil {
			logrus.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				logrus.WithError(err).Error("Error closing task client")
			}
		}()

		taskClient.Register(tasks.NewImportDeckDirQueue(parser, store.Service))

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	} else if cfg.Tasks.Enabled {
		logrus.Info("Task queue disabled: durable storage is not active")
	}

	var backupScheduler *scheduler.BackupScheduler
	if cfg.Backup.Enabled && !cfg.Storage.Headless {
		exporter := exporters.NewBackupExporter(store.Service, cfg.Backup.Dir, cfg.Backup.Keep)
		backupScheduler = scheduler.NewBackupScheduler(exporter, cfg.Backup.Schedule)
		if err := backupScheduler.Start(context.Background()); err != nil {
			logrus.WithError(err).Error("Failed to start backup scheduler")
			backupScheduler = nil
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Store:          store.Service,
		Parser:         parser,
		Database:       store.Database,
		Version:        version,
		MaxUploadBytes: cfg.Upload.MaxBytes,
	}
	if taskClient != nil {
		routerCfg.Tasks = taskClient
	}
	if backupScheduler != nil {
		routerCfg.Backups = backupScheduler
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if backupScheduler != nil {
			backupScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
