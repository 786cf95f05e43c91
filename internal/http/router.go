package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/kotoba/internal/database"
)

// RouterConfig holds all dependencies needed to create the HTTP router.
type RouterConfig struct {
	Store  DeckStore
	Parser DeckParser

	// Database is nil when decks are kept in memory.
	Database *database.Database

	// Tasks is nil when the task queue is disabled.
	Tasks TaskQueue

	// Backups is nil when scheduled backups are disabled.
	Backups BackupRunner

	Version        string
	MaxUploadBytes int64
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())

	if cfg.MaxUploadBytes > 0 {
		// Multipart parts beyond this size are spooled to disk by net/http.
		router.MaxMultipartMemory = cfg.MaxUploadBytes
	}

	health := NewHealthController(cfg.Database, cfg.Store.BackendName(), cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	decks := NewDecksController(cfg.Store, cfg.Parser, cfg.MaxUploadBytes)
	taskController := NewTasksController(cfg.Tasks)

	api := router.Group("/api")
	{
		api.GET("/decks", decks.ListDecks)
		api.POST("/decks", decks.CreateDeck)
		api.POST("/decks/parse", decks.Parse)
		api.POST("/decks/import-dir", taskController.ImportDir)
		api.GET("/decks/:id", decks.GetDeck)
		api.PATCH("/decks/:id", decks.UpdateDeck)
		api.PUT("/decks/:id/name", decks.RenameDeck)
		api.DELETE("/decks/:id", decks.DeleteDeck)

		api.GET("/export", decks.Export)
		api.POST("/import", decks.Import)

		api.GET("/tasks/:id", taskController.GetTaskStatus)

		if cfg.Backups != nil {
			backups := NewBackupsController(cfg.Backups)
			api.GET("/backups", backups.Status)
			api.POST("/backups", backups.Run)
		}
	}

	return router
}
