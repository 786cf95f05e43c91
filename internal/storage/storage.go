// Package storage resolves the deck backend from configuration and hands
// out the service built on it. The server and every CLI command open
// storage the same way.
package storage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/kotoba/internal/config"
	"github.com/mrlokans/kotoba/internal/database"
	dbdecks "github.com/mrlokans/kotoba/internal/database/decks"
	"github.com/mrlokans/kotoba/internal/decks"
)

// Storage is an opened deck store.
type Storage struct {
	Service *decks.Service
	// Database is nil when the memory backend is active.
	Database *database.Database
	Durable  bool
	// Fallback is set when durable storage was available but failed to open.
	Fallback error
}

// Open probes the durable capability, opens the sqlite backend when it is
// available and falls back to the seeded memory backend otherwise. It
// never fails.
func Open(cfg *config.Config) *Storage {
	s := &Storage{}

	opener := func() (decks.Backend, error) {
		if dir := filepath.Dir(cfg.Database.Path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, err
			}
		}
		db, err := database.NewDatabaseWithOptions(cfg.Database.Path, database.Options{
			LogLevel: gormLogLevel(cfg.Global.LogLevel),
		})
		if err != nil {
			return nil, err
		}
		s.Database = db
		return dbdecks.NewRepository(db.DB), nil
	}

	if cfg.Storage.Mode == config.StorageModeSQLite && !cfg.DurableAvailable() {
		logrus.WithField("path", cfg.Database.Path).Warn("sqlite storage requested but not available")
	}

	sel := decks.SelectBackend(cfg.DurableAvailable(), opener)
	s.Service = decks.NewService(sel.Backend)
	s.Durable = sel.Durable
	s.Fallback = sel.Fallback
	return s
}

// Close releases the database, if any.
func (s *Storage) Close() error {
	if s.Database == nil {
		return nil
	}
	return s.Database.Close()
}

func gormLogLevel(level string) logger.LogLevel {
	if strings.EqualFold(level, "debug") || strings.EqualFold(level, "trace") {
		return logger.Info
	}
	return logger.Silent
}
