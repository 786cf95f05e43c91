package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/kotoba/internal/entities"
	"github.com/mrlokans/kotoba/internal/parsers"
)

const ImportDeckDirQueue = "import_deck_dir"

// DirectoryParser parses every deck document below a directory.
type DirectoryParser interface {
	ParseDirectory(root string) ([]entities.Deck, parsers.ParseResult, error)
}

// DeckAdder stores a single deck.
type DeckAdder interface {
	AddDeck(ctx context.Context, deck *entities.Deck) (uint, error)
}

// ImportDeckDirTask parses a directory of deck documents and stores every
// resulting deck.
type ImportDeckDirTask struct {
	Path string `json:"path"`
}

// Config returns the queue configuration for directory imports. Imports are
// not idempotent and must run at most once.
func (t ImportDeckDirTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        ImportDeckDirQueue,
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ImportDeckDirProcessor creates a processor function for ImportDeckDirTask.
func ImportDeckDirProcessor(parser DirectoryParser, store DeckAdder) backlite.QueueProcessor[ImportDeckDirTask] {
	return func(ctx context.Context, task ImportDeckDirTask) error {
		if parser == nil || store == nil {
			return fmt.Errorf("deck directory import not configured")
		}
		if task.Path == "" {
			return fmt.Errorf("import path is required")
		}

		start := time.Now()
		decks, result, err := parser.ParseDirectory(task.Path)
		if err != nil {
			return fmt.Errorf("parse %s: %w", task.Path, err)
		}

		added := 0
		for i := range decks {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := store.AddDeck(ctx, &decks[i]); err != nil {
				return fmt.Errorf("store deck %q: %w", decks[i].Name, err)
			}
			added++
		}

		logrus.WithFields(logrus.Fields{
			"path":            task.Path,
			"decks_added":     added,
			"files_processed": result.FilesProcessed,
			"files_failed":    result.FilesFailed,
			"cards_parsed":    result.CardsParsed,
			"duration":        time.Since(start),
		}).Info("Deck directory imported")
		return nil
	}
}

// NewImportDeckDirQueue creates a backlite queue for directory imports.
func NewImportDeckDirQueue(parser DirectoryParser, store DeckAdder) backlite.Queue {
	return backlite.NewQueue(ImportDeckDirProcessor(parser, store))
}
