package exporters

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

const (
	backupPrefix = "decks-"
	backupExt    = ".json"
)

// BackupExporter writes deck exports as timestamped snapshot files. Names
// embed a ULID, so lexical order is chronological order.
type BackupExporter struct {
	Dir    string
	Keep   int
	source DeckSource
	now    func() time.Time
}

func NewBackupExporter(source DeckSource, dir string, keep int) *BackupExporter {
	return &BackupExporter{
		Dir:    dir,
		Keep:   keep,
		source: source,
		now:    time.Now,
	}
}

// Export writes one snapshot and prunes old ones beyond Keep.
func (e *BackupExporter) Export(ctx context.Context) (BackupResult, error) {
	result := BackupResult{}

	data, err := e.source.ExportAllData(ctx)
	if err != nil {
		return result, fmt.Errorf("export decks: %w", err)
	}

	if err := os.MkdirAll(e.Dir, 0755); err != nil {
		return result, fmt.Errorf("failed to create backup directory: %w", err)
	}

	id := ulid.MustNew(ulid.Timestamp(e.now()), ulid.DefaultEntropy())
	path := filepath.Join(e.Dir, backupPrefix+id.String()+backupExt)

	// Snapshots appear atomically via rename.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(data), 0644); err != nil {
		return result, fmt.Errorf("failed to write backup: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return result, fmt.Errorf("failed to finalize backup: %w", err)
	}

	result.Path = path
	result.Bytes = len(data)

	pruned, err := e.prune()
	if err != nil {
		logrus.WithError(err).WithField("dir", e.Dir).Warn("Failed to prune old backups")
	}
	result.Pruned = pruned

	logrus.WithFields(logrus.Fields{
		"path":   path,
		"bytes":  result.Bytes,
		"pruned": pruned,
	}).Info("Deck backup written")

	return result, nil
}

// List returns snapshot paths, oldest first.
func (e *BackupExporter) List() ([]string, error) {
	entries, err := os.ReadDir(e.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupExt) {
			continue
		}
		paths = append(paths, filepath.Join(e.Dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}

// Latest returns the newest snapshot path, or "" when there is none.
func (e *BackupExporter) Latest() (string, error) {
	paths, err := e.List()
	if err != nil || len(paths) == 0 {
		return "", err
	}
	return paths[len(paths)-1], nil
}

func (e *BackupExporter) prune() (int, error) {
	if e.Keep <= 0 {
		return 0, nil
	}
	paths, err := e.List()
	if err != nil {
		return 0, err
	}

	removed := 0
	for len(paths)-removed > e.Keep {
		if err := os.Remove(paths[removed]); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
