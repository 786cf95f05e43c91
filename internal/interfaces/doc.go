// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Deck Storage
//
//   - decks.Backend: CRUD and bulk contract for a deck store (internal/decks/backend.go).
//     Implemented by the gorm repository (internal/database/decks) and the
//     in-process MemoryBackend (internal/decks/memory.go).
//
// ## Deck Service Consumers
//
//   - http.DeckStore: what the JSON API needs from decks.Service (internal/http/decks.go)
//   - exporters.DeckSource: export document producer for backups (internal/exporters/generic.go)
//   - tasks.DeckAdder: single-deck writes for background imports (internal/tasks/import_deck_dir.go)
//
// ## Parsing
//
//   - decks.Parser, http.DeckParser: markdown document to unsaved deck
//   - tasks.DirectoryParser: recursive directory parse
//
// All three are implemented by parsers.DeckParser.
//
// ## Background Work
//
//   - http.TaskQueue: enqueue and inspect backlite tasks (tasks.Client)
//   - scheduler.Backuper: one backup snapshot (exporters.BackupExporter)
//   - http.BackupRunner: on-demand backups and status (scheduler.BackupScheduler)
//
// # Adding a Deck Backend
//
//  1. Implement decks.Backend. GetAll must order by UpdatedAt descending,
//     Get returns nil, nil for unknown ids and BulkAdd keeps explicit ids.
//     ReplaceAll must leave the old decks in place when it fails.
//  2. Add a compile-time check in checks.go.
//  3. Return it from the Opener passed to decks.SelectBackend (internal/storage).
//
// The compile-time checks in checks.go ensure implementations stay in sync.
package interfaces
