package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	dbdecks "github.com/mrlokans/kotoba/internal/database/decks"
	"github.com/mrlokans/kotoba/internal/decks"
	"github.com/mrlokans/kotoba/internal/exporters"
	"github.com/mrlokans/kotoba/internal/http"
	"github.com/mrlokans/kotoba/internal/parsers"
	"github.com/mrlokans/kotoba/internal/scheduler"
	"github.com/mrlokans/kotoba/internal/tasks"
)

// =============================================================================
// Deck Backends
// =============================================================================

var _ decks.Backend = (*dbdecks.Repository)(nil)
var _ decks.Backend = (*decks.MemoryBackend)(nil)

// =============================================================================
// Deck Service Consumers
// =============================================================================

var _ http.DeckStore = (*decks.Service)(nil)
var _ exporters.DeckSource = (*decks.Service)(nil)
var _ tasks.DeckAdder = (*decks.Service)(nil)

// =============================================================================
// Parsing
// =============================================================================

var _ decks.Parser = (*parsers.DeckParser)(nil)
var _ http.DeckParser = (*parsers.DeckParser)(nil)
var _ tasks.DirectoryParser = (*parsers.DeckParser)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ http.TaskQueue = (*tasks.Client)(nil)
var _ scheduler.Backuper = (*exporters.BackupExporter)(nil)
var _ http.BackupRunner = (*scheduler.BackupScheduler)(nil)
