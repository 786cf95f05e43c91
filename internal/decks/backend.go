// Package decks holds the storage-agnostic deck service and the backend
// contract it runs on.
//
// A Backend is chosen once, at startup, by SelectBackend. Everything above
// it (HTTP handlers, CLI commands, tasks, the backup scheduler) talks to a
// *Service and never learns which backend is active.
package decks

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/kotoba/internal/entities"
)

// Backend is the CRUD and bulk contract every deck store implements.
type Backend interface {
	// GetAll returns all decks ordered by UpdatedAt descending.
	GetAll(ctx context.Context) ([]entities.Deck, error)
	// Get returns nil, nil when no deck has the id.
	Get(ctx context.Context, id uint) (*entities.Deck, error)
	// Add assigns a new id, stores the deck and returns the id.
	Add(ctx context.Context, deck *entities.Deck) (uint, error)
	// Update shallow-merges changes and returns 1, or 0 when id is unknown.
	Update(ctx context.Context, id uint, changes entities.DeckChanges) (int, error)
	// Delete is a no-op for unknown ids.
	Delete(ctx context.Context, id uint) error
	Clear(ctx context.Context) error
	// BulkAdd assigns ids to decks that lack one.
	BulkAdd(ctx context.Context, decks []entities.Deck) error
	// ReplaceAll clears the store and bulk-adds decks as one step. On error
	// the previous decks are kept.
	ReplaceAll(ctx context.Context, decks []entities.Deck) error
	Name() string
}

// ErrBackendUnavailable marks a durable engine that could not be opened.
var ErrBackendUnavailable = errors.New("durable storage unavailable")

// Opener constructs the durable backend.
type Opener func() (Backend, error)

// Selection is the outcome of SelectBackend.
type Selection struct {
	Backend Backend
	// Durable is true when the durable backend is active.
	Durable bool
	// Fallback holds the open failure when durable storage was requested
	// but the memory backend had to be used instead.
	Fallback error
}

// SelectBackend picks the deck backend. When durable is false, or open
// fails, a seeded memory backend is returned instead. It never fails.
func SelectBackend(durable bool, open Opener) Selection {
	fields := logrus.Fields{"durable": durable}
	sel := Selection{}

	if durable && open != nil {
		backend, err := open()
		if err == nil {
			sel.Backend = backend
			sel.Durable = true
		} else {
			sel.Fallback = fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
			logrus.WithError(err).Warn("Durable storage blocked, falling back to memory")
		}
	}

	if sel.Backend == nil {
		sel.Backend = NewMemoryBackend()
	}

	fields["storageType"] = sel.Backend.Name()
	logrus.WithFields(fields).Info("Use storage")
	return sel
}
